package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/LankaTrails/service-booking/internal/application"
	"github.com/LankaTrails/service-booking/internal/platform/auth"
	"github.com/LankaTrails/service-booking/internal/platform/middleware"
	"github.com/LankaTrails/service-booking/internal/platform/response"
)

// OfferingHandler handles HTTP requests for provider offerings.
type OfferingHandler struct {
	service *application.OfferingService
}

// NewOfferingHandler creates a new OfferingHandler.
func NewOfferingHandler(service *application.OfferingService) *OfferingHandler {
	return &OfferingHandler{service: service}
}

// RegisterRoutes registers offering routes. Reading a single offering is public.
func (h *OfferingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	offerings := r.Group("/api/v1/offerings")
	{
		offerings.GET("/:domain/:id", h.GetOffering)
		offerings.POST("/:domain", authMW, h.CreateOffering)
		offerings.PUT("/:domain/:id", authMW, middleware.RequireProvider(), h.UpdateOffering)
		offerings.DELETE("/:domain/:id", authMW, middleware.RequireProvider(), h.DeleteOffering)
	}

	r.GET("/api/v1/provider/offerings", authMW, middleware.RequireProvider(), h.ListMyOfferings)
}

// CreateOffering handles POST /api/v1/offerings/:domain. Only the provider role of
// that domain may list offerings in it.
func (h *OfferingHandler) CreateOffering(c *gin.Context) {
	serviceType, ok := parseDomain(c)
	if !ok {
		return
	}

	providerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	if role, _ := middleware.GetUserRole(c); role != providerRoleFor(serviceType) {
		response.Forbidden(c, "only a "+string(providerRoleFor(serviceType))+" can list "+string(serviceType)+" offerings")
		return
	}

	var req application.CreateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateOffering(c.Request.Context(), providerID, serviceType, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetOffering handles GET /api/v1/offerings/:domain/:id.
func (h *OfferingHandler) GetOffering(c *gin.Context) {
	serviceType, ok := parseDomain(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid offering ID")
		return
	}

	result, err := h.service.GetOffering(c.Request.Context(), serviceType, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListMyOfferings handles GET /api/v1/provider/offerings.
func (h *OfferingHandler) ListMyOfferings(c *gin.Context) {
	providerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.ListProviderOfferings(c.Request.Context(), providerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateOffering handles PUT /api/v1/offerings/:domain/:id.
func (h *OfferingHandler) UpdateOffering(c *gin.Context) {
	serviceType, ok := parseDomain(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid offering ID")
		return
	}

	providerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.UpdateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateOffering(c.Request.Context(), serviceType, id, providerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteOffering handles DELETE /api/v1/offerings/:domain/:id.
func (h *OfferingHandler) DeleteOffering(c *gin.Context) {
	serviceType, ok := parseDomain(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid offering ID")
		return
	}

	providerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.service.DeleteOffering(c.Request.Context(), serviceType, id, providerID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "offering deleted"})
}
