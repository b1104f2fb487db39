package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/LankaTrails/service-booking/internal/application"
	"github.com/LankaTrails/service-booking/internal/platform/response"
)

// AvailabilityHandler serves the public availability check.
type AvailabilityHandler struct {
	service *application.AvailabilityService
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(service *application.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// RegisterRoutes registers the availability route. It needs no token.
func (h *AvailabilityHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/api/v1/availability/:domain", h.CheckAvailability)
}

// CheckAvailability handles GET /api/v1/availability/:domain.
func (h *AvailabilityHandler) CheckAvailability(c *gin.Context) {
	serviceType, ok := parseDomain(c)
	if !ok {
		return
	}

	var q application.AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	offeringID, err := uuid.Parse(c.Query("offering_id"))
	if err != nil {
		response.BadRequest(c, "offering_id must be a valid UUID")
		return
	}
	q.OfferingID = offeringID

	result, err := h.service.CheckAvailability(c.Request.Context(), serviceType, q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
