package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/LankaTrails/service-booking/internal/application"
	"github.com/LankaTrails/service-booking/internal/platform/auth"
	"github.com/LankaTrails/service-booking/internal/platform/middleware"
	"github.com/LankaTrails/service-booking/internal/platform/response"
)

// BookingHandler handles HTTP requests for reservation operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all reservation routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("/:domain", middleware.RequireRole(auth.RoleTourist), h.CreateReservation)
		bookings.PUT("/:domain/:id/status", middleware.RequireProvider(), h.UpdateStatus)
		bookings.GET("/:domain/by-offering/:offeringId", middleware.RequireProvider(), h.ListOfferingReservations)
	}

	r.GET("/api/v1/reservations/:id", authMW, h.GetReservation)
	r.GET("/api/v1/me/bookings", authMW, middleware.RequireRole(auth.RoleTourist), h.GetHistory)
	r.GET("/api/v1/provider/bookings", authMW, middleware.RequireProvider(), h.ListProviderReservations)
}

// CreateReservation handles POST /api/v1/bookings/:domain.
func (h *BookingHandler) CreateReservation(c *gin.Context) {
	serviceType, ok := parseDomain(c)
	if !ok {
		return
	}

	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	requester := application.Requester{ID: claims.UserID, Name: claims.Name, Email: claims.Email}
	result, err := h.service.CreateReservation(c.Request.Context(), serviceType, requester, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":        true,
		"message":        "Booking created successfully",
		"reservation_id": result.ID,
		"data":           result,
	})
}

// UpdateStatus handles PUT /api/v1/bookings/:domain/:id/status.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	serviceType, ok := parseDomain(c)
	if !ok {
		return
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return
	}

	providerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SetStatus(c.Request.Context(), serviceType, reservationID, req.Status, providerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Booking has been %s successfully", result.Reservation.Status),
		"changed": result.Changed,
		"data":    result.Reservation,
	})
}

// ListOfferingReservations handles GET /api/v1/bookings/:domain/by-offering/:offeringId.
func (h *BookingHandler) ListOfferingReservations(c *gin.Context) {
	serviceType, ok := parseDomain(c)
	if !ok {
		return
	}

	offeringID, err := uuid.Parse(c.Param("offeringId"))
	if err != nil {
		response.BadRequest(c, "invalid offering ID")
		return
	}

	providerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.ListOfferingReservations(c.Request.Context(), serviceType, offeringID, providerID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetReservation handles GET /api/v1/reservations/:id.
func (h *BookingHandler) GetReservation(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	role, _ := middleware.GetUserRole(c)

	result, err := h.service.GetReservation(c.Request.Context(), reservationID, userID, role == auth.RoleAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetHistory handles GET /api/v1/me/bookings. The optional type query narrows the
// history to one domain.
func (h *BookingHandler) GetHistory(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var q historyQuery
	serviceType, ok := bindOptionalDomain(c, &q)
	if !ok {
		return
	}

	result, err := h.service.GetHistory(c.Request.Context(), userID, serviceType)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListProviderReservations handles GET /api/v1/provider/bookings.
func (h *BookingHandler) ListProviderReservations(c *gin.Context) {
	providerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var q providerQuery
	serviceType, ok := bindOptionalDomain(c, &q)
	if !ok {
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.ListProviderReservations(c.Request.Context(), providerID, serviceType, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
