package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/LankaTrails/service-booking/internal/application"
	"github.com/LankaTrails/service-booking/internal/platform/auth"
	"github.com/LankaTrails/service-booking/internal/platform/middleware"
	"github.com/LankaTrails/service-booking/internal/platform/response"
)

// AdminBookingHandler handles admin HTTP requests for reservation oversight.
type AdminBookingHandler struct {
	service *application.BookingService
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(service *application.BookingService) *AdminBookingHandler {
	return &AdminBookingHandler{service: service}
}

// RegisterRoutes registers admin routes.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListReservations)
		admin.GET("/stats/bookings", h.ReservationStats)
	}
}

// ListReservations handles GET /api/v1/admin/bookings.
func (h *AdminBookingHandler) ListReservations(c *gin.Context) {
	page, limit := parsePagination(c)

	list, total, err := h.service.ListAllReservations(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, list, total, page, limit)
}

// ReservationStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) ReservationStats(c *gin.Context) {
	stats, err := h.service.GetReservationStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
