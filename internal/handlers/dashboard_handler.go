package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coralseatraining/partner-portal-backend/internal/database"
	"github.com/coralseatraining/partner-portal-backend/internal/middleware"
	"github.com/coralseatraining/partner-portal-backend/internal/models"
	"github.com/coralseatraining/partner-portal-backend/internal/services"
)

// recentBookingLimit caps the dashboard booking list
const recentBookingLimit = 5

// DashboardHandler aggregates the partner dashboard view
type DashboardHandler struct {
	employeeRepo *database.EmployeeRepository
	bookingRepo  *database.BookingRepository
	compliance   *services.ComplianceService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(
	employeeRepo *database.EmployeeRepository,
	bookingRepo *database.BookingRepository,
	compliance *services.ComplianceService,
) *DashboardHandler {
	return &DashboardHandler{
		employeeRepo: employeeRepo,
		bookingRepo:  bookingRepo,
		compliance:   compliance,
	}
}

// GetDashboard returns roster compliance stats, expiry alerts and recent
// bookings in one call
// GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	partnerCtx, exists := middleware.GetPartnerContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	employees, err := h.employeeRepo.ListByPartner(partnerCtx.PartnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch employees"})
		return
	}

	bookings, err := h.bookingRepo.ListByPartner(partnerCtx.PartnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	pendingBookings := 0
	for _, booking := range bookings {
		if booking.Status == models.BookingStatusPending {
			pendingBookings++
		}
	}
	recent := bookings
	if len(recent) > recentBookingLimit {
		recent = recent[:recentBookingLimit]
	}

	now := time.Now()
	c.JSON(http.StatusOK, gin.H{
		"compliance":       h.compliance.Summarize(employees, now),
		"alerts":           h.compliance.Alerts(employees, now),
		"total_bookings":   len(bookings),
		"pending_bookings": pendingBookings,
		"recent_bookings":  recent,
	})
}
