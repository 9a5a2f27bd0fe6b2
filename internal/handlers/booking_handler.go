package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/coralseatraining/partner-portal-backend/internal/database"
	"github.com/coralseatraining/partner-portal-backend/internal/middleware"
	"github.com/coralseatraining/partner-portal-backend/internal/models"
	"github.com/coralseatraining/partner-portal-backend/internal/services"
)

// syncTimeout bounds the background appointment sync after submission
const syncTimeout = 2 * time.Minute

// BookingHandler handles the booking wizard flow and booking queries
type BookingHandler struct {
	wizard      *services.BookingWizardService
	bookingRepo *database.BookingRepository
	sync        *services.SyncService
	logger      *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(
	wizard *services.BookingWizardService,
	bookingRepo *database.BookingRepository,
	sync *services.SyncService,
	logger *logrus.Logger,
) *BookingHandler {
	return &BookingHandler{
		wizard:      wizard,
		bookingRepo: bookingRepo,
		sync:        sync,
		logger:      logger,
	}
}

type selectCourseRequest struct {
	CourseID string `json:"course_id" binding:"required"`
}

type selectEmployeesRequest struct {
	EmployeeIDs []uuid.UUID `json:"employee_ids" binding:"required"`
}

type setScheduleRequest struct {
	CourseDate string `json:"course_date" binding:"required"`
	Location   string `json:"location" binding:"required"`
}

type backRequest struct {
	Step string `json:"step" binding:"required"`
}

// GetWizard returns the current wizard session
// GET /api/v1/bookings/wizard
func (h *BookingHandler) GetWizard(c *gin.Context) {
	partnerCtx, exists := middleware.GetPartnerContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, h.wizard.Session(partnerCtx.PartnerID))
}

// SelectCourse records the course choice
// POST /api/v1/bookings/wizard/course
func (h *BookingHandler) SelectCourse(c *gin.Context) {
	partnerCtx, exists := middleware.GetPartnerContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req selectCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.wizard.SelectCourse(partnerCtx.PartnerID, req.CourseID)
	if err != nil {
		h.respondWizardError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SelectEmployees records the attendee selection
// POST /api/v1/bookings/wizard/employees
func (h *BookingHandler) SelectEmployees(c *gin.Context) {
	partnerCtx, exists := middleware.GetPartnerContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req selectEmployeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.wizard.SelectEmployees(partnerCtx.PartnerID, req.EmployeeIDs)
	if err != nil {
		h.respondWizardError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SetSchedule records the course date and location
// POST /api/v1/bookings/wizard/schedule
func (h *BookingHandler) SetSchedule(c *gin.Context) {
	partnerCtx, exists := middleware.GetPartnerContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req setScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.wizard.SetSchedule(partnerCtx.PartnerID, req.CourseDate, req.Location)
	if err != nil {
		h.respondWizardError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// Back moves the wizard to an earlier step, keeping selections
// POST /api/v1/bookings/wizard/back
func (h *BookingHandler) Back(c *gin.Context) {
	partnerCtx, exists := middleware.GetPartnerContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req backRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.wizard.Back(partnerCtx.PartnerID, services.WizardState(req.Step))
	if err != nil {
		h.respondWizardError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// Review returns the priced summary for the review step
// GET /api/v1/bookings/wizard/review
func (h *BookingHandler) Review(c *gin.Context) {
	partnerCtx, exists := middleware.GetPartnerContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	review, err := h.wizard.Review(partnerCtx.PartnerID)
	if err != nil {
		h.respondWizardError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// Submit persists the booking and starts the appointment sync in the
// background. The wizard resets only after the booking write succeeds.
// POST /api/v1/bookings/wizard/submit
func (h *BookingHandler) Submit(c *gin.Context) {
	partnerCtx, exists := middleware.GetPartnerContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	booking, err := h.wizard.Submit(partnerCtx.PartnerID)
	if err != nil {
		h.respondWizardError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"partner_id":  booking.PartnerID,
		"course_code": booking.CourseCode,
		"total_price": booking.TotalPrice,
	}).Info("Booking submitted")

	go func(b models.Booking) {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		h.sync.SyncBooking(ctx, &b)
	}(*booking)

	c.JSON(http.StatusCreated, booking)
}

// ResetWizard abandons the current wizard session
// POST /api/v1/bookings/wizard/reset
func (h *BookingHandler) ResetWizard(c *gin.Context) {
	partnerCtx, exists := middleware.GetPartnerContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	h.wizard.Reset(partnerCtx.PartnerID)
	c.JSON(http.StatusOK, h.wizard.Session(partnerCtx.PartnerID))
}

// ListBookings returns the partner's bookings, newest first
// GET /api/v1/bookings
func (h *BookingHandler) ListBookings(c *gin.Context) {
	partnerCtx, exists := middleware.GetPartnerContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookings, err := h.bookingRepo.ListByPartner(partnerCtx.PartnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// GetBooking returns one booking owned by the partner
// GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	partnerCtx, exists := middleware.GetPartnerContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	booking, err := h.bookingRepo.GetByID(partnerCtx.PartnerID, bookingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch booking"})
		return
	}

	c.JSON(http.StatusOK, booking)
}

// AdminUpdateBookingStatus sets a booking's status
// PUT /api/v1/admin/bookings/:id/status
func (h *BookingHandler) AdminUpdateBookingStatus(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	var req models.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidBookingStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking status"})
		return
	}

	if err := h.bookingRepo.UpdateStatus(bookingID, models.BookingStatus(req.Status)); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update booking"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking status updated"})
}

// respondWizardError maps wizard guard failures onto HTTP responses
func (h *BookingHandler) respondWizardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrWizardStep):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "WIZARD_STEP"})
	case errors.Is(err, services.ErrEmptyRoster):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "NO_EMPLOYEES"})
	case errors.Is(err, services.ErrNoEmployeesSelected), errors.Is(err, services.ErrMissingSchedule):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "VALIDATION"})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
