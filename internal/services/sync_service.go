package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/coralseatraining/partner-portal-backend/internal/database"
	"github.com/coralseatraining/partner-portal-backend/internal/models"
	"github.com/coralseatraining/partner-portal-backend/pkg/scheduling"
)

// defaultSessionStart is used when a booking only carries a calendar date
const defaultSessionStart = "09:00"

// webhookActions maps recognized vendor webhook actions to booking statuses
var webhookActions = map[string]models.BookingStatus{
	"appointment.scheduled":   models.BookingStatusConfirmed,
	"appointment.rescheduled": models.BookingStatusRescheduled,
	"appointment.canceled":    models.BookingStatusCancelled,
	"appointment.changed":     models.BookingStatusConfirmed,
}

// WebhookStatus resolves a vendor webhook action to the booking status it
// implies. The second return value is false for unrecognized actions.
func WebhookStatus(action string) (models.BookingStatus, bool) {
	status, ok := webhookActions[action]
	return status, ok
}

// SyncService pushes submitted bookings into the scheduling vendor, one
// appointment per attendee, and applies vendor webhook events back onto
// booking records.
type SyncService struct {
	client          *scheduling.Client
	bookingRepo     *database.BookingRepository
	appointmentRepo *database.AppointmentRepository
	log             *logrus.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(
	client *scheduling.Client,
	bookingRepo *database.BookingRepository,
	appointmentRepo *database.AppointmentRepository,
	log *logrus.Logger,
) *SyncService {
	return &SyncService{
		client:          client,
		bookingRepo:     bookingRepo,
		appointmentRepo: appointmentRepo,
		log:             log,
	}
}

// SyncBooking creates a vendor appointment for every attendee on the booking.
// Outcome is recorded on the booking: synced when every attendee was booked,
// no_match when no vendor appointment type corresponds to the course, failed
// when any attendee could not be booked. Errors are recorded, not returned;
// a failed sync never unwinds the booking itself.
func (s *SyncService) SyncBooking(ctx context.Context, booking *models.Booking) {
	apptType, err := s.matchAppointmentType(ctx, booking)
	if err != nil {
		s.recordSync(booking, models.SyncStatusFailed, err.Error(), nil)
		return
	}
	if apptType == nil {
		s.recordSync(booking, models.SyncStatusNoMatch,
			fmt.Sprintf("no appointment type matches course %s", booking.CourseCode), nil)
		return
	}

	datetime := fmt.Sprintf("%sT%s:00", booking.CourseDate, defaultSessionStart)
	appointmentIDs := make([]int64, 0, len(booking.Employees))
	var firstErr error

	for _, attendee := range booking.Employees {
		firstName, lastName := splitName(attendee.Name)
		appt, err := s.client.CreateAppointment(ctx, scheduling.CreateAppointmentRequest{
			AppointmentTypeID: apptType.ID,
			Datetime:          datetime,
			FirstName:         firstName,
			LastName:          lastName,
			Email:             attendee.Email,
		})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			s.log.WithFields(logrus.Fields{
				"booking_id": booking.ID,
				"attendee":   attendee.Email,
				"error":      err.Error(),
			}).Warn("Appointment creation failed")
			continue
		}

		appointmentIDs = append(appointmentIDs, appt.ID)
		s.mirrorAppointment(appt, "")
	}

	if firstErr != nil {
		s.recordSync(booking, models.SyncStatusFailed, firstErr.Error(), appointmentIDs)
		return
	}
	s.recordSync(booking, models.SyncStatusSynced, "", appointmentIDs)
}

// ProcessWebhook applies a recognized vendor event to every booking holding
// the appointment. The caller has already validated the action and id.
func (s *SyncService) ProcessWebhook(ctx context.Context, action string, appointmentID int64) error {
	status, ok := WebhookStatus(action)
	if !ok {
		return fmt.Errorf("unrecognized webhook action %q", action)
	}

	appt, err := s.client.GetAppointment(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("failed to fetch appointment %d: %w", appointmentID, err)
	}
	s.mirrorAppointment(appt, action)

	bookings, err := s.bookingRepo.ListByAppointmentID(appointmentID)
	if err != nil {
		return fmt.Errorf("failed to find bookings for appointment %d: %w", appointmentID, err)
	}

	for _, booking := range bookings {
		if err := s.bookingRepo.UpdateStatus(booking.ID, status); err != nil {
			return fmt.Errorf("failed to update booking %s: %w", booking.ID, err)
		}
		s.log.WithFields(logrus.Fields{
			"booking_id":     booking.ID,
			"appointment_id": appointmentID,
			"action":         action,
			"status":         status,
		}).Info("Booking status updated from webhook")
	}
	return nil
}

// matchAppointmentType finds the vendor appointment type for a booking's
// course, matching on code first and falling back to name.
func (s *SyncService) matchAppointmentType(ctx context.Context, booking *models.Booking) (*scheduling.AppointmentType, error) {
	types, err := s.client.GetAppointmentTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointment types: %w", err)
	}

	code := strings.ToLower(booking.CourseCode)
	name := strings.ToLower(booking.CourseName)
	for i := range types {
		if !types[i].Active {
			continue
		}
		typeName := strings.ToLower(types[i].Name)
		if strings.Contains(typeName, code) || strings.Contains(typeName, name) {
			return &types[i], nil
		}
	}
	return nil, nil
}

// mirrorAppointment records the vendor's view of an appointment locally
func (s *SyncService) mirrorAppointment(appt *scheduling.Appointment, webhookAction string) {
	duration, _ := strconv.Atoi(appt.Duration)
	record := &models.SchedulingAppointment{
		ID:                appt.ID,
		Type:              appt.Type,
		FirstName:         appt.FirstName,
		LastName:          appt.LastName,
		Email:             appt.Email,
		Phone:             appt.Phone,
		Datetime:          appt.Datetime,
		Duration:          duration,
		Calendar:          appt.Calendar,
		Canceled:          appt.Canceled,
		LastWebhookAction: webhookAction,
	}
	if err := s.appointmentRepo.Upsert(record); err != nil {
		s.log.WithFields(logrus.Fields{
			"appointment_id": appt.ID,
			"error":          err.Error(),
		}).Warn("Failed to mirror appointment")
	}
}

// recordSync writes the sync outcome onto the booking
func (s *SyncService) recordSync(booking *models.Booking, status models.SyncStatus, syncErr string, appointmentIDs []int64) {
	var errPtr *string
	if syncErr != "" {
		errPtr = &syncErr
	}
	if err := s.bookingRepo.UpdateSyncResult(booking.ID, status, appointmentIDs, errPtr); err != nil {
		s.log.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"error":      err.Error(),
		}).Error("Failed to record sync result")
		return
	}
	s.log.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"sync_status":  status,
		"appointments": len(appointmentIDs),
	}).Info("Booking sync recorded")
}

// splitName splits a display name into first and last parts on the final space
func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return name, ""
	}
	return name[:idx], name[idx+1:]
}
