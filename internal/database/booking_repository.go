package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/coralseatraining/partner-portal-backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create creates a new booking in a single insert. The snapshot fields are
// frozen here and never rewritten.
func (r *BookingRepository) Create(booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusPending
	}
	if booking.SyncStatus == "" {
		booking.SyncStatus = models.SyncStatusPending
	}

	query := `
		INSERT INTO bookings (
			id, partner_id, course_name, course_code, course_date, location,
			employees, price_per_person, total_price, discount_applied,
			status, sync_status, appointment_ids
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		booking.ID, booking.PartnerID, booking.CourseName, booking.CourseCode,
		booking.CourseDate, booking.Location, booking.Employees,
		booking.PricePerPerson, booking.TotalPrice, booking.DiscountApplied,
		booking.Status, booking.SyncStatus, pq.Array(booking.AppointmentIDs),
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID retrieves one booking within a partner's history
func (r *BookingRepository) GetByID(partnerID, bookingID uuid.UUID) (*models.Booking, error) {
	query := selectBookingQuery + ` WHERE partner_id = $1 AND id = $2`

	booking, err := r.scanBooking(r.db.QueryRow(query, partnerID, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}

	return booking, nil
}

// ListByPartner retrieves a partner's bookings, newest first
func (r *BookingRepository) ListByPartner(partnerID uuid.UUID) ([]models.Booking, error) {
	query := selectBookingQuery + `
		WHERE partner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// ListByAppointmentID retrieves every booking that holds the given vendor
// appointment id. Used by the webhook relay to fan status updates out.
func (r *BookingRepository) ListByAppointmentID(appointmentID int64) ([]models.Booking, error) {
	query := selectBookingQuery + ` WHERE $1 = ANY(appointment_ids)`

	rows, err := r.db.Query(query, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings for appointment: %w", err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// UpdateStatus updates the booking status
func (r *BookingRepository) UpdateStatus(bookingID uuid.UUID, status models.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, bookingID, status)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("booking not found: %w", ErrNotFound)
	}

	return nil
}

// UpdateSyncResult records the outcome of a scheduling-vendor sync attempt
func (r *BookingRepository) UpdateSyncResult(bookingID uuid.UUID, status models.SyncStatus, appointmentIDs []int64, syncError *string) error {
	query := `
		UPDATE bookings
		SET sync_status = $2,
		    appointment_ids = $3,
		    sync_error = $4,
		    synced_at = CASE WHEN $2 = 'synced' THEN NOW() ELSE synced_at END,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, bookingID, status, pq.Array(appointmentIDs), syncError)
	if err != nil {
		return fmt.Errorf("failed to update sync result: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("booking not found: %w", ErrNotFound)
	}

	return nil
}

const selectBookingQuery = `
	SELECT id, partner_id, course_name, course_code, course_date, location,
	       employees, price_per_person, total_price, discount_applied,
	       status, sync_status, sync_error, appointment_ids, synced_at,
	       created_at, updated_at
	FROM bookings`

func (r *BookingRepository) scanBooking(row scanner) (*models.Booking, error) {
	booking := &models.Booking{}
	var syncError sql.NullString
	var syncedAt sql.NullTime
	var appointmentIDs pq.Int64Array

	err := row.Scan(
		&booking.ID, &booking.PartnerID, &booking.CourseName, &booking.CourseCode,
		&booking.CourseDate, &booking.Location, &booking.Employees,
		&booking.PricePerPerson, &booking.TotalPrice, &booking.DiscountApplied,
		&booking.Status, &booking.SyncStatus, &syncError, &appointmentIDs, &syncedAt,
		&booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if syncError.Valid {
		booking.SyncError = &syncError.String
	}
	if syncedAt.Valid {
		booking.SyncedAt = &syncedAt.Time
	}
	booking.AppointmentIDs = []int64(appointmentIDs)

	return booking, nil
}

func (r *BookingRepository) scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	bookings := []models.Booking{}

	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}
