package database

import (
	"fmt"

	"github.com/coralseatraining/partner-portal-backend/internal/models"
)

// AppointmentRepository mirrors vendor appointments received via webhook
// into a table the admin surfaces can query
type AppointmentRepository struct {
	db DB
}

// NewAppointmentRepository creates a new AppointmentRepository
func NewAppointmentRepository(db DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Upsert stores or refreshes the mirror row for a vendor appointment
func (r *AppointmentRepository) Upsert(appointment *models.SchedulingAppointment) error {
	query := `
		INSERT INTO scheduling_appointments (
			id, type, first_name, last_name, email, phone,
			datetime, duration, calendar, canceled,
			last_webhook_action, last_webhook_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (id) DO UPDATE
		SET type = EXCLUDED.type, first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name, email = EXCLUDED.email,
		    phone = EXCLUDED.phone, datetime = EXCLUDED.datetime,
		    duration = EXCLUDED.duration, calendar = EXCLUDED.calendar,
		    canceled = EXCLUDED.canceled,
		    last_webhook_action = EXCLUDED.last_webhook_action,
		    last_webhook_at = NOW()
	`

	_, err := r.db.Exec(
		query,
		appointment.ID, appointment.Type, appointment.FirstName, appointment.LastName,
		appointment.Email, appointment.Phone, appointment.Datetime,
		appointment.Duration, appointment.Calendar, appointment.Canceled,
		appointment.LastWebhookAction,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert appointment mirror: %w", err)
	}

	return nil
}

// List retrieves mirrored appointments, most recently touched first
func (r *AppointmentRepository) List(limit int) ([]models.SchedulingAppointment, error) {
	query := `
		SELECT id, type, first_name, last_name, email, phone,
		       datetime, duration, calendar, canceled,
		       last_webhook_action, last_webhook_at
		FROM scheduling_appointments
		ORDER BY last_webhook_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	appointments := []models.SchedulingAppointment{}
	for rows.Next() {
		var a models.SchedulingAppointment
		err := rows.Scan(
			&a.ID, &a.Type, &a.FirstName, &a.LastName, &a.Email, &a.Phone,
			&a.Datetime, &a.Duration, &a.Calendar, &a.Canceled,
			&a.LastWebhookAction, &a.LastWebhookAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}

	return appointments, rows.Err()
}
