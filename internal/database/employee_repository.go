package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/coralseatraining/partner-portal-backend/internal/models"
	"github.com/google/uuid"
)

// EmployeeRepository handles database operations for the employees table.
// Every query is scoped by partner id so one partner can never read or
// mutate another partner's roster.
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository creates a new EmployeeRepository
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create creates a new employee with an empty certification list
func (r *EmployeeRepository) Create(employee *models.Employee) error {
	if employee.ID == uuid.Nil {
		employee.ID = uuid.New()
	}
	if employee.Certifications == nil {
		employee.Certifications = models.CertificationList{}
	}

	query := `
		INSERT INTO employees (id, partner_id, name, email, role, certifications)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		employee.ID, employee.PartnerID, employee.Name,
		employee.Email, employee.Role, employee.Certifications,
	).Scan(&employee.CreatedAt, &employee.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}

	return nil
}

// GetByID retrieves one employee within a partner's roster
func (r *EmployeeRepository) GetByID(partnerID, employeeID uuid.UUID) (*models.Employee, error) {
	query := `
		SELECT id, partner_id, name, email, role, certifications, created_at, updated_at
		FROM employees
		WHERE partner_id = $1 AND id = $2
	`

	employee, err := r.scanEmployee(r.db.QueryRow(query, partnerID, employeeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("employee not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch employee: %w", err)
	}

	return employee, nil
}

// ListByPartner retrieves a partner's full roster ordered by name
func (r *EmployeeRepository) ListByPartner(partnerID uuid.UUID) ([]models.Employee, error) {
	query := `
		SELECT id, partner_id, name, email, role, certifications, created_at, updated_at
		FROM employees
		WHERE partner_id = $1
		ORDER BY name
	`

	rows, err := r.db.Query(query, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := []models.Employee{}
	for rows.Next() {
		employee, err := r.scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, *employee)
	}

	return employees, rows.Err()
}

// UpdateDetails updates the employee's profile fields, leaving the
// certification list untouched
func (r *EmployeeRepository) UpdateDetails(partnerID, employeeID uuid.UUID, name, email, role string) error {
	query := `
		UPDATE employees
		SET name = $3, email = $4, role = $5, updated_at = NOW()
		WHERE partner_id = $1 AND id = $2
	`

	result, err := r.db.Exec(query, partnerID, employeeID, name, email, role)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("employee not found: %w", ErrNotFound)
	}

	return nil
}

// ReplaceCertifications writes the employee's full certification list. The
// list is embedded, so add and remove both flow through here as a single
// document write.
func (r *EmployeeRepository) ReplaceCertifications(partnerID, employeeID uuid.UUID, certs models.CertificationList) error {
	if certs == nil {
		certs = models.CertificationList{}
	}

	query := `
		UPDATE employees
		SET certifications = $3, updated_at = NOW()
		WHERE partner_id = $1 AND id = $2
	`

	result, err := r.db.Exec(query, partnerID, employeeID, certs)
	if err != nil {
		return fmt.Errorf("failed to update certifications: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("employee not found: %w", ErrNotFound)
	}

	return nil
}

// Delete permanently removes an employee. There is no soft delete.
func (r *EmployeeRepository) Delete(partnerID, employeeID uuid.UUID) error {
	query := `DELETE FROM employees WHERE partner_id = $1 AND id = $2`

	result, err := r.db.Exec(query, partnerID, employeeID)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("employee not found: %w", ErrNotFound)
	}

	return nil
}

func (r *EmployeeRepository) scanEmployee(row scanner) (*models.Employee, error) {
	employee := &models.Employee{}
	var email, role sql.NullString

	err := row.Scan(
		&employee.ID, &employee.PartnerID, &employee.Name,
		&email, &role, &employee.Certifications,
		&employee.CreatedAt, &employee.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	employee.Email = email.String
	employee.Role = role.String
	if employee.Certifications == nil {
		employee.Certifications = models.CertificationList{}
	}

	return employee, nil
}
