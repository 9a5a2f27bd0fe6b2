package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coralseatraining/partner-portal-backend/internal/models"
)

func setupEmployeeRepoTest(t *testing.T) (*EmployeeRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewEmployeeRepository(&PostgresDB{DB: sqlxDB})

	return repo, mock, func() { db.Close() }
}

func TestEmployeeRepository_Create(t *testing.T) {
	repo, mock, cleanup := setupEmployeeRepoTest(t)
	defer cleanup()

	partnerID := uuid.New()
	employee := &models.Employee{
		PartnerID: partnerID,
		Name:      "Kai Nguyen",
		Email:     "kai@reefdive.example",
		Role:      "Dive Instructor",
	}

	mock.ExpectQuery("INSERT INTO employees").
		WithArgs(sqlmock.AnyArg(), partnerID, "Kai Nguyen", "kai@reefdive.example", "Dive Instructor", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))

	err := repo.Create(employee)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, employee.ID)
	assert.NotNil(t, employee.Certifications)
	assert.False(t, employee.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepository_GetByID(t *testing.T) {
	repo, mock, cleanup := setupEmployeeRepoTest(t)
	defer cleanup()

	partnerID := uuid.New()
	employeeID := uuid.New()
	now := time.Now()
	certsJSON := []byte(`[{"course_name":"CPR","date_completed":"2025-06-01","expiry_date":"2026-06-01"}]`)

	mock.ExpectQuery("FROM employees").
		WithArgs(partnerID, employeeID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "partner_id", "name", "email", "role", "certifications", "created_at", "updated_at",
		}).AddRow(employeeID, partnerID, "Kai Nguyen", "kai@reefdive.example", "Dive Instructor", certsJSON, now, now))

	employee, err := repo.GetByID(partnerID, employeeID)
	require.NoError(t, err)
	assert.Equal(t, "Kai Nguyen", employee.Name)
	require.Len(t, employee.Certifications, 1)
	assert.Equal(t, "CPR", employee.Certifications[0].CourseName)
	require.NotNil(t, employee.Certifications[0].ExpiryDate)
	assert.Equal(t, "2026-06-01", *employee.Certifications[0].ExpiryDate)
}

func TestEmployeeRepository_GetByID_NotFound(t *testing.T) {
	repo, mock, cleanup := setupEmployeeRepoTest(t)
	defer cleanup()

	partnerID := uuid.New()
	employeeID := uuid.New()

	mock.ExpectQuery("FROM employees").
		WithArgs(partnerID, employeeID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "partner_id", "name", "email", "role", "certifications", "created_at", "updated_at",
		}))

	_, err := repo.GetByID(partnerID, employeeID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmployeeRepository_ListByPartner(t *testing.T) {
	repo, mock, cleanup := setupEmployeeRepoTest(t)
	defer cleanup()

	partnerID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("FROM employees").
		WithArgs(partnerID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "partner_id", "name", "email", "role", "certifications", "created_at", "updated_at",
		}).
			AddRow(uuid.New(), partnerID, "Amara Bell", nil, nil, []byte(`[]`), now, now).
			AddRow(uuid.New(), partnerID, "Kai Nguyen", "kai@reefdive.example", "Dive Instructor", []byte(`[]`), now, now))

	employees, err := repo.ListByPartner(partnerID)
	require.NoError(t, err)
	require.Len(t, employees, 2)

	// NULL email and role come back as empty strings, not scan failures
	assert.Equal(t, "Amara Bell", employees[0].Name)
	assert.Empty(t, employees[0].Email)
	assert.NotNil(t, employees[0].Certifications)
}

func TestEmployeeRepository_UpdateDetails_NotFound(t *testing.T) {
	repo, mock, cleanup := setupEmployeeRepoTest(t)
	defer cleanup()

	partnerID := uuid.New()
	employeeID := uuid.New()

	mock.ExpectExec("UPDATE employees").
		WithArgs(partnerID, employeeID, "Kai Nguyen", "kai@reefdive.example", "Skipper").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateDetails(partnerID, employeeID, "Kai Nguyen", "kai@reefdive.example", "Skipper")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmployeeRepository_ReplaceCertifications(t *testing.T) {
	repo, mock, cleanup := setupEmployeeRepoTest(t)
	defer cleanup()

	partnerID := uuid.New()
	employeeID := uuid.New()
	expiry := "2027-01-15"
	certs := models.CertificationList{
		{CourseName: "Provide First Aid", DateCompleted: "2026-01-15", ExpiryDate: &expiry},
	}

	mock.ExpectExec("UPDATE employees").
		WithArgs(partnerID, employeeID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ReplaceCertifications(partnerID, employeeID, certs)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepository_Delete(t *testing.T) {
	repo, mock, cleanup := setupEmployeeRepoTest(t)
	defer cleanup()

	partnerID := uuid.New()
	employeeID := uuid.New()

	mock.ExpectExec("DELETE FROM employees").
		WithArgs(partnerID, employeeID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(partnerID, employeeID))

	mock.ExpectExec("DELETE FROM employees").
		WithArgs(partnerID, employeeID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(partnerID, employeeID), ErrNotFound)
}
