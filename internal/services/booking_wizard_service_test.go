package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coralseatraining/partner-portal-backend/internal/database"
	"github.com/coralseatraining/partner-portal-backend/internal/models"
)

func setupWizardTest(t *testing.T) (*BookingWizardService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	postgresDB := &database.PostgresDB{DB: sqlxDB}

	service := NewBookingWizardService(
		database.NewCourseRepository(postgresDB),
		database.NewEmployeeRepository(postgresDB),
		database.NewBookingRepository(postgresDB),
		database.NewPartnerRepository(postgresDB),
		NewPricingService(),
	)

	cleanup := func() {
		db.Close()
	}

	return service, mock, cleanup
}

func courseRows(id, name, code string, basePrice int, active bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "code", "base_price", "category", "active", "created_at", "updated_at",
	}).AddRow(id, name, code, basePrice, "first-aid", active, now, now)
}

func employeeRows(partnerID uuid.UUID, employees ...models.Employee) *sqlmock.Rows {
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "partner_id", "name", "email", "role", "certifications", "created_at", "updated_at",
	})
	for _, e := range employees {
		rows.AddRow(e.ID, partnerID, e.Name, e.Email, e.Role, []byte("[]"), now, now)
	}
	return rows
}

func partnerRows(partnerID uuid.UUID, status models.PartnerStatus, discountPercent int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "business_name", "contact_name", "email", "phone", "abn",
		"discount_tier", "discount_percent", "status", "roles", "created_at", "updated_at",
	}).AddRow(partnerID, "Reef Dive Co", "Dana", "dana@reefdive.example", "", "",
		"silver", discountPercent, status, "{partner}", now, now)
}

func TestWizard_StartsAtCourseSelection(t *testing.T) {
	service, _, cleanup := setupWizardTest(t)
	defer cleanup()

	session := service.Session(uuid.New())
	assert.Equal(t, StateSelectCourse, session.State)
	assert.Empty(t, session.CourseID)
}

func TestWizard_SelectCourseAdvances(t *testing.T) {
	service, mock, cleanup := setupWizardTest(t)
	defer cleanup()
	partnerID := uuid.New()

	mock.ExpectQuery("FROM courses").
		WithArgs("childcare").
		WillReturnRows(courseRows("childcare", "Child Care First Aid", "HLTAID012", 140, true))

	session, err := service.SelectCourse(partnerID, "childcare")
	require.NoError(t, err)
	assert.Equal(t, StateSelectEmployees, session.State)
	assert.Equal(t, "childcare", session.CourseID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWizard_SelectCourseRejectsInactive(t *testing.T) {
	service, mock, cleanup := setupWizardTest(t)
	defer cleanup()

	mock.ExpectQuery("FROM courses").
		WithArgs("retired").
		WillReturnRows(courseRows("retired", "Old Course", "HLTAID000", 90, false))

	_, err := service.SelectCourse(uuid.New(), "retired")
	assert.Error(t, err)
}

func TestWizard_EmployeeStepGuards(t *testing.T) {
	service, mock, cleanup := setupWizardTest(t)
	defer cleanup()
	partnerID := uuid.New()

	// Cannot select employees before a course is chosen
	_, err := service.SelectEmployees(partnerID, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, ErrWizardStep)

	mock.ExpectQuery("FROM courses").
		WithArgs("cpr").
		WillReturnRows(courseRows("cpr", "CPR", "HLTAID009", 60, true))
	_, err = service.SelectCourse(partnerID, "cpr")
	require.NoError(t, err)

	// Empty selection reports a validation condition without advancing
	_, err = service.SelectEmployees(partnerID, nil)
	assert.ErrorIs(t, err, ErrNoEmployeesSelected)
	assert.Equal(t, StateSelectEmployees, service.Session(partnerID).State)

	// Empty roster is a blocked state, not a crash
	mock.ExpectQuery("FROM employees").
		WithArgs(partnerID).
		WillReturnRows(employeeRows(partnerID))
	_, err = service.SelectEmployees(partnerID, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, ErrEmptyRoster)

	// Foreign employee ids are rejected
	rosterID := uuid.New()
	mock.ExpectQuery("FROM employees").
		WithArgs(partnerID).
		WillReturnRows(employeeRows(partnerID, models.Employee{ID: rosterID, Name: "Kai"}))
	_, err = service.SelectEmployees(partnerID, []uuid.UUID{uuid.New()})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrWizardStep)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWizard_ScheduleStepValidation(t *testing.T) {
	service, mock, cleanup := setupWizardTest(t)
	defer cleanup()
	partnerID := uuid.New()
	employeeID := uuid.New()

	advanceToSchedule(t, service, mock, partnerID, employeeID)

	_, err := service.SetSchedule(partnerID, "", "Cairns")
	assert.ErrorIs(t, err, ErrMissingSchedule)

	_, err = service.SetSchedule(partnerID, "2026-04-10", "")
	assert.ErrorIs(t, err, ErrMissingSchedule)

	_, err = service.SetSchedule(partnerID, "10/04/2026", "Cairns")
	assert.Error(t, err)

	session, err := service.SetSchedule(partnerID, "2026-04-10", "Cairns Training Centre")
	require.NoError(t, err)
	assert.Equal(t, StateReview, session.State)
}

func TestWizard_BackKeepsSelections(t *testing.T) {
	service, mock, cleanup := setupWizardTest(t)
	defer cleanup()
	partnerID := uuid.New()
	employeeID := uuid.New()

	advanceToSchedule(t, service, mock, partnerID, employeeID)
	_, err := service.SetSchedule(partnerID, "2026-04-10", "Cairns")
	require.NoError(t, err)

	session, err := service.Back(partnerID, StateSelectCourse)
	require.NoError(t, err)
	assert.Equal(t, StateSelectCourse, session.State)
	assert.Equal(t, "cpr", session.CourseID)
	assert.Equal(t, []uuid.UUID{employeeID}, session.EmployeeIDs)
	assert.Equal(t, "2026-04-10", session.CourseDate)

	// Forward "back" navigation is rejected
	_, err = service.Back(partnerID, StateReview)
	assert.ErrorIs(t, err, ErrWizardStep)
}

func TestWizard_SubmitPersistsSnapshotAndResets(t *testing.T) {
	service, mock, cleanup := setupWizardTest(t)
	defer cleanup()
	partnerID := uuid.New()
	employeeID := uuid.New()

	advanceToSchedule(t, service, mock, partnerID, employeeID)
	_, err := service.SetSchedule(partnerID, "2026-04-10", "Cairns")
	require.NoError(t, err)

	expectReviewReads(mock, partnerID, employeeID, models.PartnerStatusApproved)
	mock.ExpectQuery("INSERT INTO bookings").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))

	booking, err := service.Submit(partnerID)
	require.NoError(t, err)
	assert.Equal(t, "CPR", booking.CourseName)
	assert.Equal(t, "HLTAID009", booking.CourseCode)
	assert.Equal(t, "2026-04-10", booking.CourseDate)
	assert.Equal(t, 54, booking.PricePerPerson) // 10% off 60
	assert.Equal(t, 54, booking.TotalPrice)
	assert.Equal(t, 10, booking.DiscountApplied)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	require.Len(t, booking.Employees, 1)
	assert.Equal(t, "Kai", booking.Employees[0].Name)

	// Wizard resets for the next booking
	assert.Equal(t, StateSelectCourse, service.Session(partnerID).State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWizard_FailedSubmitStaysInReview(t *testing.T) {
	service, mock, cleanup := setupWizardTest(t)
	defer cleanup()
	partnerID := uuid.New()
	employeeID := uuid.New()

	advanceToSchedule(t, service, mock, partnerID, employeeID)
	_, err := service.SetSchedule(partnerID, "2026-04-10", "Cairns")
	require.NoError(t, err)

	expectReviewReads(mock, partnerID, employeeID, models.PartnerStatusApproved)
	mock.ExpectQuery("INSERT INTO bookings").
		WillReturnError(fmt.Errorf("connection reset"))

	_, err = service.Submit(partnerID)
	assert.Error(t, err)

	// Selections survive so the partner can retry
	session := service.Session(partnerID)
	assert.Equal(t, StateReview, session.State)
	assert.Equal(t, "cpr", session.CourseID)
}

func TestWizard_PendingPartnerPaysBasePrice(t *testing.T) {
	service, mock, cleanup := setupWizardTest(t)
	defer cleanup()
	partnerID := uuid.New()
	employeeID := uuid.New()

	advanceToSchedule(t, service, mock, partnerID, employeeID)
	_, err := service.SetSchedule(partnerID, "2026-04-10", "Cairns")
	require.NoError(t, err)

	expectReviewReads(mock, partnerID, employeeID, models.PartnerStatusPending)

	review, err := service.Review(partnerID)
	require.NoError(t, err)
	assert.Equal(t, 60, review.PricePerPerson)
	assert.Equal(t, 0, review.DiscountPercent)
}

// advanceToSchedule walks a fresh session through course and employee selection
func advanceToSchedule(t *testing.T, service *BookingWizardService, mock sqlmock.Sqlmock, partnerID, employeeID uuid.UUID) {
	t.Helper()

	mock.ExpectQuery("FROM courses").
		WithArgs("cpr").
		WillReturnRows(courseRows("cpr", "CPR", "HLTAID009", 60, true))
	_, err := service.SelectCourse(partnerID, "cpr")
	require.NoError(t, err)

	mock.ExpectQuery("FROM employees").
		WithArgs(partnerID).
		WillReturnRows(employeeRows(partnerID, models.Employee{ID: employeeID, Name: "Kai", Email: "kai@reefdive.example"}))
	_, err = service.SelectEmployees(partnerID, []uuid.UUID{employeeID})
	require.NoError(t, err)
}

// expectReviewReads queues the partner, course and roster reads behind the
// review step in the order the wizard issues them
func expectReviewReads(mock sqlmock.Sqlmock, partnerID, employeeID uuid.UUID, status models.PartnerStatus) {
	mock.ExpectQuery("FROM partners").
		WithArgs(partnerID).
		WillReturnRows(partnerRows(partnerID, status, 10))
	mock.ExpectQuery("FROM courses").
		WithArgs("cpr").
		WillReturnRows(courseRows("cpr", "CPR", "HLTAID009", 60, true))
	mock.ExpectQuery("FROM employees").
		WithArgs(partnerID).
		WillReturnRows(employeeRows(partnerID, models.Employee{ID: employeeID, Name: "Kai", Email: "kai@reefdive.example"}))
}
