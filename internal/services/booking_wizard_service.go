package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coralseatraining/partner-portal-backend/internal/database"
	"github.com/coralseatraining/partner-portal-backend/internal/models"
)

// WizardState is one step of the booking flow
type WizardState string

const (
	StateSelectCourse    WizardState = "select_course"
	StateSelectEmployees WizardState = "select_employees"
	StateSelectSchedule  WizardState = "select_schedule"
	StateReview          WizardState = "review"
)

// wizardOrder maps each state to its position in the linear flow
var wizardOrder = map[WizardState]int{
	StateSelectCourse:    0,
	StateSelectEmployees: 1,
	StateSelectSchedule:  2,
	StateReview:          3,
}

// Wizard guard errors, surfaced to the partner as validation conditions
var (
	ErrWizardStep          = errors.New("step not available from the current state")
	ErrEmptyRoster         = errors.New("no employees on file; add employees before booking")
	ErrNoEmployeesSelected = errors.New("select at least one employee")
	ErrMissingSchedule     = errors.New("both a course date and a location are required")
)

// WizardSession is one partner's in-progress booking. Selections made in later
// steps survive back-navigation until the wizard is submitted or reset.
type WizardSession struct {
	State       WizardState `json:"state"`
	CourseID    string      `json:"course_id,omitempty"`
	EmployeeIDs []uuid.UUID `json:"employee_ids,omitempty"`
	CourseDate  string      `json:"course_date,omitempty"`
	Location    string      `json:"location,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// WizardReview is the computed pricing shown on the review step
type WizardReview struct {
	Session         WizardSession            `json:"session"`
	Course          models.Course            `json:"course"`
	Employees       []models.BookingEmployee `json:"employees"`
	PricePerPerson  int                      `json:"price_per_person"`
	TotalPrice      int                      `json:"total_price"`
	DiscountPercent int                      `json:"discount_percent"`
}

// BookingWizardService owns the per-partner booking flow. Each partner has at
// most one session at a time; submission persists a single booking record and
// resets the session for the next booking.
type BookingWizardService struct {
	courseRepo   *database.CourseRepository
	employeeRepo *database.EmployeeRepository
	bookingRepo  *database.BookingRepository
	partnerRepo  *database.PartnerRepository
	pricing      *PricingService

	mu       sync.Mutex
	sessions map[uuid.UUID]*WizardSession
}

// NewBookingWizardService creates a new BookingWizardService
func NewBookingWizardService(
	courseRepo *database.CourseRepository,
	employeeRepo *database.EmployeeRepository,
	bookingRepo *database.BookingRepository,
	partnerRepo *database.PartnerRepository,
	pricing *PricingService,
) *BookingWizardService {
	return &BookingWizardService{
		courseRepo:   courseRepo,
		employeeRepo: employeeRepo,
		bookingRepo:  bookingRepo,
		partnerRepo:  partnerRepo,
		pricing:      pricing,
		sessions:     make(map[uuid.UUID]*WizardSession),
	}
}

// Session returns a snapshot of the partner's current wizard session,
// creating a fresh one at the initial step if none exists.
func (s *BookingWizardService) Session(partnerID uuid.UUID) WizardSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.session(partnerID)
}

// session returns the live session for a partner; callers must hold s.mu
func (s *BookingWizardService) session(partnerID uuid.UUID) *WizardSession {
	session, ok := s.sessions[partnerID]
	if !ok {
		session = &WizardSession{State: StateSelectCourse, UpdatedAt: time.Now()}
		s.sessions[partnerID] = session
	}
	return session
}

// SelectCourse records the chosen course and advances to employee selection
func (s *BookingWizardService) SelectCourse(partnerID uuid.UUID, courseID string) (WizardSession, error) {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return WizardSession{}, fmt.Errorf("course lookup failed: %w", err)
	}
	if !course.Active {
		return WizardSession{}, fmt.Errorf("course %s is not currently offered", course.Code)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.session(partnerID)
	session.CourseID = course.ID
	if wizardOrder[session.State] < wizardOrder[StateSelectEmployees] {
		session.State = StateSelectEmployees
	}
	session.UpdatedAt = time.Now()
	return *session, nil
}

// SelectEmployees records the attendee selection and advances to scheduling.
// The selection is validated against the partner's current roster so stale or
// foreign employee ids never reach a booking.
func (s *BookingWizardService) SelectEmployees(partnerID uuid.UUID, employeeIDs []uuid.UUID) (WizardSession, error) {
	s.mu.Lock()
	state := s.session(partnerID).State
	s.mu.Unlock()

	if wizardOrder[state] < wizardOrder[StateSelectEmployees] {
		return WizardSession{}, ErrWizardStep
	}
	if len(employeeIDs) == 0 {
		return WizardSession{}, ErrNoEmployeesSelected
	}

	roster, err := s.employeeRepo.ListByPartner(partnerID)
	if err != nil {
		return WizardSession{}, fmt.Errorf("failed to load employees: %w", err)
	}
	if len(roster) == 0 {
		return WizardSession{}, ErrEmptyRoster
	}

	onRoster := make(map[uuid.UUID]bool, len(roster))
	for _, employee := range roster {
		onRoster[employee.ID] = true
	}
	for _, id := range employeeIDs {
		if !onRoster[id] {
			return WizardSession{}, fmt.Errorf("employee %s is not on your roster", id)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.session(partnerID)
	if wizardOrder[session.State] < wizardOrder[StateSelectEmployees] {
		return WizardSession{}, ErrWizardStep
	}
	session.EmployeeIDs = employeeIDs
	if wizardOrder[session.State] < wizardOrder[StateSelectSchedule] {
		session.State = StateSelectSchedule
	}
	session.UpdatedAt = time.Now()
	return *session, nil
}

// SetSchedule records the course date and location and advances to review
func (s *BookingWizardService) SetSchedule(partnerID uuid.UUID, courseDate, location string) (WizardSession, error) {
	if courseDate == "" || location == "" {
		return WizardSession{}, ErrMissingSchedule
	}
	if _, err := time.Parse("2006-01-02", courseDate); err != nil {
		return WizardSession{}, fmt.Errorf("course date must be YYYY-MM-DD")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.session(partnerID)
	if wizardOrder[session.State] < wizardOrder[StateSelectSchedule] {
		return WizardSession{}, ErrWizardStep
	}
	session.CourseDate = courseDate
	session.Location = location
	if wizardOrder[session.State] < wizardOrder[StateReview] {
		session.State = StateReview
	}
	session.UpdatedAt = time.Now()
	return *session, nil
}

// Back moves the wizard to an earlier step without discarding selections
func (s *BookingWizardService) Back(partnerID uuid.UUID, target WizardState) (WizardSession, error) {
	targetOrder, ok := wizardOrder[target]
	if !ok {
		return WizardSession{}, fmt.Errorf("unknown wizard step %q", target)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.session(partnerID)
	if targetOrder >= wizardOrder[session.State] {
		return WizardSession{}, ErrWizardStep
	}
	session.State = target
	session.UpdatedAt = time.Now()
	return *session, nil
}

// Review assembles the priced summary shown before submission
func (s *BookingWizardService) Review(partnerID uuid.UUID) (*WizardReview, error) {
	s.mu.Lock()
	session := *s.session(partnerID)
	s.mu.Unlock()

	if session.State != StateReview {
		return nil, ErrWizardStep
	}
	return s.buildReview(partnerID, session)
}

// Submit persists the booking and resets the wizard. The write is a single
// row insert so no partial booking can be left behind; on failure the session
// stays on the review step with its selections intact.
func (s *BookingWizardService) Submit(partnerID uuid.UUID) (*models.Booking, error) {
	s.mu.Lock()
	session := *s.session(partnerID)
	s.mu.Unlock()

	if session.State != StateReview {
		return nil, ErrWizardStep
	}

	review, err := s.buildReview(partnerID, session)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ID:              uuid.New(),
		PartnerID:       partnerID,
		CourseName:      review.Course.Name,
		CourseCode:      review.Course.Code,
		CourseDate:      session.CourseDate,
		Location:        session.Location,
		Employees:       review.Employees,
		PricePerPerson:  review.PricePerPerson,
		TotalPrice:      review.TotalPrice,
		DiscountApplied: review.DiscountPercent,
		Status:          models.BookingStatusPending,
		SyncStatus:      models.SyncStatusPending,
	}

	if err := s.bookingRepo.Create(booking); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.Reset(partnerID)
	return booking, nil
}

// Reset discards the partner's session and returns the wizard to the first step
func (s *BookingWizardService) Reset(partnerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, partnerID)
}

// buildReview resolves live partner, course and roster data for a session
// snapshot and freezes the attendee list and pricing.
func (s *BookingWizardService) buildReview(partnerID uuid.UUID, session WizardSession) (*WizardReview, error) {
	partner, err := s.partnerRepo.GetByID(partnerID)
	if err != nil {
		return nil, fmt.Errorf("partner lookup failed: %w", err)
	}

	course, err := s.courseRepo.GetByID(session.CourseID)
	if err != nil {
		return nil, fmt.Errorf("course lookup failed: %w", err)
	}

	roster, err := s.employeeRepo.ListByPartner(partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}
	byID := make(map[uuid.UUID]models.Employee, len(roster))
	for _, employee := range roster {
		byID[employee.ID] = employee
	}

	attendees := make([]models.BookingEmployee, 0, len(session.EmployeeIDs))
	for _, id := range session.EmployeeIDs {
		employee, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("employee %s is no longer on your roster", id)
		}
		attendees = append(attendees, models.BookingEmployee{
			Name:  employee.Name,
			Email: employee.Email,
		})
	}
	if len(attendees) == 0 {
		return nil, ErrNoEmployeesSelected
	}

	perPerson, discount := s.pricing.Quote(*course, *partner)
	return &WizardReview{
		Session:         session,
		Course:          *course,
		Employees:       attendees,
		PricePerPerson:  perPerson,
		TotalPrice:      perPerson * len(attendees),
		DiscountPercent: discount,
	}, nil
}
