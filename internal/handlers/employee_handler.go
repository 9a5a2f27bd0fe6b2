package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/coralseatraining/partner-portal-backend/internal/database"
	"github.com/coralseatraining/partner-portal-backend/internal/middleware"
	"github.com/coralseatraining/partner-portal-backend/internal/models"
	"github.com/coralseatraining/partner-portal-backend/internal/services"
)

// EmployeeHandler handles roster CRUD, certifications and the CSV export
type EmployeeHandler struct {
	employeeRepo *database.EmployeeRepository
	compliance   *services.ComplianceService
	logger       *logrus.Logger
}

// NewEmployeeHandler creates a new EmployeeHandler
func NewEmployeeHandler(
	employeeRepo *database.EmployeeRepository,
	compliance *services.ComplianceService,
	logger *logrus.Logger,
) *EmployeeHandler {
	return &EmployeeHandler{
		employeeRepo: employeeRepo,
		compliance:   compliance,
		logger:       logger,
	}
}

// employeeView is an employee annotated with their derived compliance status
type employeeView struct {
	models.Employee
	ComplianceStatus services.ComplianceStatus `json:"compliance_status"`
}

// ListEmployees returns the partner's roster with derived compliance status.
// An optional q parameter filters by name, email or role.
// GET /api/v1/employees?q=
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
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

	query := strings.ToLower(strings.TrimSpace(c.Query("q")))
	now := time.Now()
	views := make([]employeeView, 0, len(employees))
	for _, employee := range employees {
		if query != "" && !matchesEmployee(employee, query) {
			continue
		}
		views = append(views, employeeView{
			Employee:         employee,
			ComplianceStatus: h.compliance.EmployeeStatus(employee, now),
		})
	}

	c.JSON(http.StatusOK, views)
}

// matchesEmployee reports whether an employee matches a lowercased search term
func matchesEmployee(employee models.Employee, query string) bool {
	return strings.Contains(strings.ToLower(employee.Name), query) ||
		strings.Contains(strings.ToLower(employee.Email), query) ||
		strings.Contains(strings.ToLower(employee.Role), query)
}

// GetEmployee returns one employee from the partner's roster
// GET /api/v1/employees/:id
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	partnerCtx, employeeID, ok := h.rosterScope(c)
	if !ok {
		return
	}

	employee, err := h.employeeRepo.GetByID(partnerCtx.PartnerID, employeeID)
	if err != nil {
		h.respondRepoError(c, err)
		return
	}

	c.JSON(http.StatusOK, employeeView{
		Employee:         *employee,
		ComplianceStatus: h.compliance.EmployeeStatus(*employee, time.Now()),
	})
}

// CreateEmployee adds an employee to the partner's roster
// POST /api/v1/employees
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	partnerCtx, exists := middleware.GetPartnerContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	employee := &models.Employee{
		PartnerID: partnerCtx.PartnerID,
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
	}

	if err := h.employeeRepo.Create(employee); err != nil {
		h.logger.WithField("error", err.Error()).Error("Employee creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create employee"})
		return
	}

	c.JSON(http.StatusCreated, employee)
}

// UpdateEmployee updates an employee's profile fields
// PUT /api/v1/employees/:id
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	partnerCtx, employeeID, ok := h.rosterScope(c)
	if !ok {
		return
	}

	var req models.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.employeeRepo.UpdateDetails(partnerCtx.PartnerID, employeeID, req.Name, req.Email, req.Role)
	if err != nil {
		h.respondRepoError(c, err)
		return
	}

	employee, err := h.employeeRepo.GetByID(partnerCtx.PartnerID, employeeID)
	if err != nil {
		h.respondRepoError(c, err)
		return
	}

	c.JSON(http.StatusOK, employee)
}

// DeleteEmployee removes an employee from the roster. Submitted bookings keep
// their attendee snapshots and are unaffected.
// DELETE /api/v1/employees/:id
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	partnerCtx, employeeID, ok := h.rosterScope(c)
	if !ok {
		return
	}

	if err := h.employeeRepo.Delete(partnerCtx.PartnerID, employeeID); err != nil {
		h.respondRepoError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted"})
}

// AddCertification appends a training record to an employee
// POST /api/v1/employees/:id/certifications
func (h *EmployeeHandler) AddCertification(c *gin.Context) {
	partnerCtx, employeeID, ok := h.rosterScope(c)
	if !ok {
		return
	}

	var req models.AddCertificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	employee, err := h.employeeRepo.GetByID(partnerCtx.PartnerID, employeeID)
	if err != nil {
		h.respondRepoError(c, err)
		return
	}

	certs := append(employee.Certifications, models.Certification{
		CourseName:    req.CourseName,
		DateCompleted: req.DateCompleted,
		ExpiryDate:    req.ExpiryDate,
	})

	if err := h.employeeRepo.ReplaceCertifications(partnerCtx.PartnerID, employeeID, certs); err != nil {
		h.respondRepoError(c, err)
		return
	}

	employee.Certifications = certs
	c.JSON(http.StatusOK, employee)
}

// RemoveCertification removes a training record by its position in the list
// DELETE /api/v1/employees/:id/certifications/:index
func (h *EmployeeHandler) RemoveCertification(c *gin.Context) {
	partnerCtx, employeeID, ok := h.rosterScope(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid certification index"})
		return
	}

	employee, err := h.employeeRepo.GetByID(partnerCtx.PartnerID, employeeID)
	if err != nil {
		h.respondRepoError(c, err)
		return
	}

	if index >= len(employee.Certifications) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Certification not found"})
		return
	}

	certs := append(employee.Certifications[:index], employee.Certifications[index+1:]...)
	if err := h.employeeRepo.ReplaceCertifications(partnerCtx.PartnerID, employeeID, certs); err != nil {
		h.respondRepoError(c, err)
		return
	}

	employee.Certifications = certs
	c.JSON(http.StatusOK, employee)
}

// ExportRoster streams the roster as a CSV file, one row per certification
// GET /api/v1/employees/export
func (h *EmployeeHandler) ExportRoster(c *gin.Context) {
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

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	_ = writer.Write([]string{"Name", "Email", "Role", "Certification", "Date Completed", "Expiry Date", "Status"})

	now := time.Now()
	for _, employee := range employees {
		if len(employee.Certifications) == 0 {
			_ = writer.Write([]string{employee.Name, employee.Email, employee.Role, "", "", "", string(services.StatusNone)})
			continue
		}
		for _, cert := range employee.Certifications {
			status, hasExpiry := h.compliance.Classify(cert, now)
			expiryDate := ""
			if hasExpiry {
				expiryDate = *cert.ExpiryDate
			} else {
				status = services.StatusValid
			}
			_ = writer.Write([]string{
				employee.Name, employee.Email, employee.Role,
				cert.CourseName, cert.DateCompleted, expiryDate, string(status),
			})
		}
	}
	writer.Flush()

	filename := fmt.Sprintf("roster-%s.csv", now.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// rosterScope resolves the partner context and the employee id path param
func (h *EmployeeHandler) rosterScope(c *gin.Context) (middleware.PartnerContext, uuid.UUID, bool) {
	partnerCtx, exists := middleware.GetPartnerContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return middleware.PartnerContext{}, uuid.Nil, false
	}

	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid employee id"})
		return middleware.PartnerContext{}, uuid.Nil, false
	}

	return partnerCtx, employeeID, true
}

// respondRepoError maps repository errors onto HTTP responses
func (h *EmployeeHandler) respondRepoError(c *gin.Context, err error) {
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Employee operation failed"})
}
