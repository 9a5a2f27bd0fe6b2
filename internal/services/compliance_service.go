package services

import (
	"math"
	"sort"
	"time"

	"github.com/coralseatraining/partner-portal-backend/internal/models"
)

// ComplianceStatus is the derived certification status
type ComplianceStatus string

const (
	StatusValid    ComplianceStatus = "valid"
	StatusExpiring ComplianceStatus = "expiring"
	StatusExpired  ComplianceStatus = "expired"
	StatusNone     ComplianceStatus = "none"
)

// NoExpiryPolicy controls how certifications without an expiry date
// are folded into the aggregate compliance percentage.
const (
	// NoExpiryExclude leaves never-expiring certifications out of both the
	// numerator and the denominator.
	NoExpiryExclude = "exclude"
	// NoExpiryCount treats never-expiring certifications as always valid.
	NoExpiryCount = "count"
)

// maxComplianceAlerts caps the dashboard alert list
const maxComplianceAlerts = 8

// ComplianceSummary aggregates certification status across a roster
type ComplianceSummary struct {
	TotalEmployees      int `json:"total_employees"`
	TotalCertifications int `json:"total_certifications"`
	ValidCount          int `json:"valid_count"`
	ExpiringCount       int `json:"expiring_count"`
	ExpiredCount        int `json:"expired_count"`
	NoExpiryCount       int `json:"no_expiry_count"`
	CompliancePercent   int `json:"compliance_percent"`
}

// ComplianceAlert is one expiring or expired certification surfaced on the dashboard
type ComplianceAlert struct {
	EmployeeID    string           `json:"employee_id"`
	EmployeeName  string           `json:"employee_name"`
	CourseName    string           `json:"course_name"`
	ExpiryDate    string           `json:"expiry_date"`
	Status        ComplianceStatus `json:"status"`
	DaysRemaining int              `json:"days_remaining"`
}

// ComplianceService classifies certification expiry for partner rosters.
// All methods are pure functions of their inputs; nothing here is persisted.
type ComplianceService struct {
	window         time.Duration
	noExpiryPolicy string
}

// NewComplianceService creates a new ComplianceService
func NewComplianceService(windowDays int, noExpiryPolicy string) *ComplianceService {
	if windowDays <= 0 {
		windowDays = 30
	}
	if noExpiryPolicy != NoExpiryCount {
		noExpiryPolicy = NoExpiryExclude
	}
	return &ComplianceService{
		window:         time.Duration(windowDays) * 24 * time.Hour,
		noExpiryPolicy: noExpiryPolicy,
	}
}

// Classify returns the status of a single certification at the given instant.
// The second return value is false when the certification has no expiry date;
// the status is meaningless in that case and callers decide how to treat it.
func (s *ComplianceService) Classify(cert models.Certification, now time.Time) (ComplianceStatus, bool) {
	expiry, ok := cert.Expiry()
	if !ok {
		return StatusNone, false
	}

	switch {
	case expiry.Before(now):
		return StatusExpired, true
	case !expiry.After(now.Add(s.window)):
		return StatusExpiring, true
	default:
		return StatusValid, true
	}
}

// EmployeeStatus returns the worst certification status for one employee.
// Severity ordering is expired > expiring > valid; an employee with no
// certifications at all has status none.
func (s *ComplianceService) EmployeeStatus(employee models.Employee, now time.Time) ComplianceStatus {
	if len(employee.Certifications) == 0 {
		return StatusNone
	}

	worst := StatusValid
	for _, cert := range employee.Certifications {
		status, hasExpiry := s.Classify(cert, now)
		if !hasExpiry {
			continue
		}
		switch status {
		case StatusExpired:
			return StatusExpired
		case StatusExpiring:
			worst = StatusExpiring
		}
	}
	return worst
}

// Summarize computes aggregate compliance across a roster. An empty roster is
// 100% compliant; a non-empty roster where no employee holds a certification
// is 0%.
func (s *ComplianceService) Summarize(roster []models.Employee, now time.Time) ComplianceSummary {
	summary := ComplianceSummary{TotalEmployees: len(roster)}

	for _, employee := range roster {
		for _, cert := range employee.Certifications {
			summary.TotalCertifications++
			status, hasExpiry := s.Classify(cert, now)
			if !hasExpiry {
				summary.NoExpiryCount++
				continue
			}
			switch status {
			case StatusValid:
				summary.ValidCount++
			case StatusExpiring:
				summary.ExpiringCount++
			case StatusExpired:
				summary.ExpiredCount++
			}
		}
	}

	summary.CompliancePercent = s.compliancePercent(summary)
	return summary
}

// compliancePercent applies the configured no-expiry policy to the counts
func (s *ComplianceService) compliancePercent(summary ComplianceSummary) int {
	if summary.TotalEmployees == 0 {
		return 100
	}
	if summary.TotalCertifications == 0 {
		return 0
	}

	numerator := summary.ValidCount + summary.ExpiringCount
	denominator := summary.ValidCount + summary.ExpiringCount + summary.ExpiredCount
	if s.noExpiryPolicy == NoExpiryCount {
		numerator += summary.NoExpiryCount
		denominator += summary.NoExpiryCount
	}

	if denominator == 0 {
		// Every certification on the roster is never-expiring; nothing
		// can be out of date.
		return 100
	}

	return int(math.Round(float64(numerator) / float64(denominator) * 100))
}

// Alerts returns expiring and expired certifications across the roster,
// expired entries first, then by soonest expiry, capped for display.
func (s *ComplianceService) Alerts(roster []models.Employee, now time.Time) []ComplianceAlert {
	alerts := make([]ComplianceAlert, 0)

	for _, employee := range roster {
		for _, cert := range employee.Certifications {
			status, hasExpiry := s.Classify(cert, now)
			if !hasExpiry || status == StatusValid {
				continue
			}

			expiry, _ := cert.Expiry()
			days := int(math.Ceil(expiry.Sub(now).Hours() / 24))
			alerts = append(alerts, ComplianceAlert{
				EmployeeID:    employee.ID.String(),
				EmployeeName:  employee.Name,
				CourseName:    cert.CourseName,
				ExpiryDate:    *cert.ExpiryDate,
				Status:        status,
				DaysRemaining: days,
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Status != alerts[j].Status {
			return alerts[i].Status == StatusExpired
		}
		return alerts[i].DaysRemaining < alerts[j].DaysRemaining
	})

	if len(alerts) > maxComplianceAlerts {
		alerts = alerts[:maxComplianceAlerts]
	}
	return alerts
}
