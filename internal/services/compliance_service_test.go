package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/coralseatraining/partner-portal-backend/internal/models"
)

func dateString(t time.Time) *string {
	s := t.Format("2006-01-02")
	return &s
}

func certExpiring(name string, expiry time.Time) models.Certification {
	return models.Certification{
		CourseName:    name,
		DateCompleted: "2024-01-15",
		ExpiryDate:    dateString(expiry),
	}
}

func TestClassify_Boundaries(t *testing.T) {
	service := NewComplianceService(30, NoExpiryExclude)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		expiry   time.Time
		expected ComplianceStatus
	}{
		{"expired yesterday", now.AddDate(0, 0, -1), StatusExpired},
		{"expired long ago", now.AddDate(-2, 0, 0), StatusExpired},
		{"expiring at window edge", now.Add(30 * 24 * time.Hour), StatusExpiring},
		{"expiring in ten days", now.AddDate(0, 0, 10), StatusExpiring},
		{"valid just past window", now.Add(31 * 24 * time.Hour), StatusValid},
		{"valid next year", now.AddDate(1, 0, 0), StatusValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, hasExpiry := service.Classify(certExpiring("CPR", tt.expiry), now)
			assert.True(t, hasExpiry)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestClassify_NoExpiryDateIsSignaled(t *testing.T) {
	service := NewComplianceService(30, NoExpiryExclude)
	now := time.Now()

	cert := models.Certification{CourseName: "CPR", DateCompleted: "2024-01-15"}
	_, hasExpiry := service.Classify(cert, now)
	assert.False(t, hasExpiry)

	empty := ""
	cert.ExpiryDate = &empty
	_, hasExpiry = service.Classify(cert, now)
	assert.False(t, hasExpiry)
}

func TestEmployeeStatus_WorstCertificationWins(t *testing.T) {
	service := NewComplianceService(30, NoExpiryExclude)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	expired := certExpiring("CPR", now.AddDate(0, 0, -5))
	expiring := certExpiring("First Aid", now.AddDate(0, 0, 10))
	valid := certExpiring("Advanced", now.AddDate(1, 0, 0))

	assert.Equal(t, StatusExpired, service.EmployeeStatus(models.Employee{
		Certifications: models.CertificationList{valid, expiring, expired},
	}, now))

	assert.Equal(t, StatusExpiring, service.EmployeeStatus(models.Employee{
		Certifications: models.CertificationList{valid, expiring},
	}, now))

	assert.Equal(t, StatusValid, service.EmployeeStatus(models.Employee{
		Certifications: models.CertificationList{valid},
	}, now))

	assert.Equal(t, StatusNone, service.EmployeeStatus(models.Employee{}, now))
}

func TestSummarize_EmptyRosterIsFullyCompliant(t *testing.T) {
	service := NewComplianceService(30, NoExpiryExclude)

	summary := service.Summarize(nil, time.Now())
	assert.Equal(t, 100, summary.CompliancePercent)
	assert.Equal(t, 0, summary.TotalEmployees)
}

func TestSummarize_RosterWithoutCertificationsScoresZero(t *testing.T) {
	service := NewComplianceService(30, NoExpiryExclude)

	roster := []models.Employee{{Name: "A"}, {Name: "B"}}
	summary := service.Summarize(roster, time.Now())
	assert.Equal(t, 0, summary.CompliancePercent)
	assert.Equal(t, 2, summary.TotalEmployees)
	assert.Equal(t, 0, summary.TotalCertifications)
}

func TestSummarize_NoExpiryPolicies(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	roster := []models.Employee{
		{
			Name: "A",
			Certifications: models.CertificationList{
				certExpiring("CPR", now.AddDate(1, 0, 0)),
				{CourseName: "Induction", DateCompleted: "2024-01-15"},
			},
		},
		{
			Name: "B",
			Certifications: models.CertificationList{
				certExpiring("First Aid", now.AddDate(0, 0, -1)),
			},
		},
	}

	// One valid, one expired, one never-expiring.
	excluded := NewComplianceService(30, NoExpiryExclude).Summarize(roster, now)
	assert.Equal(t, 50, excluded.CompliancePercent)
	assert.Equal(t, 1, excluded.NoExpiryCount)
	assert.Equal(t, 3, excluded.TotalCertifications)

	counted := NewComplianceService(30, NoExpiryCount).Summarize(roster, now)
	assert.Equal(t, 67, counted.CompliancePercent)
}

func TestSummarize_AllNeverExpiring(t *testing.T) {
	now := time.Now()
	roster := []models.Employee{
		{
			Name: "A",
			Certifications: models.CertificationList{
				{CourseName: "Induction", DateCompleted: "2024-01-15"},
			},
		},
	}

	for _, policy := range []string{NoExpiryExclude, NoExpiryCount} {
		summary := NewComplianceService(30, policy).Summarize(roster, now)
		assert.Equal(t, 100, summary.CompliancePercent, "policy %s", policy)
	}
}

func TestSummarize_EndToEndScenario(t *testing.T) {
	service := NewComplianceService(30, NoExpiryExclude)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	roster := []models.Employee{
		{
			Name: "Employee A",
			Certifications: models.CertificationList{
				certExpiring("CPR", now.AddDate(0, 0, 10)),
			},
		},
		{Name: "Employee B"},
	}

	summary := service.Summarize(roster, now)
	assert.Equal(t, 2, summary.TotalEmployees)
	assert.Equal(t, 1, summary.ExpiringCount)
	assert.Equal(t, 0, summary.ExpiredCount)
	assert.Equal(t, 100, summary.CompliancePercent)
}

func TestAlerts_OrderingAndCap(t *testing.T) {
	service := NewComplianceService(30, NoExpiryExclude)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	roster := []models.Employee{
		{
			Name: "A",
			Certifications: models.CertificationList{
				certExpiring("Soon", now.AddDate(0, 0, 20)),
				certExpiring("Sooner", now.AddDate(0, 0, 5)),
				certExpiring("Valid", now.AddDate(1, 0, 0)),
				{CourseName: "Never", DateCompleted: "2024-01-15"},
			},
		},
		{
			Name: "B",
			Certifications: models.CertificationList{
				certExpiring("Gone", now.AddDate(0, 0, -3)),
			},
		},
	}

	alerts := service.Alerts(roster, now)
	assert.Len(t, alerts, 3)
	assert.Equal(t, StatusExpired, alerts[0].Status)
	assert.Equal(t, "Gone", alerts[0].CourseName)
	assert.Equal(t, "Sooner", alerts[1].CourseName)
	assert.Equal(t, "Soon", alerts[2].CourseName)

	// Cap at the display limit
	big := models.Employee{Name: "C"}
	for i := 0; i < 20; i++ {
		big.Certifications = append(big.Certifications, certExpiring("Cert", now.AddDate(0, 0, i+1)))
	}
	alerts = service.Alerts([]models.Employee{big}, now)
	assert.Len(t, alerts, maxComplianceAlerts)
}
