package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coralseatraining/partner-portal-backend/internal/models"
)

func TestQuote_ApprovedPartnerGetsDiscount(t *testing.T) {
	pricing := NewPricingService()
	course := models.Course{ID: "childcare", BasePrice: 140}
	partner := models.Partner{Status: models.PartnerStatusApproved, DiscountPercent: 10}

	perPerson, discount := pricing.Quote(course, partner)
	assert.Equal(t, 126, perPerson)
	assert.Equal(t, 10, discount)
}

func TestQuote_UnapprovedPartnerPaysFullPrice(t *testing.T) {
	pricing := NewPricingService()
	course := models.Course{ID: "firstaid", BasePrice: 120}

	for _, status := range []models.PartnerStatus{models.PartnerStatusPending, models.PartnerStatusRejected} {
		partner := models.Partner{Status: status, DiscountPercent: 25}
		perPerson, discount := pricing.Quote(course, partner)
		assert.Equal(t, 120, perPerson, "status %s", status)
		assert.Equal(t, 0, discount, "status %s", status)
	}
}

func TestQuote_RoundsHalfUp(t *testing.T) {
	pricing := NewPricingService()
	partner := models.Partner{Status: models.PartnerStatusApproved, DiscountPercent: 15}

	// 15% off 63 = 53.55 -> 54; 15% off 61 = 51.85 -> 52; 15% off 62 = 52.7 -> 53
	tests := []struct {
		basePrice int
		expected  int
	}{
		{63, 54},
		{61, 52},
		{62, 53},
		{100, 85},
	}
	for _, tt := range tests {
		perPerson, _ := pricing.Quote(models.Course{BasePrice: tt.basePrice}, partner)
		assert.Equal(t, tt.expected, perPerson, "base price %d", tt.basePrice)
	}

	// Exact half rounds up: 10% off 105 = 94.5 -> 95
	partner.DiscountPercent = 10
	perPerson, _ := pricing.Quote(models.Course{BasePrice: 105}, partner)
	assert.Equal(t, 95, perPerson)
}

func TestQuote_ClampsDiscountPercent(t *testing.T) {
	pricing := NewPricingService()
	course := models.Course{BasePrice: 100}

	perPerson, discount := pricing.Quote(course, models.Partner{
		Status: models.PartnerStatusApproved, DiscountPercent: 150,
	})
	assert.Equal(t, 0, perPerson)
	assert.Equal(t, 100, discount)

	perPerson, discount = pricing.Quote(course, models.Partner{
		Status: models.PartnerStatusApproved, DiscountPercent: -5,
	})
	assert.Equal(t, 100, perPerson)
	assert.Equal(t, 0, discount)
}

func TestTotal(t *testing.T) {
	pricing := NewPricingService()
	course := models.Course{BasePrice: 140}
	partner := models.Partner{Status: models.PartnerStatusApproved, DiscountPercent: 10}

	assert.Equal(t, 378, pricing.Total(course, partner, 3))
	assert.Equal(t, 0, pricing.Total(course, partner, 0))
	assert.Equal(t, 0, pricing.Total(course, partner, -2))
}

func TestPriceCatalog(t *testing.T) {
	pricing := NewPricingService()
	partner := models.Partner{Status: models.PartnerStatusApproved, DiscountPercent: 10}
	courses := []models.Course{
		{ID: "cpr", BasePrice: 60},
		{ID: "childcare", BasePrice: 140},
	}

	priced := pricing.PriceCatalog(courses, partner)
	assert.Len(t, priced, 2)
	assert.Equal(t, 54, priced[0].PricePerPerson)
	assert.Equal(t, 126, priced[1].PricePerPerson)
	assert.Equal(t, 10, priced[0].DiscountPercent)
}
