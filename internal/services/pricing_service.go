package services

import (
	"github.com/coralseatraining/partner-portal-backend/internal/models"
)

// PricingService computes booking prices for a partner. Discounts apply only
// while the partner account is approved; pending or rejected partners always
// pay the full base price regardless of their configured tier.
type PricingService struct{}

// NewPricingService creates a new PricingService
func NewPricingService() *PricingService {
	return &PricingService{}
}

// Quote returns the per-person price and the discount percent actually applied
func (s *PricingService) Quote(course models.Course, partner models.Partner) (perPerson, discountPercent int) {
	if partner.IsApproved() {
		discountPercent = partner.DiscountPercent
	}
	if discountPercent < 0 {
		discountPercent = 0
	}
	if discountPercent > 100 {
		discountPercent = 100
	}
	return roundedDiscountPrice(course.BasePrice, discountPercent), discountPercent
}

// Total returns the frozen total for a party of the given size
func (s *PricingService) Total(course models.Course, partner models.Partner, employeeCount int) int {
	if employeeCount <= 0 {
		return 0
	}
	perPerson, _ := s.Quote(course, partner)
	return perPerson * employeeCount
}

// PriceCourse decorates a catalog entry with the partner's effective pricing
func (s *PricingService) PriceCourse(course models.Course, partner models.Partner) models.PricedCourse {
	perPerson, discount := s.Quote(course, partner)
	return models.PricedCourse{
		Course:          course,
		DiscountPercent: discount,
		PricePerPerson:  perPerson,
	}
}

// PriceCatalog applies partner pricing across a course list
func (s *PricingService) PriceCatalog(courses []models.Course, partner models.Partner) []models.PricedCourse {
	priced := make([]models.PricedCourse, 0, len(courses))
	for _, course := range courses {
		priced = append(priced, s.PriceCourse(course, partner))
	}
	return priced
}

// roundedDiscountPrice applies a percentage discount in integer arithmetic,
// rounding half up. Prices are whole currency units so the rounding direction
// is user-visible and must stay stable.
func roundedDiscountPrice(basePrice, discountPercent int) int {
	return (basePrice*(100-discountPercent) + 50) / 100
}
