package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/coralseatraining/partner-portal-backend/internal/database"
	"github.com/coralseatraining/partner-portal-backend/internal/middleware"
	"github.com/coralseatraining/partner-portal-backend/internal/models"
)

// PartnerHandler handles partner profile and admin partner management
type PartnerHandler struct {
	partnerRepo *database.PartnerRepository
	logger      *logrus.Logger
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(partnerRepo *database.PartnerRepository, logger *logrus.Logger) *PartnerHandler {
	return &PartnerHandler{
		partnerRepo: partnerRepo,
		logger:      logger,
	}
}

// GetProfile returns the authenticated partner's profile
// GET /api/v1/partner/profile
func (h *PartnerHandler) GetProfile(c *gin.Context) {
	partnerCtx, exists := middleware.GetPartnerContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	partner, err := h.partnerRepo.GetByID(partnerCtx.PartnerID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Partner not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, partner)
}

// UpdateProfile updates the partner-editable profile fields
// PUT /api/v1/partner/profile
func (h *PartnerHandler) UpdateProfile(c *gin.Context) {
	partnerCtx, exists := middleware.GetPartnerContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.partnerRepo.UpdateProfile(partnerCtx.PartnerID, req.BusinessName, req.ContactName, req.Phone, req.ABN)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Partner not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	partner, err := h.partnerRepo.GetByID(partnerCtx.PartnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, partner)
}

// ListPartners returns all partner accounts for review
// GET /api/v1/admin/partners
func (h *PartnerHandler) ListPartners(c *gin.Context) {
	partners, err := h.partnerRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list partners"})
		return
	}

	c.JSON(http.StatusOK, partners)
}

// AdminUpdatePartner adjusts a partner's tier, discount percent or status.
// Discount changes only affect future bookings; submitted bookings keep
// their frozen prices.
// PUT /api/v1/admin/partners/:id
func (h *PartnerHandler) AdminUpdatePartner(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid partner id"})
		return
	}

	var req models.AdminUpdatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.partnerRepo.UpdateDiscount(partnerID, req.DiscountTier, req.DiscountPercent, req.Status)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Partner not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update partner"})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"partner_id": partnerID,
		"admin":      partnerEmail(c),
	}).Info("Partner account updated")

	partner, err := h.partnerRepo.GetByID(partnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch partner"})
		return
	}

	c.JSON(http.StatusOK, partner)
}

// partnerEmail returns the acting partner's email for audit logging
func partnerEmail(c *gin.Context) string {
	if partnerCtx, exists := middleware.GetPartnerContext(c); exists {
		return partnerCtx.Email
	}
	return ""
}
