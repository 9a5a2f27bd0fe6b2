package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/coralseatraining/partner-portal-backend/internal/config"
	"github.com/coralseatraining/partner-portal-backend/internal/database"
	"github.com/coralseatraining/partner-portal-backend/internal/middleware"
	"github.com/coralseatraining/partner-portal-backend/internal/models"
	"github.com/coralseatraining/partner-portal-backend/internal/utils"
	"github.com/coralseatraining/partner-portal-backend/pkg/jwt"
)

// AuthHandler handles partner registration, login and session management
type AuthHandler struct {
	partnerRepo *database.PartnerRepository
	sessionRepo *database.SessionRepository
	jwtService  *jwt.Service
	security    *config.SecurityConfig
	logger      *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(
	partnerRepo *database.PartnerRepository,
	sessionRepo *database.SessionRepository,
	jwtService *jwt.Service,
	security *config.SecurityConfig,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		partnerRepo: partnerRepo,
		sessionRepo: sessionRepo,
		jwtService:  jwtService,
		security:    security,
		logger:      logger,
	}
}

// Register creates a new partner account
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := h.partnerRepo.GetByEmail(email); err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "email_taken",
			"message": "An account with this email already exists",
		})
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing accounts"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.security.BcryptCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	partner := &models.Partner{
		BusinessName: req.BusinessName,
		ContactName:  req.ContactName,
		Email:        email,
		Phone:        req.Phone,
		ABN:          req.ABN,
	}

	if err := h.partnerRepo.Create(partner, string(hash)); err != nil {
		h.logger.WithField("error", err.Error()).Error("Partner registration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"partner_id": partner.ID,
		"email":      partner.Email,
	}).Info("Partner registered")

	h.issueTokens(c, partner, http.StatusCreated)
}

// Login authenticates a partner with email and password
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	partnerID, hash, err := h.partnerRepo.GetPasswordHash(email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_credentials",
				"message": "Invalid email or password",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid email or password",
		})
		return
	}

	partner, err := h.partnerRepo.GetByID(partnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	h.issueTokens(c, partner, http.StatusOK)
}

// Refresh exchanges a refresh token for a new token pair
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_token",
			"message": "Invalid or expired refresh token",
		})
		return
	}

	partner, err := h.partnerRepo.GetByID(claims.PartnerID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
		return
	}

	roles := h.effectiveRoles(partner)
	accessToken, err := h.jwtService.GenerateAccessToken(partner.ID, partner.Email, roles)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(partner.ID, partner.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Logout revokes all sessions for the authenticated partner
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	partnerCtx, exists := middleware.GetPartnerContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.sessionRepo.RevokeAll(partnerCtx.PartnerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Sessions lists the partner's login sessions, newest first
// GET /api/v1/auth/sessions
func (h *AuthHandler) Sessions(c *gin.Context) {
	partnerCtx, exists := middleware.GetPartnerContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sessions, err := h.sessionRepo.ListByPartner(partnerCtx.PartnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sessions"})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// issueTokens generates a token pair, records the login session and responds
func (h *AuthHandler) issueTokens(c *gin.Context, partner *models.Partner, status int) {
	roles := h.effectiveRoles(partner)

	accessToken, err := h.jwtService.GenerateAccessToken(partner.ID, partner.Email, roles)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(partner.ID, partner.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	h.recordSession(c, partner.ID)

	c.JSON(status, gin.H{
		"partner":       partner,
		"roles":         roles,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// effectiveRoles combines the partner's stored roles with the configured
// administrator allow-list
func (h *AuthHandler) effectiveRoles(partner *models.Partner) []string {
	roles := make([]string, 0, len(partner.Roles)+1)
	roles = append(roles, partner.Roles...)
	if len(roles) == 0 {
		roles = append(roles, "partner")
	}

	for _, admin := range h.security.AdminEmails {
		if strings.EqualFold(admin, partner.Email) && !containsRole(roles, "admin") {
			roles = append(roles, "admin")
			break
		}
	}
	return roles
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// recordSession stores an audit record for the login; failures are logged
// and never block the login itself
func (h *AuthHandler) recordSession(c *gin.Context, partnerID uuid.UUID) {
	device := utils.ParseUserAgent(c.Request.UserAgent())
	session := &models.PartnerSession{
		ID:         uuid.New(),
		PartnerID:  partnerID,
		IPAddress:  c.ClientIP(),
		UserAgent:  device.Raw,
		DeviceType: device.DeviceType,
		OS:         device.OS,
		Browser:    device.Browser,
	}

	if err := h.sessionRepo.Create(session); err != nil {
		h.logger.WithFields(logrus.Fields{
			"partner_id": partnerID,
			"error":      err.Error(),
		}).Warn("Failed to record login session")
	}
}
