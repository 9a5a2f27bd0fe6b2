package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/coralseatraining/partner-portal-backend/internal/services"
)

// CheckoutHandler handles public course purchase checkout. Purchases are
// independent of partner bookings and require no authentication.
type CheckoutHandler struct {
	checkout *services.CheckoutService
	logger   *logrus.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkout *services.CheckoutService, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		logger:   logger,
	}
}

type createCheckoutRequest struct {
	CourseName    string                      `json:"course_name" binding:"required"`
	UnitPrice     int                         `json:"unit_price" binding:"required"`
	Quantity      int                         `json:"quantity"`
	AddOns        []services.CheckoutLineItem `json:"add_ons"`
	CustomerName  string                      `json:"customer_name" binding:"required"`
	CustomerEmail string                      `json:"customer_email" binding:"required,email"`
	CustomerPhone string                      `json:"customer_phone"`
}

// CreateCheckout creates a hosted checkout session and returns its redirect URL
// POST /api/v1/checkout
func (h *CheckoutHandler) CreateCheckout(c *gin.Context) {
	var req createCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UnitPrice <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unit_price must be positive"})
		return
	}

	session, err := h.checkout.CreateCheckout(&services.CreateCheckoutParams{
		ReferenceID:   uuid.New().String(),
		CourseName:    req.CourseName,
		UnitPrice:     req.UnitPrice,
		Quantity:      req.Quantity,
		AddOns:        req.AddOns,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Checkout creation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusCreated, session)
}
