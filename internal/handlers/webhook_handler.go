package handlers

import (
	"crypto/subtle"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coralseatraining/partner-portal-backend/internal/services"
)

// WebhookHandler receives scheduling vendor webhooks and relays them onto
// booking records
type WebhookHandler struct {
	sync   *services.SyncService
	secret string
	logger *logrus.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(sync *services.SyncService, secret string, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		sync:   sync,
		secret: secret,
		logger: logger,
	}
}

type webhookPayload struct {
	Action string `json:"action" form:"action"`
	ID     string `json:"id" form:"id"`
}

// HandleSchedulingWebhook processes an {action, id} event from the vendor.
// Malformed requests get a 4xx; once the event is accepted, processing
// failures are swallowed and 200 is returned so the vendor does not retry.
// POST /api/v1/webhooks/scheduling?secret=
func (h *WebhookHandler) HandleSchedulingWebhook(c *gin.Context) {
	secret := c.Query("secret")
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.secret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook secret"})
		return
	}

	var payload webhookPayload
	if err := c.ShouldBind(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed webhook payload"})
		return
	}

	if _, recognized := services.WebhookStatus(payload.Action); !recognized {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unrecognized webhook action"})
		return
	}

	appointmentID, err := strconv.ParseInt(payload.ID, 10, 64)
	if err != nil || appointmentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment id"})
		return
	}

	if err := h.sync.ProcessWebhook(c.Request.Context(), payload.Action, appointmentID); err != nil {
		h.logger.WithFields(logrus.Fields{
			"action":         payload.Action,
			"appointment_id": appointmentID,
			"error":          err.Error(),
		}).Error("Webhook processing failed")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
