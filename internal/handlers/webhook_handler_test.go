package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coralseatraining/partner-portal-backend/internal/database"
	"github.com/coralseatraining/partner-portal-backend/internal/services"
	"github.com/coralseatraining/partner-portal-backend/pkg/scheduling"
)

const testWebhookSecret = "whsec-test"

func setupWebhookTest(t *testing.T, vendor http.Handler) (*gin.Engine, sqlmock.Sqlmock, func()) {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	postgresDB := &database.PostgresDB{DB: sqlxDB}

	vendorServer := httptest.NewServer(vendor)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client := scheduling.NewClient(scheduling.Config{
		BaseURL: vendorServer.URL,
		UserID:  "acct",
		APIKey:  "key",
	})
	sync := services.NewSyncService(
		client,
		database.NewBookingRepository(postgresDB),
		database.NewAppointmentRepository(postgresDB),
		logger,
	)

	handler := NewWebhookHandler(sync, testWebhookSecret, logger)
	router := gin.New()
	router.POST("/api/v1/webhooks/scheduling", handler.HandleSchedulingWebhook)

	cleanup := func() {
		vendorServer.Close()
		db.Close()
	}
	return router, mock, cleanup
}

func postWebhook(router *gin.Engine, secret, form string) *httptest.ResponseRecorder {
	url := "/api/v1/webhooks/scheduling"
	if secret != "" {
		url += "?secret=" + secret
	}
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhook_RejectsBadSecret(t *testing.T) {
	router, _, cleanup := setupWebhookTest(t, http.NotFoundHandler())
	defer cleanup()

	w := postWebhook(router, "wrong", "action=appointment.scheduled&id=42")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postWebhook(router, "", "action=appointment.scheduled&id=42")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhook_RejectsUnrecognizedAction(t *testing.T) {
	router, _, cleanup := setupWebhookTest(t, http.NotFoundHandler())
	defer cleanup()

	w := postWebhook(router, testWebhookSecret, "action=appointment.exploded&id=42")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unrecognized")
}

func TestWebhook_RejectsInvalidAppointmentID(t *testing.T) {
	router, _, cleanup := setupWebhookTest(t, http.NotFoundHandler())
	defer cleanup()

	w := postWebhook(router, testWebhookSecret, "action=appointment.canceled&id=not-a-number")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postWebhook(router, testWebhookSecret, "action=appointment.canceled&id=0")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_AcceptedEventReturnsOKOnProcessingFailure(t *testing.T) {
	// Vendor lookup fails, but the event was well formed so we still ack it
	vendor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal"}`))
	})
	router, _, cleanup := setupWebhookTest(t, vendor)
	defer cleanup()

	w := postWebhook(router, testWebhookSecret, "action=appointment.canceled&id=42")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "received")
}

func TestWebhook_ProcessesRecognizedEvent(t *testing.T) {
	vendor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/appointments/42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":42,"firstName":"Kai","lastName":"Nguyen","email":"kai@reefdive.example","datetime":"2026-04-10T09:00:00+1000","duration":"60","type":"CPR (HLTAID009)","canceled":true}`))
	})
	router, mock, cleanup := setupWebhookTest(t, vendor)
	defer cleanup()

	mock.ExpectExec("INSERT INTO scheduling_appointments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM bookings").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := postWebhook(router, testWebhookSecret, "action=appointment.canceled&id=42")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
