package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coralseatraining/partner-portal-backend/internal/database"
	"github.com/coralseatraining/partner-portal-backend/pkg/scheduling"
)

// SchedulingHandler proxies a whitelisted slice of the scheduling vendor API
// for the admin panel. Vendor error text is logged but never returned.
type SchedulingHandler struct {
	client          *scheduling.Client
	appointmentRepo *database.AppointmentRepository
	logger          *logrus.Logger
}

// NewSchedulingHandler creates a new SchedulingHandler
func NewSchedulingHandler(
	client *scheduling.Client,
	appointmentRepo *database.AppointmentRepository,
	logger *logrus.Logger,
) *SchedulingHandler {
	return &SchedulingHandler{
		client:          client,
		appointmentRepo: appointmentRepo,
		logger:          logger,
	}
}

// GetAppointmentTypes lists the vendor's bookable class types
// GET /api/v1/admin/scheduling/appointment-types
func (h *SchedulingHandler) GetAppointmentTypes(c *gin.Context) {
	types, err := h.client.GetAppointmentTypes(c.Request.Context())
	if err != nil {
		h.respondVendorError(c, err)
		return
	}

	c.JSON(http.StatusOK, types)
}

// GetAvailabilityDates lists dates with open slots for a type and month
// GET /api/v1/admin/scheduling/availability/dates?appointmentTypeID=&month=
func (h *SchedulingHandler) GetAvailabilityDates(c *gin.Context) {
	typeID, ok := h.appointmentTypeID(c)
	if !ok {
		return
	}

	month := c.Query("month")
	if month == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month is required (YYYY-MM)"})
		return
	}

	dates, err := h.client.GetAvailabilityDates(c.Request.Context(), typeID, month)
	if err != nil {
		h.respondVendorError(c, err)
		return
	}

	c.JSON(http.StatusOK, dates)
}

// GetAvailabilityTimes lists open time slots for a type and date
// GET /api/v1/admin/scheduling/availability/times?appointmentTypeID=&date=
func (h *SchedulingHandler) GetAvailabilityTimes(c *gin.Context) {
	typeID, ok := h.appointmentTypeID(c)
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required (YYYY-MM-DD)"})
		return
	}

	times, err := h.client.GetAvailabilityTimes(c.Request.Context(), typeID, date)
	if err != nil {
		h.respondVendorError(c, err)
		return
	}

	c.JSON(http.StatusOK, times)
}

// FindAppointments searches vendor appointments by attendee email
// GET /api/v1/admin/scheduling/appointments?email=&max=
func (h *SchedulingHandler) FindAppointments(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	maxResults := 0
	if maxParam := c.Query("max"); maxParam != "" {
		parsed, err := strconv.Atoi(maxParam)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max must be between 1 and 100"})
			return
		}
		maxResults = parsed
	}

	appointments, err := h.client.FindAppointments(c.Request.Context(), email, maxResults)
	if err != nil {
		h.respondVendorError(c, err)
		return
	}

	c.JSON(http.StatusOK, appointments)
}

// GetAppointment fetches one vendor appointment by id
// GET /api/v1/admin/scheduling/appointments/:id
func (h *SchedulingHandler) GetAppointment(c *gin.Context) {
	appointmentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || appointmentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment id"})
		return
	}

	appointment, err := h.client.GetAppointment(c.Request.Context(), appointmentID)
	if err != nil {
		h.respondVendorError(c, err)
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// ListMirroredAppointments returns locally mirrored webhook appointments
// GET /api/v1/admin/scheduling/mirror?limit=
func (h *SchedulingHandler) ListMirroredAppointments(c *gin.Context) {
	limit := 50
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 1 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = parsed
	}

	appointments, err := h.appointmentRepo.List(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list appointments"})
		return
	}

	c.JSON(http.StatusOK, appointments)
}

// proxyRoutes whitelists the vendor surface reachable through the generic
// admin passthrough. A {id} segment matches any numeric path segment.
var proxyRoutes = map[string][]string{
	http.MethodGet: {
		"/clients",
		"/calendars",
		"/appointment-types",
		"/appointments",
		"/appointments/{id}",
		"/availability/dates",
		"/availability/times",
	},
	http.MethodPost: {
		"/appointments",
	},
	http.MethodPut: {
		"/appointments/{id}/cancel",
		"/appointments/{id}/reschedule",
	},
}

// Proxy forwards a whitelisted request to the vendor and returns the raw
// JSON response. Anything off the whitelist is rejected before it leaves.
// ANY /api/v1/admin/scheduling/proxy/*path
func (h *SchedulingHandler) Proxy(c *gin.Context) {
	path := c.Param("path")
	if !proxyPathAllowed(c.Request.Method, path) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	var body interface{}
	if c.Request.Method == http.MethodPost || c.Request.Method == http.MethodPut {
		raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
			return
		}
		if len(raw) > 0 {
			if !json.Valid(raw) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be JSON"})
				return
			}
			body = json.RawMessage(raw)
		}
	}

	result, err := h.client.Proxy(c.Request.Context(), c.Request.Method, path, c.Request.URL.Query(), body)
	if err != nil {
		h.respondVendorError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", result)
}

// proxyPathAllowed matches a request against the passthrough whitelist
func proxyPathAllowed(method, path string) bool {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for _, pattern := range proxyRoutes[method] {
		patternSegments := strings.Split(strings.Trim(pattern, "/"), "/")
		if len(segments) != len(patternSegments) {
			continue
		}
		matched := true
		for i, ps := range patternSegments {
			if ps == "{id}" {
				if !isNumeric(segments[i]) {
					matched = false
					break
				}
				continue
			}
			if ps != segments[i] {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// appointmentTypeID parses the required appointmentTypeID query parameter
func (h *SchedulingHandler) appointmentTypeID(c *gin.Context) (int64, bool) {
	typeID, err := strconv.ParseInt(c.Query("appointmentTypeID"), 10, 64)
	if err != nil || typeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "appointmentTypeID is required"})
		return 0, false
	}
	return typeID, true
}

// respondVendorError logs the vendor failure and returns a sanitized body.
// Upstream error text stays in the logs.
func (h *SchedulingHandler) respondVendorError(c *gin.Context, err error) {
	var apiErr *scheduling.APIError
	if errors.As(err, &apiErr) {
		h.logger.WithFields(logrus.Fields{
			"status_code": apiErr.StatusCode,
			"message":     apiErr.Message,
			"path":        c.Request.URL.Path,
		}).Warn("Scheduling vendor error")

		if apiErr.StatusCode == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Scheduling service error"})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"error": err.Error(),
		"path":  c.Request.URL.Path,
	}).Error("Scheduling request failed")
	c.JSON(http.StatusBadGateway, gin.H{"error": "Scheduling service unavailable"})
}
