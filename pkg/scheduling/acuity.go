package scheduling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the Acuity Scheduling REST API using HTTP Basic auth.
type Client struct {
	baseURL string
	userID  string
	apiKey  string
	client  *http.Client
}

// Config holds configuration for the Acuity Scheduling client
type Config struct {
	BaseURL string
	UserID  string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a new Acuity Scheduling client
func NewClient(config Config) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		userID:  config.UserID,
		apiKey:  config.APIKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// APIError is returned when Acuity responds with a non-2xx status.
// Message carries only the vendor's "error" field, never the raw body,
// so credentials or internal details in upstream responses are not leaked.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("scheduling API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("scheduling API returned status %d: %s", e.StatusCode, e.Message)
}

// Appointment represents an appointment record as returned by Acuity
type Appointment struct {
	ID                int64  `json:"id"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Datetime          string `json:"datetime"`
	Date              string `json:"date"`
	Time              string `json:"time"`
	EndTime           string `json:"endTime"`
	Duration          string `json:"duration"`
	Type              string `json:"type"`
	AppointmentTypeID int64  `json:"appointmentTypeID"`
	CalendarID        int64  `json:"calendarID"`
	Calendar          string `json:"calendar"`
	Price             string `json:"price"`
	Canceled          bool   `json:"canceled"`
}

// AppointmentType represents a bookable class type as returned by Acuity
type AppointmentType struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
	Price    string `json:"price"`
	Category string `json:"category"`
	Active   bool   `json:"active"`
	Private  bool   `json:"private"`
}

// AvailabilityDate represents a date with open slots
type AvailabilityDate struct {
	Date string `json:"date"`
}

// AvailabilityTime represents a bookable time slot
type AvailabilityTime struct {
	Time           string `json:"time"`
	SlotsAvailable int    `json:"slotsAvailable"`
}

// CreateAppointmentRequest is the payload for booking a single attendee
type CreateAppointmentRequest struct {
	AppointmentTypeID int64  `json:"appointmentTypeID"`
	Datetime          string `json:"datetime"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	Phone             string `json:"phone,omitempty"`
}

// GetAppointmentTypes fetches all appointment types from the vendor
func (c *Client) GetAppointmentTypes(ctx context.Context) ([]AppointmentType, error) {
	var types []AppointmentType
	if err := c.do(ctx, http.MethodGet, "/appointment-types", nil, nil, &types); err != nil {
		return nil, err
	}
	return types, nil
}

// GetAvailabilityDates fetches dates with availability for a type and month (YYYY-MM)
func (c *Client) GetAvailabilityDates(ctx context.Context, appointmentTypeID int64, month string) ([]AvailabilityDate, error) {
	params := url.Values{}
	params.Set("appointmentTypeID", fmt.Sprintf("%d", appointmentTypeID))
	params.Set("month", month)

	var dates []AvailabilityDate
	if err := c.do(ctx, http.MethodGet, "/availability/dates", params, nil, &dates); err != nil {
		return nil, err
	}
	return dates, nil
}

// GetAvailabilityTimes fetches open time slots for a type and date (YYYY-MM-DD)
func (c *Client) GetAvailabilityTimes(ctx context.Context, appointmentTypeID int64, date string) ([]AvailabilityTime, error) {
	params := url.Values{}
	params.Set("appointmentTypeID", fmt.Sprintf("%d", appointmentTypeID))
	params.Set("date", date)

	var times []AvailabilityTime
	if err := c.do(ctx, http.MethodGet, "/availability/times", params, nil, &times); err != nil {
		return nil, err
	}
	return times, nil
}

// GetAppointment fetches a single appointment by its vendor ID
func (c *Client) GetAppointment(ctx context.Context, appointmentID int64) (*Appointment, error) {
	var appt Appointment
	path := fmt.Sprintf("/appointments/%d", appointmentID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

// FindAppointments searches appointments matching the given attendee email
func (c *Client) FindAppointments(ctx context.Context, email string, maxResults int) ([]Appointment, error) {
	params := url.Values{}
	params.Set("email", email)
	if maxResults > 0 {
		params.Set("max", fmt.Sprintf("%d", maxResults))
	}

	var appts []Appointment
	if err := c.do(ctx, http.MethodGet, "/appointments", params, nil, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

// CreateAppointment books a single appointment for one attendee
func (c *Client) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (*Appointment, error) {
	var appt Appointment
	if err := c.do(ctx, http.MethodPost, "/appointments", nil, req, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

// Proxy performs an arbitrary request against a whitelisted vendor path and
// returns the raw JSON response. Used by the admin scheduling passthrough.
func (c *Client) Proxy(ctx context.Context, method, path string, params url.Values, body interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, method, path, params, body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// do executes a request against the vendor API and decodes the response into out
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.userID, c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("scheduling API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &errBody) == nil {
			if errBody.Message != "" {
				apiErr.Message = errBody.Message
			} else {
				apiErr.Message = errBody.Error
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
