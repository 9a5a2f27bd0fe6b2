package scheduling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(Config{
		BaseURL: server.URL,
		UserID:  "acct-123",
		APIKey:  "key-456",
	})
	return client, server
}

func TestClient_SendsBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := client.GetAppointmentTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acct-123", gotUser)
	assert.Equal(t, "key-456", gotPass)
}

func TestClient_GetAppointmentTypes(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/appointment-types", r.URL.Path)
		w.Write([]byte(`[{"id":101,"name":"CPR (HLTAID009)","duration":60,"active":true}]`))
	}))
	defer server.Close()

	types, err := client.GetAppointmentTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, int64(101), types[0].ID)
	assert.True(t, types[0].Active)
}

func TestClient_GetAvailabilityTimes_PassesParams(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/availability/times", r.URL.Path)
		assert.Equal(t, "101", r.URL.Query().Get("appointmentTypeID"))
		assert.Equal(t, "2026-04-10", r.URL.Query().Get("date"))
		w.Write([]byte(`[{"time":"2026-04-10T09:00:00+1000","slotsAvailable":4}]`))
	}))
	defer server.Close()

	times, err := client.GetAvailabilityTimes(context.Background(), 101, "2026-04-10")
	require.NoError(t, err)
	require.Len(t, times, 1)
	assert.Equal(t, 4, times[0].SlotsAvailable)
}

func TestClient_CreateAppointment(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/appointments", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req CreateAppointmentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(101), req.AppointmentTypeID)
		assert.Equal(t, "Kai", req.FirstName)

		w.Write([]byte(`{"id":9001,"firstName":"Kai","lastName":"Nguyen","duration":"60"}`))
	}))
	defer server.Close()

	appt, err := client.CreateAppointment(context.Background(), CreateAppointmentRequest{
		AppointmentTypeID: 101,
		Datetime:          "2026-04-10T09:00:00",
		FirstName:         "Kai",
		LastName:          "Nguyen",
		Email:             "kai@reefdive.example",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9001), appt.ID)
}

func TestClient_NonSuccessStatusReturnsAPIError(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_appointment_type","message":"That class is not available"}`))
	}))
	defer server.Close()

	_, err := client.GetAppointment(context.Background(), 42)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "That class is not available", apiErr.Message)
}

func TestClient_NonJSONErrorBodyIsNotLeaked(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>upstream stack trace with secrets</html>`))
	}))
	defer server.Close()

	_, err := client.GetAppointment(context.Background(), 42)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Empty(t, apiErr.Message)
	assert.NotContains(t, apiErr.Error(), "secrets")
}

func TestClient_Proxy_ReturnsRawJSON(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/appointment-types", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("includeDeleted"))
		w.Write([]byte(`[{"id":1},{"id":2}]`))
	}))
	defer server.Close()

	params := url.Values{}
	params.Set("includeDeleted", "true")
	raw, err := client.Proxy(context.Background(), http.MethodGet, "/appointment-types", params, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1},{"id":2}]`, string(raw))
}
