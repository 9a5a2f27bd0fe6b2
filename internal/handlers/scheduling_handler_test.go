package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProxyPathAllowed(t *testing.T) {
	allowed := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/clients"},
		{http.MethodGet, "/calendars"},
		{http.MethodGet, "/appointments"},
		{http.MethodGet, "/appointments/42"},
		{http.MethodGet, "/availability/dates"},
		{http.MethodPost, "/appointments"},
		{http.MethodPut, "/appointments/42/cancel"},
		{http.MethodPut, "/appointments/42/reschedule"},
	}
	for _, tc := range allowed {
		assert.True(t, proxyPathAllowed(tc.method, tc.path), "%s %s", tc.method, tc.path)
	}

	blocked := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/me"},
		{http.MethodGet, "/appointments/not-a-number"},
		{http.MethodDelete, "/appointments/42"},
		{http.MethodPost, "/clients"},
		{http.MethodPut, "/appointments/42/delete"},
		{http.MethodGet, "/appointments/42/payments"},
		{http.MethodGet, "/"},
	}
	for _, tc := range blocked {
		assert.False(t, proxyPathAllowed(tc.method, tc.path), "%s %s", tc.method, tc.path)
	}
}
