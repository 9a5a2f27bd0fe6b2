package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coralseatraining/partner-portal-backend/pkg/jwt"
)

func setupAuthTest(roles ...string) (*gin.Engine, *jwt.Service) {
	gin.SetMode(gin.TestMode)
	jwtService := jwt.NewService("access-secret", "refresh-secret", 15*time.Minute, time.Hour)

	router := gin.New()
	group := router.Group("/", AuthMiddleware(jwtService))
	if len(roles) > 0 {
		group.Use(RequireRole(roles...))
	}
	group.GET("/me", func(c *gin.Context) {
		partnerCtx, _ := GetPartnerContext(c)
		c.JSON(http.StatusOK, partnerCtx)
	})

	return router, jwtService
}

func doAuthRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	router, _ := setupAuthTest()

	w := doAuthRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_AUTH_HEADER")
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	router, _ := setupAuthTest()

	for _, header := range []string{"Token abc", "Bearer", "Bearer "} {
		w := doAuthRequest(router, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_AUTH_FORMAT")
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router, _ := setupAuthTest()

	w := doAuthRequest(router, "Bearer not-a-real-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	router, _ := setupAuthTest()
	expiredService := jwt.NewService("access-secret", "refresh-secret", -time.Minute, time.Hour)

	token, err := expiredService.GenerateAccessToken(uuid.New(), "dana@reefdive.example", []string{"partner"})
	require.NoError(t, err)

	w := doAuthRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestAuthMiddleware_ValidTokenSetsPartnerContext(t *testing.T) {
	router, jwtService := setupAuthTest()
	partnerID := uuid.New()

	token, err := jwtService.GenerateAccessToken(partnerID, "dana@reefdive.example", []string{"partner"})
	require.NoError(t, err)

	w := doAuthRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), partnerID.String())
	assert.Contains(t, w.Body.String(), "dana@reefdive.example")
}

func TestRequireRole_BlocksMissingRole(t *testing.T) {
	router, jwtService := setupAuthTest("admin")

	token, err := jwtService.GenerateAccessToken(uuid.New(), "dana@reefdive.example", []string{"partner"})
	require.NoError(t, err)

	w := doAuthRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "INSUFFICIENT_PERMISSIONS")
}

func TestRequireRole_AllowsMatchingRole(t *testing.T) {
	router, jwtService := setupAuthTest("admin")

	token, err := jwtService.GenerateAccessToken(uuid.New(), "ops@coralseatraining.example", []string{"partner", "admin"})
	require.NoError(t, err)

	w := doAuthRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPartnerContext_IsAdmin(t *testing.T) {
	assert.True(t, PartnerContext{Roles: []string{"partner", "admin"}}.IsAdmin())
	assert.False(t, PartnerContext{Roles: []string{"partner"}}.IsAdmin())
	assert.False(t, PartnerContext{}.IsAdmin())
}
