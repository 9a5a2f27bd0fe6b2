package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coralseatraining/partner-portal-backend/pkg/jwt"
)

// PartnerContextKey is the key used to store partner information in Gin context
const PartnerContextKey = "partner"

// PartnerContext represents the authenticated partner's information
type PartnerContext struct {
	PartnerID uuid.UUID `json:"partner_id"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
}

// IsAdmin reports whether the partner carries the admin role
func (p PartnerContext) IsAdmin() bool {
	for _, role := range p.Roles {
		if role == "admin" {
			return true
		}
	}
	return false
}

// AuthMiddleware creates a middleware that validates JWT tokens
func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authorization header is required",
				"code":    "MISSING_AUTH_HEADER",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid authorization header format. Expected: Bearer <token>",
				"code":    "INVALID_AUTH_FORMAT",
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Token cannot be empty",
				"code":    "INVALID_AUTH_FORMAT",
			})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			if jwtService.IsTokenExpired(tokenString) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "token_expired",
					"message": "Access token has expired. Please refresh your token.",
					"code":    "TOKEN_EXPIRED",
				})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "invalid_token",
					"message": "Invalid access token",
					"code":    "INVALID_TOKEN",
				})
			}
			c.Abort()
			return
		}

		partnerContext := PartnerContext{
			PartnerID: claims.PartnerID,
			Email:     claims.Email,
			Roles:     claims.Roles,
		}

		c.Set(PartnerContextKey, partnerContext)
		c.Next()
	}
}

// RequireRole creates a middleware that checks if the partner has a required role
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		partnerCtx, exists := GetPartnerContext(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Partner context not found. Auth middleware may not be applied.",
				"code":    "MISSING_PARTNER_CONTEXT",
			})
			c.Abort()
			return
		}

		hasRole := false
		for _, requiredRole := range roles {
			for _, partnerRole := range partnerCtx.Roles {
				if partnerRole == requiredRole {
					hasRole = true
					break
				}
			}
			if hasRole {
				break
			}
		}

		if !hasRole {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "You don't have permission to access this resource",
				"code":    "INSUFFICIENT_PERMISSIONS",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetPartnerContext retrieves the partner context from Gin context
func GetPartnerContext(c *gin.Context) (PartnerContext, bool) {
	value, exists := c.Get(PartnerContextKey)
	if !exists {
		return PartnerContext{}, false
	}

	partnerCtx, ok := value.(PartnerContext)
	if !ok {
		return PartnerContext{}, false
	}

	return partnerCtx, true
}
