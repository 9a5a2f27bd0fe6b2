package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// CORS configuration
	CORS CORSConfig

	// Security configuration
	Security SecurityConfig

	// Compliance evaluation configuration
	Compliance ComplianceConfig

	// Scheduling vendor (Acuity) configuration
	Scheduling SchedulingConfig

	// Payment checkout configuration
	Payment PaymentConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret             string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost  int
	AdminEmails []string // allow-listed administrator accounts
}

// ComplianceConfig holds compliance classification configuration
type ComplianceConfig struct {
	// ExpiryWindowDays is the lookahead window for "expiring" status
	ExpiryWindowDays int

	// NoExpiryPolicy controls how never-expiring certifications affect the
	// compliance rate: "exclude" drops them from the calculation entirely,
	// "count" treats them as always valid.
	NoExpiryPolicy string
}

// SchedulingConfig holds scheduling vendor API configuration
type SchedulingConfig struct {
	BaseURL       string
	UserID        string
	APIKey        string
	WebhookSecret string
	Timeout       time.Duration
}

// PaymentConfig holds hosted checkout configuration
type PaymentConfig struct {
	Environment string // "sandbox" or "production"
	MerchantKey string
	ReturnURL   string
	WebhookURL  string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenExpiry:  time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
			RefreshTokenExpiry: time.Duration(getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRY", 604800)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Security: SecurityConfig{
			BcryptCost:  getEnvAsInt("BCRYPT_COST", 12),
			AdminEmails: getEnvAsSlice("ADMIN_EMAILS", nil),
		},
		Compliance: ComplianceConfig{
			ExpiryWindowDays: getEnvAsInt("COMPLIANCE_EXPIRY_WINDOW_DAYS", 30),
			NoExpiryPolicy:   getEnv("COMPLIANCE_NO_EXPIRY_POLICY", "exclude"),
		},
		Scheduling: SchedulingConfig{
			BaseURL:       getEnv("ACUITY_API_URL", "https://acuityscheduling.com/api/v1"),
			UserID:        getEnv("ACUITY_USER_ID", ""),
			APIKey:        getEnv("ACUITY_API_KEY", ""),
			WebhookSecret: getEnv("ACUITY_WEBHOOK_SECRET", ""),
			Timeout:       time.Duration(getEnvAsInt("ACUITY_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Payment: PaymentConfig{
			Environment: getEnv("CHECKOUT_ENVIRONMENT", "sandbox"),
			MerchantKey: getEnv("CHECKOUT_MERCHANT_KEY", ""),
			ReturnURL:   getEnv("CHECKOUT_RETURN_URL", ""),
			WebhookURL:  getEnv("CHECKOUT_WEBHOOK_URL", ""),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	if c.Compliance.ExpiryWindowDays <= 0 {
		return fmt.Errorf("COMPLIANCE_EXPIRY_WINDOW_DAYS must be positive")
	}

	switch c.Compliance.NoExpiryPolicy {
	case "exclude", "count":
	default:
		return fmt.Errorf("invalid COMPLIANCE_NO_EXPIRY_POLICY: %s (must be 'exclude' or 'count')", c.Compliance.NoExpiryPolicy)
	}

	// Scheduling credentials are required only in production; development
	// installs may run without the vendor integration.
	if c.Server.Environment == "production" {
		if c.Scheduling.UserID == "" || c.Scheduling.APIKey == "" {
			return fmt.Errorf("ACUITY_USER_ID and ACUITY_API_KEY are required in production")
		}
		if c.Scheduling.WebhookSecret == "" {
			return fmt.Errorf("ACUITY_WEBHOOK_SECRET is required in production")
		}
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
