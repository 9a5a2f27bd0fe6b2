package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coralseatraining/partner-portal-backend/internal/config"
	"github.com/coralseatraining/partner-portal-backend/internal/database"
	"github.com/coralseatraining/partner-portal-backend/internal/handlers"
	"github.com/coralseatraining/partner-portal-backend/internal/middleware"
	"github.com/coralseatraining/partner-portal-backend/internal/services"
	"github.com/coralseatraining/partner-portal-backend/pkg/jwt"
	"github.com/coralseatraining/partner-portal-backend/pkg/scheduling"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Coral Sea Training Partner Portal Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize repositories
	partnerRepo := database.NewPartnerRepository(db)
	employeeRepo := database.NewEmployeeRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	courseRepo := database.NewCourseRepository(db)
	contentRepo := database.NewContentRepository(db)
	sessionRepo := database.NewSessionRepository(db)
	appointmentRepo := database.NewAppointmentRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	schedulingClient := scheduling.NewClient(scheduling.Config{
		BaseURL: cfg.Scheduling.BaseURL,
		UserID:  cfg.Scheduling.UserID,
		APIKey:  cfg.Scheduling.APIKey,
		Timeout: cfg.Scheduling.Timeout,
	})
	complianceService := services.NewComplianceService(cfg.Compliance.ExpiryWindowDays, cfg.Compliance.NoExpiryPolicy)
	pricingService := services.NewPricingService()
	wizardService := services.NewBookingWizardService(courseRepo, employeeRepo, bookingRepo, partnerRepo, pricingService)
	syncService := services.NewSyncService(schedulingClient, bookingRepo, appointmentRepo, logger)
	checkoutService := services.NewCheckoutService(&cfg.Payment, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(partnerRepo, sessionRepo, jwtService, &cfg.Security, logger)
	partnerHandler := handlers.NewPartnerHandler(partnerRepo, logger)
	employeeHandler := handlers.NewEmployeeHandler(employeeRepo, complianceService, logger)
	dashboardHandler := handlers.NewDashboardHandler(employeeRepo, bookingRepo, complianceService)
	courseHandler := handlers.NewCourseHandler(courseRepo, partnerRepo, pricingService)
	bookingHandler := handlers.NewBookingHandler(wizardService, bookingRepo, syncService, logger)
	contentHandler := handlers.NewContentHandler(contentRepo, logger)
	schedulingHandler := handlers.NewSchedulingHandler(schedulingClient, appointmentRepo, logger)
	webhookHandler := handlers.NewWebhookHandler(syncService, cfg.Scheduling.WebhookSecret, logger)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, logger)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	v1 := router.Group("/api/v1")
	{
		// Public endpoints
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}
		v1.GET("/content/:key", contentHandler.GetContent)
		v1.POST("/checkout", checkoutHandler.CreateCheckout)
		v1.POST("/webhooks/scheduling", webhookHandler.HandleSchedulingWebhook)

		// Partner endpoints
		partner := v1.Group("", middleware.AuthMiddleware(jwtService))
		{
			partner.POST("/auth/logout", authHandler.Logout)
			partner.GET("/auth/sessions", authHandler.Sessions)

			partner.GET("/partner/profile", partnerHandler.GetProfile)
			partner.PUT("/partner/profile", partnerHandler.UpdateProfile)

			partner.GET("/dashboard", dashboardHandler.GetDashboard)

			partner.GET("/courses", courseHandler.ListCourses)

			partner.GET("/employees", employeeHandler.ListEmployees)
			partner.GET("/employees/export", employeeHandler.ExportRoster)
			partner.POST("/employees", employeeHandler.CreateEmployee)
			partner.GET("/employees/:id", employeeHandler.GetEmployee)
			partner.PUT("/employees/:id", employeeHandler.UpdateEmployee)
			partner.DELETE("/employees/:id", employeeHandler.DeleteEmployee)
			partner.POST("/employees/:id/certifications", employeeHandler.AddCertification)
			partner.DELETE("/employees/:id/certifications/:index", employeeHandler.RemoveCertification)

			partner.GET("/bookings", bookingHandler.ListBookings)
			partner.GET("/bookings/wizard", bookingHandler.GetWizard)
			partner.POST("/bookings/wizard/course", bookingHandler.SelectCourse)
			partner.POST("/bookings/wizard/employees", bookingHandler.SelectEmployees)
			partner.POST("/bookings/wizard/schedule", bookingHandler.SetSchedule)
			partner.POST("/bookings/wizard/back", bookingHandler.Back)
			partner.GET("/bookings/wizard/review", bookingHandler.Review)
			partner.POST("/bookings/wizard/submit", bookingHandler.Submit)
			partner.POST("/bookings/wizard/reset", bookingHandler.ResetWizard)
			partner.GET("/bookings/:id", bookingHandler.GetBooking)
		}

		// Admin endpoints
		admin := v1.Group("/admin", middleware.AuthMiddleware(jwtService), middleware.RequireRole("admin"))
		{
			admin.GET("/partners", partnerHandler.ListPartners)
			admin.PUT("/partners/:id", partnerHandler.AdminUpdatePartner)

			admin.GET("/courses", courseHandler.ListAllCourses)
			admin.PUT("/courses/:id", courseHandler.UpsertCourse)
			admin.DELETE("/courses/:id", courseHandler.DeleteCourse)

			admin.PUT("/bookings/:id/status", bookingHandler.AdminUpdateBookingStatus)

			admin.GET("/content", contentHandler.ListContent)
			admin.GET("/content/export", contentHandler.ExportContent)
			admin.POST("/content/import", contentHandler.ImportContent)
			admin.PUT("/content/:key", contentHandler.SetContent)
			admin.DELETE("/content/:key", contentHandler.DeleteContent)

			admin.GET("/scheduling/appointment-types", schedulingHandler.GetAppointmentTypes)
			admin.GET("/scheduling/availability/dates", schedulingHandler.GetAvailabilityDates)
			admin.GET("/scheduling/availability/times", schedulingHandler.GetAvailabilityTimes)
			admin.GET("/scheduling/appointments", schedulingHandler.FindAppointments)
			admin.GET("/scheduling/appointments/:id", schedulingHandler.GetAppointment)
			admin.GET("/scheduling/mirror", schedulingHandler.ListMirroredAppointments)
			admin.Any("/scheduling/proxy/*path", schedulingHandler.Proxy)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.WithFields(fields).Error("Request completed")
		case c.Writer.Status() >= 400:
			logger.WithFields(fields).Warn("Request completed")
		default:
			logger.WithFields(fields).Info("Request completed")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
