package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/coralseatraining/partner-portal-backend/internal/database"
	"github.com/coralseatraining/partner-portal-backend/internal/middleware"
	"github.com/coralseatraining/partner-portal-backend/internal/models"
	"github.com/coralseatraining/partner-portal-backend/internal/services"
)

// CourseHandler handles the course catalog and its partner-priced view
type CourseHandler struct {
	courseRepo  *database.CourseRepository
	partnerRepo *database.PartnerRepository
	pricing     *services.PricingService
}

// NewCourseHandler creates a new CourseHandler
func NewCourseHandler(
	courseRepo *database.CourseRepository,
	partnerRepo *database.PartnerRepository,
	pricing *services.PricingService,
) *CourseHandler {
	return &CourseHandler{
		courseRepo:  courseRepo,
		partnerRepo: partnerRepo,
		pricing:     pricing,
	}
}

// ListCourses returns active courses priced for the authenticated partner.
// Pending and rejected partners see full base prices.
// GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	partnerCtx, exists := middleware.GetPartnerContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	partner, err := h.partnerRepo.GetByID(partnerCtx.PartnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch partner"})
		return
	}

	courses, err := h.courseRepo.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
		return
	}

	c.JSON(http.StatusOK, h.pricing.PriceCatalog(courses, *partner))
}

// ListAllCourses returns the full catalog including inactive entries
// GET /api/v1/admin/courses
func (h *CourseHandler) ListAllCourses(c *gin.Context) {
	courses, err := h.courseRepo.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
		return
	}

	c.JSON(http.StatusOK, courses)
}

// UpsertCourse creates or replaces a catalog entry
// PUT /api/v1/admin/courses/:id
func (h *CourseHandler) UpsertCourse(c *gin.Context) {
	courseID := strings.TrimSpace(c.Param("id"))
	if courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course id is required"})
		return
	}

	var req models.UpsertCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	course := &models.Course{
		ID:        courseID,
		Name:      req.Name,
		Code:      req.Code,
		BasePrice: req.BasePrice,
		Category:  req.Category,
		Active:    active,
	}

	if err := h.courseRepo.Upsert(course); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save course"})
		return
	}

	c.JSON(http.StatusOK, course)
}

// DeleteCourse removes a catalog entry. Existing bookings keep their course
// snapshots.
// DELETE /api/v1/admin/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	if err := h.courseRepo.Delete(c.Param("id")); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete course"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Course deleted"})
}
