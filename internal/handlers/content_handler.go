package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coralseatraining/partner-portal-backend/internal/database"
	"github.com/coralseatraining/partner-portal-backend/internal/models"
)

// ContentHandler serves site content documents (course copy, testimonials,
// contact details) and the admin editing endpoints behind them
type ContentHandler struct {
	contentRepo *database.ContentRepository
	logger      *logrus.Logger
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(contentRepo *database.ContentRepository, logger *logrus.Logger) *ContentHandler {
	return &ContentHandler{
		contentRepo: contentRepo,
		logger:      logger,
	}
}

// GetContent returns one content document by key (public, no auth)
// GET /api/v1/content/:key
func (h *ContentHandler) GetContent(c *gin.Context) {
	entry, err := h.contentRepo.Get(c.Param("key"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch content"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// ListContent returns all content documents
// GET /api/v1/admin/content
func (h *ContentHandler) ListContent(c *gin.Context) {
	entries, err := h.contentRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list content"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// SetContent creates or replaces a content document
// PUT /api/v1/admin/content/:key
func (h *ContentHandler) SetContent(c *gin.Context) {
	key := c.Param("key")

	var req models.SetContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.contentRepo.Set(key, req.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save content"})
		return
	}

	h.logger.WithField("key", key).Info("Content updated")
	c.JSON(http.StatusOK, gin.H{"key": key, "message": "Content saved"})
}

// DeleteContent removes a content document
// DELETE /api/v1/admin/content/:key
func (h *ContentHandler) DeleteContent(c *gin.Context) {
	if err := h.contentRepo.Delete(c.Param("key")); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete content"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Content deleted"})
}

// ExportContent downloads the full content tree as a JSON document
// GET /api/v1/admin/content/export
func (h *ContentHandler) ExportContent(c *gin.Context) {
	entries, err := h.contentRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export content"})
		return
	}

	export := models.ContentExport{
		ExportedAt: time.Now().UTC(),
		Entries:    make(map[string]json.RawMessage, len(entries)),
	}
	for _, entry := range entries {
		export.Entries[entry.Key] = entry.Value
	}

	c.Header("Content-Disposition", `attachment; filename="site-content.json"`)
	c.JSON(http.StatusOK, export)
}

// ImportContent replaces documents from an exported content tree. Keys not
// present in the import are left untouched.
// POST /api/v1/admin/content/import
func (h *ContentHandler) ImportContent(c *gin.Context) {
	var export models.ContentExport
	if err := c.ShouldBindJSON(&export); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(export.Entries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No content entries to import"})
		return
	}

	imported := 0
	for key, value := range export.Entries {
		if err := h.contentRepo.Set(key, value); err != nil {
			h.logger.WithFields(logrus.Fields{
				"key":   key,
				"error": err.Error(),
			}).Warn("Content import entry failed")
			continue
		}
		imported++
	}

	c.JSON(http.StatusOK, gin.H{"imported": imported, "total": len(export.Entries)})
}
