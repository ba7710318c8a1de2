package handlers

import (
	"net/http"

	"kvadrat-backend/internal/cleanup"
	"kvadrat-backend/internal/database"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the staff-only dashboard endpoints.
type AdminHandler struct {
	db      *database.GormDB
	cleanup *cleanup.Service
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(db *database.GormDB, svc *cleanup.Service) *AdminHandler {
	return &AdminHandler{db: db, cleanup: svc}
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.db.GetAdminStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type cleanupRunForm struct {
	RetentionDays    int  `json:"retention_days" binding:"omitempty,gte=1"`
	MaxDeletionCount int  `json:"max_deletion_count" binding:"omitempty,gte=1"`
	DryRun           bool `json:"dry_run"`
}

// RunCleanup handles POST /api/admin/cleanup/run. Zero-valued fields keep
// the defaults.
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	var form cleanupRunForm
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, err)
			return
		}
	}

	cfg := cleanup.DefaultConfig()
	if form.RetentionDays > 0 {
		cfg.RetentionDays = form.RetentionDays
	}
	if form.MaxDeletionCount > 0 {
		cfg.MaxDeletionCount = form.MaxDeletionCount
	}
	cfg.DryRun = form.DryRun

	result, err := h.cleanup.Run(cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// CleanupLogs handles GET /api/admin/cleanup/logs.
func (h *AdminHandler) CleanupLogs(c *gin.Context) {
	logs, err := h.cleanup.GetRecentDeleteLogs(100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, logs)
}
