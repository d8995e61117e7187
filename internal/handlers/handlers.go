package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"mail-extractor-go/internal/extractor"
	"mail-extractor-go/internal/metrics"
	"mail-extractor-go/internal/models"
	"mail-extractor-go/internal/scheduler"
	"mail-extractor-go/internal/store"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	db        *gorm.DB
	store     *store.Store
	scheduler *scheduler.Scheduler
	metrics   *metrics.Metrics
}

// NewHandlers creates new HTTP handlers
func NewHandlers(db *gorm.DB, st *store.Store, sched *scheduler.Scheduler, m *metrics.Metrics) *Handlers {
	return &Handlers{
		db:        db,
		store:     st,
		scheduler: sched,
		metrics:   m,
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	// Health check
	router.GET("/healthz", h.HealthCheck)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	{
		// Ad-hoc extraction
		api.POST("/extract", h.Extract)

		// Extraction logs
		api.GET("/extractions", h.GetExtractions)
		api.GET("/extractions/:id", h.GetExtraction)

		// Scheduler control
		api.POST("/scheduler/start", h.StartScheduler)
		api.POST("/scheduler/stop", h.StopScheduler)
		api.POST("/scheduler/run-once", h.RunOnce)
		api.GET("/scheduler/status", h.GetSchedulerStatus)
	}
}

// Extract runs the extractor on a posted text and returns the matches
func (h *Handlers) Extract(c *gin.Context) {
	var req models.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
		return
	}

	result := extractor.Extract(req.Text)

	c.JSON(http.StatusOK, models.ExtractResponse{
		URLs:   result.URLs,
		Emails: result.Emails,
	})
}

// GetExtractions returns extraction logs with pagination
func (h *Handlers) GetExtractions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	offset := (page - 1) * limit

	logs, total, err := h.store.GetLogs(offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch extraction logs",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	responses := make([]models.ExtractionLogResponse, 0, len(logs))
	for _, log := range logs {
		responses = append(responses, models.ExtractionLogResponse{
			ID:         log.ID,
			MessageID:  log.MessageID,
			Sender:     log.Sender,
			URLCount:   log.URLCount,
			EmailCount: log.EmailCount,
			Status:     log.Status,
			ErrorMsg:   log.ErrorMsg,
			CreatedAt:  log.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"extractions": responses,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetExtraction returns a specific extraction log
func (h *Handlers) GetExtraction(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid extraction log ID",
			Code:    http.StatusBadRequest,
		})
		return
	}

	log, err := h.store.GetLog(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Extraction log not found",
				Code:    http.StatusNotFound,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch extraction log",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, models.ExtractionLogResponse{
		ID:         log.ID,
		MessageID:  log.MessageID,
		Sender:     log.Sender,
		URLCount:   log.URLCount,
		EmailCount: log.EmailCount,
		Status:     log.Status,
		ErrorMsg:   log.ErrorMsg,
		CreatedAt:  log.CreatedAt,
	})
}

// StartScheduler starts the mailbox processing scheduler
func (h *Handlers) StartScheduler(c *gin.Context) {
	if err := h.scheduler.Start(); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "scheduler_error",
			Message: "Failed to start scheduler",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Scheduler started successfully",
		"status":  "running",
	})
}

// StopScheduler stops the mailbox processing scheduler
func (h *Handlers) StopScheduler(c *gin.Context) {
	if err := h.scheduler.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "scheduler_error",
			Message: "Failed to stop scheduler",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Scheduler stopped successfully",
		"status":  "stopped",
	})
}

// RunOnce runs the mailbox processing once
func (h *Handlers) RunOnce(c *gin.Context) {
	if err := h.scheduler.RunOnce(); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "scheduler_error",
			Message: "Failed to run mailbox processing",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Mailbox processing completed successfully",
	})
}

// GetSchedulerStatus returns the current scheduler status
func (h *Handlers) GetSchedulerStatus(c *gin.Context) {
	status := "stopped"
	if h.scheduler.IsRunning() {
		status = "running"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"next_run": h.scheduler.GetNextRun(),
		"last_run": h.scheduler.GetLastRun(),
	})
}
