package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/brandbeam/brandbeam/internal/models"
	"github.com/brandbeam/brandbeam/internal/service"
)

type createContentRequest struct {
	Topic          string                  `json:"topic" binding:"required"`
	Body           string                  `json:"body"`
	TargetPlatform string                  `json:"target_platform"`
	Keywords       []string                `json:"keywords"`
	ScheduledAt    *time.Time              `json:"scheduled_at"`
	Metadata       *models.ContentMetadata `json:"metadata"`
}

func (s *Server) handleCreateContent(c *gin.Context) {
	var req createContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := &models.ContentItem{
		UserID:         service.UserID(c),
		Topic:          req.Topic,
		Body:           req.Body,
		TargetPlatform: req.TargetPlatform,
		Keywords:       models.StringArray(req.Keywords),
		Status:         models.StatusDraft,
		ScheduledAt:    req.ScheduledAt,
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.NewJSONType(*req.Metadata)
	}

	if err := s.Content.Create(item); err != nil {
		s.Logger.Error("Failed to create content", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create content"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"content": item})
}

func (s *Server) handleListContent(c *gin.Context) {
	userID := service.UserID(c)
	status := c.DefaultQuery("status", "all")

	switch status {
	case "all", models.StatusDraft, models.StatusReview, models.StatusScheduled, models.StatusPublished:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
		return
	}

	items, err := s.Content.List(userID, status)
	if err != nil {
		s.Logger.Error("Failed to list content", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list content"})
		return
	}

	stats, err := s.Content.Stats(userID)
	if err != nil {
		s.Logger.Error("Failed to load content stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": items, "stats": stats})
}

func (s *Server) handleOrchestratorAction(c *gin.Context) {
	var req service.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := s.Orchestrator.Execute(c.Request.Context(), service.UserID(c), req)
	if err != nil {
		s.writeOrchestratorError(c, req.Action, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"content":          resp.Content,
		"published_record": resp.Record,
		"deleted":          resp.Deleted,
		"failed":           resp.Failed,
	})
}

func (s *Server) writeOrchestratorError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, service.ErrBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		s.Logger.Error("Orchestrator action failed",
			zap.String("action", action),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) handleContentPerformance(c *gin.Context) {
	var input service.PerformanceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	perf, err := s.Performance.Record(c.Request.Context(), service.UserID(c), input)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		s.Logger.Error("Failed to record content performance", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record performance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "performance": perf})
}
