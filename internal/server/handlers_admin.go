package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brandbeam/brandbeam/internal/models"
	"github.com/brandbeam/brandbeam/internal/service"
)

type crawlerRequest struct {
	DomainURL string `json:"domain_url" binding:"required"`
	JobID     string `json:"job_id"`
}

func (s *Server) handleCrawler(c *gin.Context) {
	var req crawlerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.JobID == "" {
		req.JobID = uuid.NewString()
	}

	job, err := s.Crawler.Run(c.Request.Context(), service.UserID(c), req.JobID, req.DomainURL)
	if err != nil {
		s.Logger.Error("Crawl failed", zap.String("domain", req.DomainURL), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Crawl failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": job})
}

type adminLoginRequest struct {
	Code string `json:"code" binding:"required"`
}

func (s *Server) handleAdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !s.Auth.ValidateTOTP(req.Code) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid code"})
		return
	}

	token := s.Auth.CreateSession()
	c.SetCookie("admin_session", token, 12*3600, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleAdminSummary gives operators a cross-user view of workflow volume.
func (s *Server) handleAdminSummary(c *gin.Context) {
	var users, content, published, pendingTasks int64

	if err := s.DB.Model(&models.User{}).Count(&users).Error; err != nil {
		s.Logger.Error("Failed to count users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load summary"})
		return
	}
	if err := s.DB.Model(&models.ContentItem{}).Count(&content).Error; err != nil {
		s.Logger.Error("Failed to count content", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load summary"})
		return
	}
	if err := s.DB.Model(&models.PublishedRecord{}).
		Where("status = ?", models.PublishStatusPublished).
		Count(&published).Error; err != nil {
		s.Logger.Error("Failed to count publishes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load summary"})
		return
	}
	if err := s.DB.Model(&models.ActionPlanTask{}).
		Where("status = ?", models.TaskPending).
		Count(&pendingTasks).Error; err != nil {
		s.Logger.Error("Failed to count pending tasks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":              users,
		"content":            content,
		"published":          published,
		"pending_plan_tasks": pendingTasks,
	})
}
