package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/brandbeam/brandbeam/internal/service"
)

func reportDays(c *gin.Context) int {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	return days
}

func (s *Server) handleReportOverview(c *gin.Context) {
	ov, err := s.Reports.Overview(c.Request.Context(), service.UserID(c), reportDays(c))
	if err != nil {
		s.Logger.Error("Failed to build overview report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	// The traffic card is optional; a GA4 failure never blanks the page.
	summary, err := s.Reports.FetchGA4Summary(c.Request.Context(), service.UserID(c), ov.Days)
	if err != nil {
		s.Logger.Warn("Failed to fetch GA4 summary", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"overview": ov, "traffic": summary})
}

func (s *Server) handleReportKeywords(c *gin.Context) {
	report, err := s.Reports.Keywords(c.Request.Context(), service.UserID(c), reportDays(c))
	if err != nil {
		s.Logger.Error("Failed to build keyword report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleReportAIVisibility(c *gin.Context) {
	report, err := s.Reports.AIVisibility(c.Request.Context(), service.UserID(c), reportDays(c))
	if err != nil {
		s.Logger.Error("Failed to build AI visibility report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleReportGaps(c *gin.Context) {
	rows, err := s.Reports.Gaps(c.Request.Context(), service.UserID(c), reportDays(c))
	if err != nil {
		s.Logger.Error("Failed to build gap report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"gaps": rows})
}

func (s *Server) handleReportQuestions(c *gin.Context) {
	questions, err := s.Reports.Questions(c.Request.Context(), service.UserID(c), reportDays(c))
	if err != nil {
		s.Logger.Error("Failed to build question report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (s *Server) handleReportCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="report.csv"`)

	if err := s.Reports.WriteCSV(c.Request.Context(), service.UserID(c), reportDays(c), c.Writer); err != nil {
		s.Logger.Error("Failed to export report CSV", zap.Error(err))
		c.Status(http.StatusInternalServerError)
	}
}

type shareRequest struct {
	Days int `json:"days"`
}

func (s *Server) handleReportShare(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := s.Reports.Share(c.Request.Context(), service.UserID(c), req.Days)
	if err != nil {
		s.Logger.Error("Failed to create share link", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create share link"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

type emailRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Days      int    `json:"days"`
}

func (s *Server) handleReportEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.Reports.Email(c.Request.Context(), service.UserID(c), req.Days, req.Recipient); err != nil {
		s.Logger.Error("Failed to email report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to email report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleSharedReport(c *gin.Context) {
	payload, err := s.Reports.ResolveShare(c.Request.Context(), c.Param("token"))
	if err != nil {
		s.Logger.Error("Failed to resolve share token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load shared report"})
		return
	}
	if payload == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shared report not found or expired"})
		return
	}
	c.Data(http.StatusOK, "application/json", payload)
}
