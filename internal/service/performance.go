package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/brandbeam/brandbeam/internal/config"
	"github.com/brandbeam/brandbeam/internal/models"
)

// PerformanceService records observed content performance and forwards it
// to the external learning endpoint when one is configured.
type PerformanceService struct {
	db          *gorm.DB
	logger      *zap.Logger
	client      *http.Client
	learningURL string
}

func NewPerformanceService(db *gorm.DB, cfg *config.ReportsConfig, logger *zap.Logger) *PerformanceService {
	timeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil {
		timeout = 30 * time.Second
	}
	return &PerformanceService{
		db:          db,
		logger:      logger,
		client:      &http.Client{Timeout: timeout},
		learningURL: cfg.LearningURL,
	}
}

// PerformanceInput is the dashboard's feedback payload for one published
// piece of content.
type PerformanceInput struct {
	ContentID           string   `json:"content_id" binding:"required"`
	Platform            string   `json:"platform"`
	Keywords            []string `json:"keywords"`
	ActualEngagement    float64  `json:"actual_engagement"`
	ActualTraffic       int      `json:"actual_traffic"`
	ActualRanking       int      `json:"actual_ranking"`
	PredictedEngagement float64  `json:"predicted_engagement"`
}

// Record stores the performance row, then forwards it to the learning
// endpoint best-effort. The content must belong to the caller.
func (s *PerformanceService) Record(ctx context.Context, userID string, input PerformanceInput) (*models.ContentPerformance, error) {
	var count int64
	err := s.db.Model(&models.ContentItem{}).
		Where("id = ? AND user_id = ?", input.ContentID, userID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to verify content: %w", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	perf := &models.ContentPerformance{
		UserID:              userID,
		ContentID:           input.ContentID,
		Platform:            input.Platform,
		Keywords:            models.StringArray(input.Keywords),
		ActualEngagement:    input.ActualEngagement,
		ActualTraffic:       input.ActualTraffic,
		ActualRanking:       input.ActualRanking,
		PredictedEngagement: input.PredictedEngagement,
	}
	if err := s.db.Create(perf).Error; err != nil {
		return nil, fmt.Errorf("failed to record performance: %w", err)
	}

	s.forwardToLearning(ctx, perf)
	return perf, nil
}

// forwardToLearning never fails the request: the learning endpoint only
// improves future predictions.
func (s *PerformanceService) forwardToLearning(ctx context.Context, perf *models.ContentPerformance) {
	if s.learningURL == "" {
		return
	}

	body, err := json.Marshal(perf)
	if err != nil {
		s.logger.Warn("Failed to encode learning payload", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.learningURL, bytes.NewReader(body))
	if err != nil {
		s.logger.Warn("Failed to build learning request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("Learning feedback delivery failed",
			zap.String("content_id", perf.ContentID),
			zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.logger.Warn("Learning endpoint rejected feedback",
			zap.String("content_id", perf.ContentID),
			zap.Int("status", resp.StatusCode))
		return
	}

	s.logger.Debug("Learning feedback delivered", zap.String("content_id", perf.ContentID))
}
