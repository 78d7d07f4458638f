package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/brandbeam/brandbeam/internal/config"
	"github.com/brandbeam/brandbeam/internal/repository"
)

const scheduledBatchSize = 25

// Scheduler publishes content whose scheduled time has arrived.
type Scheduler struct {
	config       *config.SchedulerConfig
	logger       *zap.Logger
	content      repository.ContentRepository
	orchestrator *Orchestrator
	ticker       *time.Ticker
	stopCh       chan struct{}
}

func NewScheduler(cfg *config.SchedulerConfig, logger *zap.Logger, content repository.ContentRepository, orchestrator *Orchestrator) *Scheduler {
	return &Scheduler{
		config:       cfg,
		logger:       logger,
		content:      content,
		orchestrator: orchestrator,
		stopCh:       make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled")
		return nil
	}

	interval, err := time.ParseDuration(s.config.PublishInterval)
	if err != nil {
		s.logger.Error("Invalid publish interval", zap.String("interval", s.config.PublishInterval), zap.Error(err))
		return err
	}

	s.logger.Info("Starting scheduler", zap.String("publish_interval", s.config.PublishInterval))

	s.ticker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.publishDue(ctx)
			case <-s.stopCh:
				s.logger.Info("Scheduler stopped")
				return
			case <-ctx.Done():
				s.logger.Info("Scheduler context cancelled")
				return
			}
		}
	}()

	return nil
}

func (s *Scheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
	s.logger.Info("Scheduler shutdown completed")
}

func (s *Scheduler) publishDue(ctx context.Context) {
	items, err := s.content.ListDueScheduled(scheduledBatchSize)
	if err != nil {
		s.logger.Error("Failed to list due content", zap.Error(err))
		return
	}
	if len(items) == 0 {
		return
	}

	s.logger.Info("Publishing due content", zap.Int("count", len(items)))

	for i := range items {
		item := &items[i]
		start := time.Now()
		resp, err := s.orchestrator.PublishItem(ctx, item)
		if err != nil {
			s.logger.Error("Scheduled publish failed",
				zap.String("content_id", item.ID),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err))
			continue
		}

		s.logger.Info("Scheduled publish finished",
			zap.String("content_id", item.ID),
			zap.String("status", resp.Record.Status),
			zap.Duration("duration", time.Since(start)))
	}
}
