package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brandbeam/brandbeam/internal/models"
	"github.com/brandbeam/brandbeam/internal/repository"
)

const snapshotRetentionDays = 90

// SnapshotUpdater maintains the daily per-user performance rollups the
// trend endpoints read from.
type SnapshotUpdater struct {
	db     *gorm.DB
	users  *repository.UserRepository
	logger *zap.Logger
	ticker *time.Ticker
	done   chan bool
}

func NewSnapshotUpdater(db *gorm.DB, users *repository.UserRepository, logger *zap.Logger, interval time.Duration) *SnapshotUpdater {
	return &SnapshotUpdater{
		db:     db,
		users:  users,
		logger: logger,
		ticker: time.NewTicker(interval),
		done:   make(chan bool),
	}
}

// Start begins the periodic snapshot process
func (s *SnapshotUpdater) Start(ctx context.Context) {
	go func() {
		s.logger.Info("Starting snapshot updater")
		for {
			select {
			case <-s.done:
				s.logger.Info("Snapshot updater stopped")
				return
			case <-ctx.Done():
				s.logger.Info("Snapshot updater stopped due to context cancellation")
				return
			case <-s.ticker.C:
				s.updateSnapshots()
			}
		}
	}()
}

// Stop stops the snapshot updater
func (s *SnapshotUpdater) Stop() {
	s.ticker.Stop()
	close(s.done)
}

func (s *SnapshotUpdater) updateSnapshots() {
	s.logger.Debug("Updating performance snapshots")

	userIDs, err := s.users.ListIDs()
	if err != nil {
		s.logger.Error("Failed to list users for snapshots", zap.Error(err))
		return
	}

	for _, userID := range userIDs {
		if err := s.snapshotUser(userID); err != nil {
			s.logger.Error("Failed to snapshot user",
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}

	if err := s.cleanupOld(snapshotRetentionDays); err != nil {
		s.logger.Error("Failed to cleanup old snapshots", zap.Error(err))
	}

	s.logger.Debug("Performance snapshots updated")
}

// snapshotUser upserts today's rollup for one user.
func (s *SnapshotUpdater) snapshotUser(userID string) error {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	snap := models.PerformanceSnapshot{
		UserID:         userID,
		Date:           today,
		PlatformCounts: datatypes.JSONMap{},
	}

	rows, err := s.db.Model(&models.ContentItem{}).
		Select("status, count(*)").
		Where("user_id = ?", userID).
		Group("status").
		Rows()
	if err != nil {
		return fmt.Errorf("failed to load content counts: %w", err)
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan content counts: %w", err)
		}
		switch status {
		case models.StatusDraft:
			snap.DraftCount = count
		case models.StatusReview:
			snap.ReviewCount = count
		case models.StatusScheduled:
			snap.ScheduledCount = count
		case models.StatusPublished:
			snap.PublishedCount = count
		}
	}
	rows.Close()

	var records []models.PublishedRecord
	err = s.db.Where("user_id = ? AND created_at >= ?", userID, today).
		Find(&records).Error
	if err != nil {
		return fmt.Errorf("failed to load publish records: %w", err)
	}
	for _, r := range records {
		if r.Status == models.PublishStatusPublished {
			snap.PublishSuccesses++
		} else {
			snap.PublishFailures++
		}
		key := r.Platform
		if n, ok := snap.PlatformCounts[key].(float64); ok {
			snap.PlatformCounts[key] = n + 1
		} else {
			snap.PlatformCounts[key] = float64(1)
		}
	}

	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"draft_count", "review_count", "scheduled_count", "published_count",
			"publish_successes", "publish_failures", "platform_counts", "updated_at",
		}),
	}).Create(&snap).Error
}

func (s *SnapshotUpdater) cleanupOld(retentionDays int) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	return s.db.Where("date < ?", cutoff).Delete(&models.PerformanceSnapshot{}).Error
}
