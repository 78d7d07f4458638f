package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandbeam/brandbeam/internal/models"
)

// ContentRepository is the storage surface the orchestrator needs. Lookups
// are always scoped by (id, user_id); Get returns (nil, nil) for rows that
// don't exist under that user.
type ContentRepository interface {
	Get(userID, id string) (*models.ContentItem, error)
	ExistsAnyOwner(id string) (bool, error)
	List(userID, status string) ([]models.ContentItem, error)
	Stats(userID string) (map[string]int64, error)
	Create(item *models.ContentItem) error
	Save(item *models.ContentItem) error
	Delete(userID, id string) (int64, error)
	DeletePublished(userID, contentID string) error
	CreatePublished(rec *models.PublishedRecord) error
	ListDueScheduled(limit int) ([]models.ContentItem, error)
}

type GormContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *GormContentRepository {
	return &GormContentRepository{db: db}
}

func (r *GormContentRepository) Get(userID, id string) (*models.ContentItem, error) {
	var item models.ContentItem
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}
	return &item, nil
}

// ExistsAnyOwner checks whether a content row exists regardless of owner.
// Used after a zero-row delete to tell "already gone" from "owned by
// someone else".
func (r *GormContentRepository) ExistsAnyOwner(id string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.ContentItem{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to verify content: %w", err)
	}
	return count > 0, nil
}

func (r *GormContentRepository) List(userID, status string) ([]models.ContentItem, error) {
	query := r.db.Where("user_id = ?", userID).Order("updated_at DESC")
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	var items []models.ContentItem
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	return items, nil
}

func (r *GormContentRepository) Stats(userID string) (map[string]int64, error) {
	stats := map[string]int64{
		models.StatusDraft:     0,
		models.StatusReview:    0,
		models.StatusScheduled: 0,
		models.StatusPublished: 0,
	}

	rows, err := r.db.Model(&models.ContentItem{}).
		Select("status, count(*)").
		Where("user_id = ?", userID).
		Group("status").
		Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to load content stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan content stats: %w", err)
		}
		stats[status] = count
	}
	return stats, nil
}

func (r *GormContentRepository) Create(item *models.ContentItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return r.db.Create(item).Error
}

func (r *GormContentRepository) Save(item *models.ContentItem) error {
	return r.db.Save(item).Error
}

// Delete removes the row scoped to the owner and returns affected rows so
// the caller can run the ownership verification on zero.
func (r *GormContentRepository) Delete(userID, id string) (int64, error) {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.ContentItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete content: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormContentRepository) DeletePublished(userID, contentID string) error {
	return r.db.Where("content_id = ? AND user_id = ?", contentID, userID).
		Delete(&models.PublishedRecord{}).Error
}

func (r *GormContentRepository) CreatePublished(rec *models.PublishedRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	return r.db.Create(rec).Error
}

// ListDueScheduled returns content whose scheduled time has passed, oldest
// first, for the background publish loop.
func (r *GormContentRepository) ListDueScheduled(limit int) ([]models.ContentItem, error) {
	var items []models.ContentItem
	err := r.db.Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= NOW()", models.StatusScheduled).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due scheduled content: %w", err)
	}
	return items, nil
}
