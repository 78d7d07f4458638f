package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/brandbeam/brandbeam/internal/models"
)

// IntegrationRepository owns platform_integrations rows. It satisfies
// publisher.IntegrationStore.
type IntegrationRepository struct {
	db *gorm.DB
}

func NewIntegrationRepository(db *gorm.DB) *IntegrationRepository {
	return &IntegrationRepository{db: db}
}

// GetConnected returns the authoritative row for (user, platform) when it
// exists and is connected; (nil, nil) otherwise. At most one row per pair
// is treated as authoritative.
func (r *IntegrationRepository) GetConnected(userID, platform string) (*models.PlatformIntegration, error) {
	var integration models.PlatformIntegration
	err := r.db.Where("user_id = ? AND platform = ?", userID, platform).First(&integration).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load integration: %w", err)
	}
	if integration.Status != models.IntegrationConnected {
		return nil, nil
	}
	return &integration, nil
}

// Touch bumps last_used_at after a successful publish.
func (r *IntegrationRepository) Touch(id string, usedAt time.Time) error {
	return r.db.Model(&models.PlatformIntegration{}).
		Where("id = ?", id).
		Update("last_used_at", usedAt).Error
}

// Disconnect flips the integration to disconnected with a user-facing
// remediation message. Only token-class failures end up here.
func (r *IntegrationRepository) Disconnect(id, message string) error {
	return r.db.Model(&models.PlatformIntegration{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.IntegrationDisconnected,
			"error_message": message,
		}).Error
}

func (r *IntegrationRepository) ListByUser(userID string) ([]models.PlatformIntegration, error) {
	var integrations []models.PlatformIntegration
	if err := r.db.Where("user_id = ?", userID).Order("platform").Find(&integrations).Error; err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	return integrations, nil
}
