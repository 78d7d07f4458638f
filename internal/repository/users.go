package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/brandbeam/brandbeam/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByAPIKey resolves the account behind a bearer key. (nil, nil) means the
// key is unknown.
func (r *UserRepository) GetByAPIKey(key string) (*models.User, error) {
	var user models.User
	err := r.db.Where("api_key = ?", key).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up api key: %w", err)
	}
	return &user, nil
}

// ListIDs returns every user id, for the snapshot loop.
func (r *UserRepository) ListIDs() ([]string, error) {
	var ids []string
	if err := r.db.Model(&models.User{}).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return ids, nil
}
