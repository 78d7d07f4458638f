package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Integration connection statuses
const (
	IntegrationConnected    = "connected"
	IntegrationDisconnected = "disconnected"
)

// PlatformIntegration stores one credential set per (user, platform).
// Settings carries the platform-specific fields: owner/repo for GitHub,
// subreddit + client id/secret for Reddit, shop domain for Shopify, and so on.
type PlatformIntegration struct {
	ID             string             `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string             `gorm:"type:uuid;not null;uniqueIndex:idx_user_platform" json:"user_id"`
	Platform       string             `gorm:"size:50;not null;uniqueIndex:idx_user_platform" json:"platform"`
	AccessToken    string             `gorm:"type:text" json:"-"`
	RefreshToken   string             `gorm:"type:text" json:"-"`
	TokenExpiresAt *time.Time         `json:"token_expires_at"`
	Status         string             `gorm:"size:20;default:'connected'" json:"status"`
	LastUsedAt     *time.Time         `json:"last_used_at"`
	ErrorMessage   string             `gorm:"type:text" json:"error_message"`
	Settings       datatypes.JSONMap  `gorm:"type:jsonb" json:"settings"`
	CreatedAt      time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt     `gorm:"index" json:"-"`
}

func (PlatformIntegration) TableName() string { return "platform_integrations" }

// Setting returns a string-valued entry from the platform settings map.
func (p *PlatformIntegration) Setting(key string) string {
	if p.Settings == nil {
		return ""
	}
	if v, ok := p.Settings[key].(string); ok {
		return v
	}
	return ""
}
