package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Publish record statuses
const (
	PublishStatusPublished = "published"
	PublishStatusPending   = "pending"
)

// PlatformResult mirrors one platform attempt inside the record metadata.
type PlatformResult struct {
	Platform  string `json:"platform"`
	Success   bool   `json:"success"`
	URL       string `json:"url,omitempty"`
	PostID    string `json:"post_id,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

type PublishMetadata struct {
	Results   []PlatformResult `json:"results,omitempty"`
	SEOSchema *SEOSchema       `json:"seo_schema,omitempty"`
}

// PublishedRecord is the audit row for one fan-out: written once per
// approve(→published)/publish action, never updated afterwards.
type PublishedRecord struct {
	ID           string                              `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string                              `gorm:"type:uuid;not null;index" json:"user_id"`
	ContentID    string                              `gorm:"type:uuid;not null;index" json:"content_id"`
	Platform     string                              `gorm:"size:50" json:"platform"`
	URL          *string                             `json:"url"`
	PostID       string                              `gorm:"size:255" json:"post_id"`
	Status       string                              `gorm:"size:20;default:'pending'" json:"status"`
	ErrorMessage string                              `gorm:"type:text" json:"error_message"`
	Metadata     datatypes.JSONType[PublishMetadata] `gorm:"type:jsonb" json:"metadata"`
	PublishedAt  time.Time                           `json:"published_at"`
	CreatedAt    time.Time                           `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt    gorm.DeletedAt                      `gorm:"index" json:"-"`
}

func (PublishedRecord) TableName() string { return "published_content" }
