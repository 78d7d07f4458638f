package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Content workflow statuses
const (
	StatusDraft     = "draft"
	StatusReview    = "review"
	StatusScheduled = "scheduled"
	StatusPublished = "published"
)

// SEOSchema holds a serialized JSON-LD block attached to a content item.
// Platforms that reject embedded markup get it stripped before publishing.
type SEOSchema struct {
	Type string `json:"type,omitempty"`
	JSON string `json:"json,omitempty"`
}

// ActionPlanLink ties a content item to a step of an action plan. The step
// is marked completed after a successful publish.
type ActionPlanLink struct {
	PlanID string `json:"plan_id"`
	StepID string `json:"step_id"`
}

// Moderation records the outcome of a review rejection.
type Moderation struct {
	RejectionReason string     `json:"rejection_reason,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
}

// ContentMetadata is the typed replacement for the free-form metadata blob:
// each concern gets a named optional field, validated at the boundary.
type ContentMetadata struct {
	SEOSchema  *SEOSchema      `json:"seo_schema,omitempty"`
	Tags       []string        `json:"tags,omitempty"`
	ActionPlan *ActionPlanLink `json:"action_plan,omitempty"`
	Moderation *Moderation     `json:"moderation,omitempty"`
	ImageURL   string          `json:"image_url,omitempty"`
}

type ContentItem struct {
	ID             string                              `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string                              `gorm:"type:uuid;not null;index" json:"user_id"`
	Topic          string                              `gorm:"not null;size:500" json:"topic"`
	Body           string                              `gorm:"type:text" json:"body"`
	TargetPlatform string                              `gorm:"size:50" json:"target_platform"`
	Keywords       StringArray                         `gorm:"type:text[]" json:"keywords"`
	Status         string                              `gorm:"size:20;default:'draft';index" json:"status"`
	ScheduledAt    *time.Time                          `json:"scheduled_at"`
	Metadata       datatypes.JSONType[ContentMetadata] `gorm:"type:jsonb" json:"metadata"`
	CreatedAt      time.Time                           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time                           `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt                      `gorm:"index" json:"-"`
}

func (ContentItem) TableName() string { return "content_strategy" }
