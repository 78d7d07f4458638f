package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ActionPlanStep struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Completed    bool       `json:"completed"`
	PublishedURL string     `json:"published_url,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

type ActionPlan struct {
	ID        string                                `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string                                `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string                                `gorm:"size:500" json:"title"`
	Steps     datatypes.JSONSlice[ActionPlanStep]   `gorm:"type:jsonb" json:"steps"`
	CreatedAt time.Time                             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time                             `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt                        `gorm:"index" json:"-"`
}

func (ActionPlan) TableName() string { return "action_plans" }

// Action plan task statuses
const (
	TaskPending = "pending"
	TaskDone    = "done"
	TaskFailed  = "failed"
)

// ActionPlanTask queues the step-completion side effect of a successful
// publish. The primary write commits first; a background worker drains
// these with bounded retries, so a failed update never fails the request.
type ActionPlanTask struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"type:uuid;not null;index" json:"user_id"`
	PlanID       string    `gorm:"type:uuid;not null" json:"plan_id"`
	StepID       string    `gorm:"size:255;not null" json:"step_id"`
	PublishedURL string    `gorm:"type:text" json:"published_url"`
	Status       string    `gorm:"size:20;default:'pending';index" json:"status"`
	Attempts     int       `gorm:"default:0" json:"attempts"`
	LastError    string    `gorm:"type:text" json:"last_error"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ActionPlanTask) TableName() string { return "action_plan_tasks" }
