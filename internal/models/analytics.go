package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Name      string    `gorm:"size:255" json:"name"`
	APIKey    string    `gorm:"uniqueIndex;not null;size:64" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string { return "users" }

type Keyword struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string    `gorm:"type:uuid;not null;index" json:"user_id"`
	ProjectID    *string   `gorm:"type:uuid;index" json:"project_id"`
	Text         string    `gorm:"size:500;not null" json:"text"`
	SearchVolume int       `json:"search_volume"`
	Difficulty   float64   `json:"difficulty"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Keyword) TableName() string { return "keywords" }

type Ranking struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"type:uuid;not null;index" json:"user_id"`
	KeywordID  *string   `gorm:"type:uuid;index" json:"keyword_id"`
	Query      string    `gorm:"size:500;not null" json:"query"`
	Position   int       `json:"position"`
	URL        string    `gorm:"size:1000" json:"url"`
	Source     string    `gorm:"size:50" json:"source"`
	RecordedAt time.Time `gorm:"index" json:"recorded_at"`
}

func (Ranking) TableName() string { return "rankings" }

type BrandAnalysisProject struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Domain    string         `gorm:"size:255" json:"domain"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (BrandAnalysisProject) TableName() string { return "brand_analysis_projects" }

// AIPlatformResponse is one AI engine's answer to a tracked query, flagged
// for whether the brand was mentioned or recommended in the response text.
type AIPlatformResponse struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           string    `gorm:"type:uuid;not null;index" json:"user_id"`
	ProjectID        *string   `gorm:"type:uuid;index" json:"project_id"`
	Engine           string    `gorm:"size:50;not null" json:"engine"`
	Query            string    `gorm:"size:500;not null" json:"query"`
	Response         string    `gorm:"type:text" json:"response"`
	BrandMentioned   bool      `json:"brand_mentioned"`
	BrandRecommended bool      `json:"brand_recommended"`
	CreatedAt        time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AIPlatformResponse) TableName() string { return "ai_platform_responses" }

type GSCKeyword struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Query       string    `gorm:"size:500;not null" json:"query"`
	Position    float64   `json:"position"`
	Clicks      int       `json:"clicks"`
	Impressions int       `json:"impressions"`
	CTR         float64   `json:"ctr"`
	RecordedAt  time.Time `gorm:"index" json:"recorded_at"`
}

func (GSCKeyword) TableName() string { return "gsc_keywords" }

type BrandVoiceProfile struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Tone        string    `gorm:"size:100" json:"tone"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (BrandVoiceProfile) TableName() string { return "brand_voice_profiles" }

// PerformanceSnapshot is a daily per-user rollup maintained by the snapshot
// updater and read by the trend endpoints.
type PerformanceSnapshot struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	UserID           string            `gorm:"type:uuid;not null;uniqueIndex:idx_user_date" json:"user_id"`
	Date             time.Time         `gorm:"not null;uniqueIndex:idx_user_date" json:"date"`
	DraftCount       int               `json:"draft_count"`
	ReviewCount      int               `json:"review_count"`
	ScheduledCount   int               `json:"scheduled_count"`
	PublishedCount   int               `json:"published_count"`
	PublishSuccesses int               `json:"publish_successes"`
	PublishFailures  int               `json:"publish_failures"`
	PlatformCounts   datatypes.JSONMap `gorm:"type:jsonb" json:"platform_counts"`
	CreatedAt        time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PerformanceSnapshot) TableName() string { return "performance_snapshots" }

// ContentPerformance records observed vs. predicted performance for one
// published piece, fed back from the dashboard.
type ContentPerformance struct {
	ID                  uint        `gorm:"primaryKey" json:"id"`
	UserID              string      `gorm:"type:uuid;not null;index" json:"user_id"`
	ContentID           string      `gorm:"type:uuid;not null;index" json:"content_id"`
	Platform            string      `gorm:"size:50" json:"platform"`
	Keywords            StringArray `gorm:"type:text[]" json:"keywords"`
	ActualEngagement    float64     `json:"actual_engagement"`
	ActualTraffic       int         `json:"actual_traffic"`
	ActualRanking       int         `json:"actual_ranking"`
	PredictedEngagement float64     `json:"predicted_engagement"`
	CreatedAt           time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (ContentPerformance) TableName() string { return "content_performance" }

// Crawl job statuses
const (
	CrawlPending   = "pending"
	CrawlRunning   = "running"
	CrawlCompleted = "completed"
	CrawlFailed    = "failed"
)

type CrawlJob struct {
	ID           string      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string      `gorm:"type:uuid;not null;index" json:"user_id"`
	DomainURL    string      `gorm:"size:1000;not null" json:"domain_url"`
	Status       string      `gorm:"size:20;default:'pending'" json:"status"`
	PagesCrawled int         `json:"pages_crawled"`
	Keywords     StringArray `gorm:"type:text[]" json:"keywords"`
	Error        string      `gorm:"type:text" json:"error"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CrawlJob) TableName() string { return "crawl_jobs" }
