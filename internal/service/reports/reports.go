package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/brandbeam/brandbeam/internal/config"
	"github.com/brandbeam/brandbeam/internal/models"
	"github.com/brandbeam/brandbeam/pkg/util"
)

// Supported report windows in days.
var windows = map[int]bool{7: true, 30: true, 90: true}

// NormalizeWindow clamps a requested window to a supported one, defaulting
// to 30 days.
func NormalizeWindow(days int) int {
	if windows[days] {
		return days
	}
	return 30
}

// Service aggregates the per-user reporting tables into display-ready
// payloads. All reads are scoped by user and date window; derived numbers
// are cached briefly in redis.
type Service struct {
	db       *gorm.DB
	redis    *redis.Client
	cfg      config.ReportsConfig
	client   *http.Client
	cacheTTL time.Duration
	shareTTL time.Duration
	logger   *zap.Logger
}

func NewService(db *gorm.DB, rdb *redis.Client, cfg config.ReportsConfig, logger *zap.Logger) *Service {
	cacheTTL, err := time.ParseDuration(cfg.CacheTTL)
	if err != nil {
		cacheTTL = 5 * time.Minute
	}
	shareTTL, err := time.ParseDuration(cfg.ShareTTL)
	if err != nil {
		shareTTL = 7 * 24 * time.Hour
	}
	timeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil {
		timeout = 30 * time.Second
	}

	return &Service{
		db:       db,
		redis:    rdb,
		cfg:      cfg,
		client:   &http.Client{Timeout: timeout},
		cacheTTL: cacheTTL,
		shareTTL: shareTTL,
		logger:   logger,
	}
}

// Overview is the top-of-dashboard summary: current-window totals with
// deltas against the prior equal-length window.
type Overview struct {
	Days             int              `json:"days"`
	ContentByStatus  map[string]int64 `json:"content_by_status"`
	PublishSuccesses int64            `json:"publish_successes"`
	PublishFailures  int64            `json:"publish_failures"`
	PublishDelta     float64          `json:"publish_delta_pct"`
	Keywords         int64            `json:"keywords"`
	KeywordsDelta    float64          `json:"keywords_delta_pct"`
	AIMentionRate    float64          `json:"ai_mention_rate"`
	AIMentionDelta   float64          `json:"ai_mention_delta_pct"`
	PlatformCounts   map[string]int64 `json:"platform_counts"`
	PublishTrend     []TrendPoint     `json:"publish_trend"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

func (s *Service) Overview(ctx context.Context, userID string, days int) (*Overview, error) {
	days = NormalizeWindow(days)

	cacheKey := fmt.Sprintf("reports:overview:%s:%d", userID, days)
	if cached, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
		var ov Overview
		if err := json.Unmarshal(cached, &ov); err == nil {
			return &ov, nil
		}
	}

	now := time.Now().UTC()
	curStart := now.AddDate(0, 0, -days)
	prevStart := now.AddDate(0, 0, -2*days)

	ov := &Overview{
		Days:            days,
		ContentByStatus: make(map[string]int64),
		PlatformCounts:  make(map[string]int64),
		GeneratedAt:     now,
	}

	if err := s.contentByStatus(userID, ov.ContentByStatus); err != nil {
		return nil, err
	}

	var records []models.PublishedRecord
	if err := s.db.Where("user_id = ? AND created_at >= ?", userID, prevStart).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load publish records: %w", err)
	}

	var curPublishes, prevPublishes float64
	var current []models.PublishedRecord
	for _, r := range records {
		inCurrent := !r.CreatedAt.Before(curStart)
		if inCurrent {
			current = append(current, r)
			curPublishes++
			ov.PlatformCounts[r.Platform]++
			if r.Status == models.PublishStatusPublished {
				ov.PublishSuccesses++
			} else {
				ov.PublishFailures++
			}
		} else {
			prevPublishes++
		}
	}
	ov.PublishDelta = PercentChange(curPublishes, prevPublishes)
	ov.PublishTrend = DailyTrend(current,
		func(r models.PublishedRecord) time.Time { return r.CreatedAt },
		days, now, Count[models.PublishedRecord])

	curKeywords, err := s.countSince(&models.Keyword{}, userID, curStart)
	if err != nil {
		return nil, err
	}
	prevKeywords, err := s.countBetween(&models.Keyword{}, userID, prevStart, curStart)
	if err != nil {
		return nil, err
	}
	ov.Keywords = curKeywords
	ov.KeywordsDelta = PercentChange(float64(curKeywords), float64(prevKeywords))

	curRate, err := s.mentionRate(userID, curStart, now)
	if err != nil {
		return nil, err
	}
	prevRate, err := s.mentionRate(userID, prevStart, curStart)
	if err != nil {
		return nil, err
	}
	ov.AIMentionRate = curRate
	ov.AIMentionDelta = PercentChange(curRate, prevRate)

	if payload, err := json.Marshal(ov); err == nil {
		if err := s.redis.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
			s.logger.Warn("Failed to cache overview", zap.Error(err))
		}
	}
	return ov, nil
}

func (s *Service) contentByStatus(userID string, out map[string]int64) error {
	for _, status := range []string{models.StatusDraft, models.StatusReview, models.StatusScheduled, models.StatusPublished} {
		out[status] = 0
	}

	rows, err := s.db.Model(&models.ContentItem{}).
		Select("status, count(*)").
		Where("user_id = ?", userID).
		Group("status").
		Rows()
	if err != nil {
		return fmt.Errorf("failed to load content stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return fmt.Errorf("failed to scan content stats: %w", err)
		}
		out[status] = count
	}
	return nil
}

func (s *Service) countSince(model interface{}, userID string, since time.Time) (int64, error) {
	var count int64
	err := s.db.Model(model).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}

func (s *Service) countBetween(model interface{}, userID string, from, to time.Time) (int64, error) {
	var count int64
	err := s.db.Model(model).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}

func (s *Service) mentionRate(userID string, from, to time.Time) (float64, error) {
	var total, mentioned int64
	base := s.db.Model(&models.AIPlatformResponse{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to)
	if err := base.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count ai responses: %w", err)
	}
	if total == 0 {
		return 0, nil
	}
	if err := base.Where("brand_mentioned = ?", true).Count(&mentioned).Error; err != nil {
		return 0, fmt.Errorf("failed to count ai mentions: %w", err)
	}
	return float64(mentioned) / float64(total) * 100, nil
}

// KeywordReport joins stored GSC rows into position and click trends.
type KeywordReport struct {
	Days          int                 `json:"days"`
	Keywords      []models.GSCKeyword `json:"keywords"`
	PositionTrend []TrendPoint        `json:"position_trend"`
	ClicksTrend   []TrendPoint        `json:"clicks_trend"`
}

func (s *Service) Keywords(ctx context.Context, userID string, days int) (*KeywordReport, error) {
	days = NormalizeWindow(days)
	now := time.Now().UTC()

	var rows []models.GSCKeyword
	err := s.db.Where("user_id = ? AND recorded_at >= ?", userID, now.AddDate(0, 0, -days)).
		Order("clicks DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load gsc keywords: %w", err)
	}

	at := func(k models.GSCKeyword) time.Time { return k.RecordedAt }
	return &KeywordReport{
		Days:          days,
		Keywords:      rows,
		PositionTrend: DailyTrend(rows, at, days, now, AverageOf(func(k models.GSCKeyword) float64 { return k.Position })),
		ClicksTrend:   DailyTrend(rows, at, days, now, AverageOf(func(k models.GSCKeyword) float64 { return float64(k.Clicks) })),
	}, nil
}

// EngineVisibility is one AI engine's mention/recommendation rates.
type EngineVisibility struct {
	Engine          string  `json:"engine"`
	Responses       int     `json:"responses"`
	MentionRate     float64 `json:"mention_rate"`
	RecommendedRate float64 `json:"recommended_rate"`
}

type AIVisibilityReport struct {
	Days         int                `json:"days"`
	Engines      []EngineVisibility `json:"engines"`
	MentionTrend []TrendPoint       `json:"mention_trend"`
}

func (s *Service) AIVisibility(ctx context.Context, userID string, days int) (*AIVisibilityReport, error) {
	days = NormalizeWindow(days)
	now := time.Now().UTC()

	var responses []models.AIPlatformResponse
	err := s.db.Where("user_id = ? AND created_at >= ?", userID, now.AddDate(0, 0, -days)).
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ai responses: %w", err)
	}

	type tally struct{ total, mentioned, recommended int }
	byEngine := make(map[string]*tally)
	for _, r := range responses {
		t := byEngine[r.Engine]
		if t == nil {
			t = &tally{}
			byEngine[r.Engine] = t
		}
		t.total++
		if r.BrandMentioned {
			t.mentioned++
		}
		if r.BrandRecommended {
			t.recommended++
		}
	}

	engines := make([]EngineVisibility, 0, len(byEngine))
	for engine, t := range byEngine {
		engines = append(engines, EngineVisibility{
			Engine:          engine,
			Responses:       t.total,
			MentionRate:     float64(t.mentioned) / float64(t.total) * 100,
			RecommendedRate: float64(t.recommended) / float64(t.total) * 100,
		})
	}

	mentionTrend := DailyTrend(responses,
		func(r models.AIPlatformResponse) time.Time { return r.CreatedAt },
		days, now,
		AverageOf(func(r models.AIPlatformResponse) float64 {
			if r.BrandMentioned {
				return 100
			}
			return 0
		}))

	return &AIVisibilityReport{Days: days, Engines: engines, MentionTrend: mentionTrend}, nil
}

// Gaps builds the Google-vs-AI gap table: best GSC position per normalized
// query joined with AI mentions for the same text.
func (s *Service) Gaps(ctx context.Context, userID string, days int) ([]GapRow, error) {
	days = NormalizeWindow(days)
	since := time.Now().UTC().AddDate(0, 0, -days)

	var gsc []models.GSCKeyword
	if err := s.db.Where("user_id = ? AND recorded_at >= ?", userID, since).Find(&gsc).Error; err != nil {
		return nil, fmt.Errorf("failed to load gsc keywords: %w", err)
	}
	var responses []models.AIPlatformResponse
	if err := s.db.Where("user_id = ? AND created_at >= ?", userID, since).Find(&responses).Error; err != nil {
		return nil, fmt.Errorf("failed to load ai responses: %w", err)
	}

	type entry struct {
		query       string
		position    float64
		hasPosition bool
		mentioned   bool
		engines     map[string]bool
	}
	byQuery := make(map[string]*entry)
	get := func(q string) *entry {
		key := util.NormalizeQuery(q)
		e := byQuery[key]
		if e == nil {
			e = &entry{query: key, engines: make(map[string]bool)}
			byQuery[key] = e
		}
		return e
	}

	for _, k := range gsc {
		e := get(k.Query)
		if !e.hasPosition || k.Position < e.position {
			e.position = k.Position
			e.hasPosition = true
		}
	}
	for _, r := range responses {
		e := get(r.Query)
		if r.BrandMentioned {
			e.mentioned = true
			e.engines[r.Engine] = true
		}
	}

	rows := make([]GapRow, 0, len(byQuery))
	for _, e := range byQuery {
		if e.query == "" {
			continue
		}
		rows = append(rows, GapRow{
			Query:       e.query,
			Position:    e.position,
			AIMentioned: e.mentioned,
			EngineCount: len(e.engines),
			Bucket:      ClassifyGap(e.position, e.mentioned),
		})
	}
	SortGaps(rows)
	return rows, nil
}

// Questions lists question-style queries seen in GSC and ranking data,
// deduplicated with the best position kept.
func (s *Service) Questions(ctx context.Context, userID string, days int) ([]QuestionEntry, error) {
	days = NormalizeWindow(days)
	since := time.Now().UTC().AddDate(0, 0, -days)

	var gsc []models.GSCKeyword
	if err := s.db.Where("user_id = ? AND recorded_at >= ?", userID, since).Find(&gsc).Error; err != nil {
		return nil, fmt.Errorf("failed to load gsc keywords: %w", err)
	}
	var rankings []models.Ranking
	if err := s.db.Where("user_id = ? AND recorded_at >= ?", userID, since).Find(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to load rankings: %w", err)
	}

	var entries []QuestionEntry
	for _, k := range gsc {
		if IsQuestion(k.Query) {
			entries = append(entries, QuestionEntry{Query: util.NormalizeQuery(k.Query), Position: k.Position, Source: "gsc"})
		}
	}
	for _, r := range rankings {
		if IsQuestion(r.Query) {
			entries = append(entries, QuestionEntry{Query: util.NormalizeQuery(r.Query), Position: float64(r.Position), Source: "serp"})
		}
	}
	return DedupeQuestions(entries), nil
}
