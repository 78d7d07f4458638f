package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/brandbeam/brandbeam/internal/models"
	"github.com/brandbeam/brandbeam/internal/repository"
	"github.com/brandbeam/brandbeam/internal/service/publisher"
)

// Orchestrator action names.
const (
	ActionApprove        = "approve"
	ActionReject         = "reject"
	ActionDelete         = "delete"
	ActionDeleteMultiple = "deleteMultiple"
	ActionPublish        = "publish"
)

// Sentinel errors mapped to HTTP statuses at the handler layer.
var (
	ErrNotFound   = errors.New("content not found")
	ErrForbidden  = errors.New("content belongs to another user")
	ErrBadRequest = errors.New("invalid request")
)

// Fanout is the slice of the publisher manager the orchestrator calls.
type Fanout interface {
	Fanout(ctx context.Context, item *models.ContentItem, platforms []string) []publisher.Outcome
}

// TaskQueue enqueues the action-plan side effect of a successful publish.
type TaskQueue interface {
	Enqueue(task *models.ActionPlanTask) error
}

// ActionRequest is one orchestrator command against a user's content.
type ActionRequest struct {
	Action      string     `json:"action" binding:"required"`
	ContentID   string     `json:"content_id"`
	ContentIDs  []string   `json:"content_ids"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	AutoPublish bool       `json:"auto_publish"`
	Platforms   []string   `json:"platforms"`
	Reason      string     `json:"reason"`
}

// ActionResponse is the orchestrator result. Only the fields relevant to
// the executed action are populated.
type ActionResponse struct {
	Content *models.ContentItem     `json:"content,omitempty"`
	Record  *models.PublishedRecord `json:"record,omitempty"`
	Deleted []string                `json:"deleted,omitempty"`
	Failed  map[string]string       `json:"failed,omitempty"`
}

// Orchestrator owns the content workflow state machine and the publish
// fan-out that feeds it.
type Orchestrator struct {
	content repository.ContentRepository
	tasks   TaskQueue
	fanout  Fanout
	logger  *zap.Logger
}

func NewOrchestrator(content repository.ContentRepository, tasks TaskQueue, fanout Fanout, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		content: content,
		tasks:   tasks,
		fanout:  fanout,
		logger:  logger,
	}
}

// Execute dispatches one action for the given user.
func (o *Orchestrator) Execute(ctx context.Context, userID string, req ActionRequest) (*ActionResponse, error) {
	switch req.Action {
	case ActionApprove:
		return o.approve(ctx, userID, req)
	case ActionReject:
		return o.reject(userID, req)
	case ActionDelete:
		return o.deleteOne(userID, req.ContentID)
	case ActionDeleteMultiple:
		return o.deleteMany(userID, req.ContentIDs)
	case ActionPublish:
		return o.publish(ctx, userID, req)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrBadRequest, req.Action)
	}
}

func (o *Orchestrator) load(userID, contentID string) (*models.ContentItem, error) {
	if contentID == "" {
		return nil, fmt.Errorf("%w: content_id is required", ErrBadRequest)
	}
	item, err := o.content.Get(userID, contentID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// approve moves content out of review. A scheduled time wins over
// auto-publish; with neither, the item simply lands in review.
func (o *Orchestrator) approve(ctx context.Context, userID string, req ActionRequest) (*ActionResponse, error) {
	item, err := o.load(userID, req.ContentID)
	if err != nil {
		return nil, err
	}

	if req.ScheduledAt != nil {
		item.Status = models.StatusScheduled
		item.ScheduledAt = req.ScheduledAt
		if err := o.content.Save(item); err != nil {
			return nil, fmt.Errorf("failed to schedule content: %w", err)
		}
		o.logger.Info("Content scheduled",
			zap.String("content_id", item.ID),
			zap.Time("scheduled_at", *req.ScheduledAt))
		return &ActionResponse{Content: item}, nil
	}

	if req.AutoPublish {
		return o.runPublish(ctx, item, req.Platforms)
	}

	item.Status = models.StatusReview
	if err := o.content.Save(item); err != nil {
		return nil, fmt.Errorf("failed to approve content: %w", err)
	}
	return &ActionResponse{Content: item}, nil
}

// reject sends content back to draft with the moderation note recorded in
// its metadata.
func (o *Orchestrator) reject(userID string, req ActionRequest) (*ActionResponse, error) {
	item, err := o.load(userID, req.ContentID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	meta := item.Metadata.Data()
	meta.Moderation = &models.Moderation{
		RejectionReason: req.Reason,
		RejectedAt:      &now,
	}
	item.Metadata = datatypes.NewJSONType(meta)
	item.Status = models.StatusDraft

	if err := o.content.Save(item); err != nil {
		return nil, fmt.Errorf("failed to reject content: %w", err)
	}

	o.logger.Info("Content rejected",
		zap.String("content_id", item.ID),
		zap.String("reason", req.Reason))
	return &ActionResponse{Content: item}, nil
}

// deleteOne removes content idempotently. A zero-row delete is re-checked
// against all owners: a row that never existed (or is already gone) is a
// success, a row owned by someone else is forbidden.
func (o *Orchestrator) deleteOne(userID, contentID string) (*ActionResponse, error) {
	if contentID == "" {
		return nil, fmt.Errorf("%w: content_id is required", ErrBadRequest)
	}

	affected, err := o.content.Delete(userID, contentID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		exists, err := o.content.ExistsAnyOwner(contentID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrForbidden
		}
		return &ActionResponse{Deleted: []string{contentID}}, nil
	}

	if err := o.content.DeletePublished(userID, contentID); err != nil {
		o.logger.Warn("Failed to delete publish records",
			zap.String("content_id", contentID),
			zap.Error(err))
	}
	return &ActionResponse{Deleted: []string{contentID}}, nil
}

// deleteMany applies deleteOne per id and reports per-id outcomes instead
// of failing the batch.
func (o *Orchestrator) deleteMany(userID string, contentIDs []string) (*ActionResponse, error) {
	if len(contentIDs) == 0 {
		return nil, fmt.Errorf("%w: content_ids is required", ErrBadRequest)
	}

	resp := &ActionResponse{Failed: make(map[string]string)}
	for _, id := range contentIDs {
		if _, err := o.deleteOne(userID, id); err != nil {
			resp.Failed[id] = err.Error()
			continue
		}
		resp.Deleted = append(resp.Deleted, id)
	}
	if len(resp.Failed) == 0 {
		resp.Failed = nil
	}
	return resp, nil
}

func (o *Orchestrator) publish(ctx context.Context, userID string, req ActionRequest) (*ActionResponse, error) {
	item, err := o.load(userID, req.ContentID)
	if err != nil {
		return nil, err
	}
	return o.runPublish(ctx, item, req.Platforms)
}

// PublishItem runs the fan-out for an already-loaded item. The scheduler
// uses this directly for due content.
func (o *Orchestrator) PublishItem(ctx context.Context, item *models.ContentItem) (*ActionResponse, error) {
	return o.runPublish(ctx, item, nil)
}

// runPublish moves the content row to published, fans out to the primary
// platform plus any extras, resolves the canonical URL, and writes the
// audit record. The content save and the record insert are both required
// writes; the action-plan update is queued as a best-effort follow-up.
func (o *Orchestrator) runPublish(ctx context.Context, item *models.ContentItem, extras []string) (*ActionResponse, error) {
	platforms, err := targetPlatforms(item, extras)
	if err != nil {
		return nil, err
	}

	primary := item.TargetPlatform

	// The status transition precedes the fan-out and does not depend on its
	// outcome; a fan-out that resolves no URL leaves a pending audit record
	// behind as the failure signal.
	item.Status = models.StatusPublished
	item.ScheduledAt = nil
	if err := o.content.Save(item); err != nil {
		return nil, fmt.Errorf("failed to mark content published: %w", err)
	}

	outcomes := o.fanout.Fanout(ctx, item, platforms)
	url := publisher.ResolvePublishedURL(primary, outcomes)

	now := time.Now().UTC()
	meta := item.Metadata.Data()

	record := &models.PublishedRecord{
		UserID:       item.UserID,
		ContentID:    item.ID,
		Platform:     primary,
		URL:          url,
		PostID:       resolvePostID(primary, url, outcomes),
		Status:       models.PublishStatusPending,
		ErrorMessage: publisher.FirstErrorMessage(primary, outcomes),
		Metadata: datatypes.NewJSONType(models.PublishMetadata{
			Results:   publisher.ToResults(outcomes),
			SEOSchema: meta.SEOSchema,
		}),
		PublishedAt: now,
	}

	if url != nil {
		record.Status = models.PublishStatusPublished
	}

	if err := o.content.CreatePublished(record); err != nil {
		return nil, fmt.Errorf("failed to write publish record: %w", err)
	}

	if url != nil && meta.ActionPlan != nil {
		task := &models.ActionPlanTask{
			UserID:       item.UserID,
			PlanID:       meta.ActionPlan.PlanID,
			StepID:       meta.ActionPlan.StepID,
			PublishedURL: *url,
		}
		if err := o.tasks.Enqueue(task); err != nil {
			o.logger.Warn("Failed to enqueue action plan update",
				zap.String("content_id", item.ID),
				zap.String("plan_id", meta.ActionPlan.PlanID),
				zap.Error(err))
		}
	}

	o.logger.Info("Publish fan-out finished",
		zap.String("content_id", item.ID),
		zap.Strings("platforms", platforms),
		zap.Bool("published", url != nil))

	return &ActionResponse{Content: item, Record: record}, nil
}

// targetPlatforms builds the attempt list: primary first, then extras,
// deduplicated, every name validated.
func targetPlatforms(item *models.ContentItem, extras []string) ([]string, error) {
	if item.TargetPlatform == "" {
		return nil, fmt.Errorf("%w: content has no target platform", ErrBadRequest)
	}

	seen := map[string]bool{}
	platforms := make([]string, 0, 1+len(extras))
	for _, p := range append([]string{item.TargetPlatform}, extras...) {
		if seen[p] {
			continue
		}
		if !publisher.KnownPlatform(p) {
			return nil, fmt.Errorf("%w: unsupported platform %q", ErrBadRequest, p)
		}
		seen[p] = true
		platforms = append(platforms, p)
	}
	return platforms, nil
}

// resolvePostID returns the post id belonging to whichever outcome supplied
// the resolved URL.
func resolvePostID(primary string, url *string, outcomes []publisher.Outcome) string {
	if url == nil {
		return ""
	}
	if o, ok := publisher.FindOutcome(outcomes, primary); ok && o.Success() {
		return o.PostID
	}
	for _, o := range outcomes {
		if o.Success() && o.URL == *url {
			return o.PostID
		}
	}
	return ""
}
