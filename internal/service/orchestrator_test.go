package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/brandbeam/brandbeam/internal/models"
	"github.com/brandbeam/brandbeam/internal/service"
	"github.com/brandbeam/brandbeam/internal/service/publisher"
)

// Mock content repository backed by maps.
type mockContentRepo struct {
	items   map[string]*models.ContentItem
	records []*models.PublishedRecord
}

func newMockContentRepo(items ...*models.ContentItem) *mockContentRepo {
	repo := &mockContentRepo{items: make(map[string]*models.ContentItem)}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (m *mockContentRepo) Get(userID, id string) (*models.ContentItem, error) {
	item, ok := m.items[id]
	if !ok || item.UserID != userID {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (m *mockContentRepo) ExistsAnyOwner(id string) (bool, error) {
	_, ok := m.items[id]
	return ok, nil
}

func (m *mockContentRepo) List(userID, status string) ([]models.ContentItem, error) {
	var out []models.ContentItem
	for _, item := range m.items {
		if item.UserID == userID && (status == "all" || item.Status == status) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *mockContentRepo) Stats(userID string) (map[string]int64, error) {
	stats := map[string]int64{}
	for _, item := range m.items {
		if item.UserID == userID {
			stats[item.Status]++
		}
	}
	return stats, nil
}

func (m *mockContentRepo) Create(item *models.ContentItem) error {
	m.items[item.ID] = item
	return nil
}

func (m *mockContentRepo) Save(item *models.ContentItem) error {
	copied := *item
	m.items[item.ID] = &copied
	return nil
}

func (m *mockContentRepo) Delete(userID, id string) (int64, error) {
	item, ok := m.items[id]
	if !ok || item.UserID != userID {
		return 0, nil
	}
	delete(m.items, id)
	return 1, nil
}

func (m *mockContentRepo) DeletePublished(userID, contentID string) error { return nil }

func (m *mockContentRepo) CreatePublished(rec *models.PublishedRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *mockContentRepo) ListDueScheduled(limit int) ([]models.ContentItem, error) {
	return nil, nil
}

type mockTaskQueue struct {
	enqueued []*models.ActionPlanTask
}

func (m *mockTaskQueue) Enqueue(task *models.ActionPlanTask) error {
	m.enqueued = append(m.enqueued, task)
	return nil
}

// mockFanout returns canned outcomes and records whether it was called.
type mockFanout struct {
	outcomes []publisher.Outcome
	called   bool
}

func (m *mockFanout) Fanout(ctx context.Context, item *models.ContentItem, platforms []string) []publisher.Outcome {
	m.called = true
	return m.outcomes
}

func newOrchestrator(repo *mockContentRepo, tasks *mockTaskQueue, fanout *mockFanout) *service.Orchestrator {
	return service.NewOrchestrator(repo, tasks, fanout, zap.NewNop())
}

func reviewItem(id, userID string) *models.ContentItem {
	return &models.ContentItem{
		ID:             id,
		UserID:         userID,
		Topic:          "Launch post",
		Body:           "Body text",
		TargetPlatform: "github",
		Status:         models.StatusReview,
	}
}

func TestApproveWithoutScheduleGoesToReview(t *testing.T) {
	item := reviewItem("c1", "u1")
	item.Status = models.StatusDraft
	repo := newMockContentRepo(item)
	fanout := &mockFanout{}
	orch := newOrchestrator(repo, &mockTaskQueue{}, fanout)

	resp, err := orch.Execute(context.Background(), "u1", service.ActionRequest{
		Action:    service.ActionApprove,
		ContentID: "c1",
	})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if resp.Content.Status != models.StatusReview {
		t.Fatalf("expected status review, got %s", resp.Content.Status)
	}
	if len(repo.records) != 0 {
		t.Fatalf("expected no publish record, got %d", len(repo.records))
	}
	if fanout.called {
		t.Fatal("expected no fan-out for plain approve")
	}
}

func TestApproveWithScheduledAt(t *testing.T) {
	repo := newMockContentRepo(reviewItem("c1", "u1"))
	orch := newOrchestrator(repo, &mockTaskQueue{}, &mockFanout{})

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	resp, err := orch.Execute(context.Background(), "u1", service.ActionRequest{
		Action:      service.ActionApprove,
		ContentID:   "c1",
		ScheduledAt: &at,
	})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if resp.Content.Status != models.StatusScheduled {
		t.Fatalf("expected status scheduled, got %s", resp.Content.Status)
	}
	if resp.Content.ScheduledAt == nil || !resp.Content.ScheduledAt.Equal(at) {
		t.Fatalf("expected scheduled_at %v, got %v", at, resp.Content.ScheduledAt)
	}
}

func TestRejectStoresModerationNote(t *testing.T) {
	repo := newMockContentRepo(reviewItem("c1", "u1"))
	orch := newOrchestrator(repo, &mockTaskQueue{}, &mockFanout{})

	resp, err := orch.Execute(context.Background(), "u1", service.ActionRequest{
		Action:    service.ActionReject,
		ContentID: "c1",
		Reason:    "tone is off-brand",
	})
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if resp.Content.Status != models.StatusDraft {
		t.Fatalf("expected status draft, got %s", resp.Content.Status)
	}
	mod := resp.Content.Metadata.Data().Moderation
	if mod == nil || mod.RejectionReason != "tone is off-brand" || mod.RejectedAt == nil {
		t.Fatalf("expected moderation note, got %+v", mod)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo := newMockContentRepo(reviewItem("c1", "u1"))
	orch := newOrchestrator(repo, &mockTaskQueue{}, &mockFanout{})

	if _, err := orch.Execute(context.Background(), "u1", service.ActionRequest{
		Action:    service.ActionDelete,
		ContentID: "c1",
	}); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	// Second delete of the same id must succeed, not 500.
	if _, err := orch.Execute(context.Background(), "u1", service.ActionRequest{
		Action:    service.ActionDelete,
		ContentID: "c1",
	}); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
}

func TestDeleteOtherOwnerIsForbidden(t *testing.T) {
	repo := newMockContentRepo(reviewItem("c1", "someone-else"))
	orch := newOrchestrator(repo, &mockTaskQueue{}, &mockFanout{})

	_, err := orch.Execute(context.Background(), "u1", service.ActionRequest{
		Action:    service.ActionDelete,
		ContentID: "c1",
	})
	if !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDeleteMultipleReportsPerID(t *testing.T) {
	repo := newMockContentRepo(reviewItem("c1", "u1"), reviewItem("c2", "other"))
	orch := newOrchestrator(repo, &mockTaskQueue{}, &mockFanout{})

	resp, err := orch.Execute(context.Background(), "u1", service.ActionRequest{
		Action:     service.ActionDeleteMultiple,
		ContentIDs: []string{"c1", "c2", "gone"},
	})
	if err != nil {
		t.Fatalf("deleteMultiple failed: %v", err)
	}
	if len(resp.Deleted) != 2 {
		t.Fatalf("expected 2 deleted (owned + already gone), got %v", resp.Deleted)
	}
	if _, ok := resp.Failed["c2"]; !ok {
		t.Fatalf("expected c2 to fail, got %v", resp.Failed)
	}
}

func TestUnknownActionIsBadRequest(t *testing.T) {
	orch := newOrchestrator(newMockContentRepo(), &mockTaskQueue{}, &mockFanout{})

	_, err := orch.Execute(context.Background(), "u1", service.ActionRequest{
		Action:    "promote",
		ContentID: "c1",
	})
	if !errors.Is(err, service.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestMissingContentIsNotFound(t *testing.T) {
	orch := newOrchestrator(newMockContentRepo(), &mockTaskQueue{}, &mockFanout{})

	_, err := orch.Execute(context.Background(), "u1", service.ActionRequest{
		Action:    service.ActionApprove,
		ContentID: "missing",
	})
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAutoPublishSuccess(t *testing.T) {
	repo := newMockContentRepo(reviewItem("c1", "u1"))
	fanout := &mockFanout{outcomes: []publisher.Outcome{
		{Platform: "github", URL: "https://example.github.io/post", PostID: "sha123"},
	}}
	orch := newOrchestrator(repo, &mockTaskQueue{}, fanout)

	resp, err := orch.Execute(context.Background(), "u1", service.ActionRequest{
		Action:      service.ActionApprove,
		ContentID:   "c1",
		AutoPublish: true,
	})
	if err != nil {
		t.Fatalf("auto-publish failed: %v", err)
	}
	if resp.Content.Status != models.StatusPublished {
		t.Fatalf("expected content published, got %s", resp.Content.Status)
	}
	rec := resp.Record
	if rec.Status != models.PublishStatusPublished {
		t.Fatalf("expected record published, got %s", rec.Status)
	}
	if rec.URL == nil || *rec.URL != "https://example.github.io/post" {
		t.Fatalf("unexpected record url: %v", rec.URL)
	}
	if rec.PostID != "sha123" {
		t.Fatalf("unexpected post id: %s", rec.PostID)
	}
	if stored := repo.items["c1"]; stored.Status != models.StatusPublished {
		t.Fatalf("stored content status not updated: %s", stored.Status)
	}
	if len(repo.records) != 1 {
		t.Fatalf("expected one publish record, got %d", len(repo.records))
	}
}

func TestPublishFailureKeepsPendingRecord(t *testing.T) {
	item := reviewItem("c1", "u1")
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	item.Status = models.StatusScheduled
	item.ScheduledAt = &at
	repo := newMockContentRepo(item)
	fanout := &mockFanout{outcomes: []publisher.Outcome{
		{Platform: "github", Err: publisher.NewError(publisher.CodeTokenExpired, "token has expired")},
	}}
	orch := newOrchestrator(repo, &mockTaskQueue{}, fanout)

	resp, err := orch.Execute(context.Background(), "u1", service.ActionRequest{
		Action:    service.ActionPublish,
		ContentID: "c1",
	})
	if err != nil {
		t.Fatalf("publish returned error: %v", err)
	}
	rec := resp.Record
	if rec.Status != models.PublishStatusPending {
		t.Fatalf("expected record pending, got %s", rec.Status)
	}
	if rec.URL != nil {
		t.Fatalf("expected null url, got %v", *rec.URL)
	}
	if rec.ErrorMessage != "token has expired" {
		t.Fatalf("unexpected error message: %q", rec.ErrorMessage)
	}
	// The content row still moves to published; the pending record is the
	// failure signal.
	stored := repo.items["c1"]
	if stored.Status != models.StatusPublished {
		t.Fatalf("expected content published despite failed fan-out, got %s", stored.Status)
	}
	if stored.ScheduledAt != nil {
		t.Fatalf("expected scheduled_at cleared, got %v", stored.ScheduledAt)
	}
	results := rec.Metadata.Data().Results
	if len(results) != 1 || results[0].ErrorCode != string(publisher.CodeTokenExpired) {
		t.Fatalf("unexpected per-platform results: %+v", results)
	}
}

func TestPublishEnqueuesActionPlanTask(t *testing.T) {
	item := reviewItem("c1", "u1")
	item.Metadata = datatypes.NewJSONType(models.ContentMetadata{
		ActionPlan: &models.ActionPlanLink{PlanID: "p1", StepID: "s2"},
	})
	repo := newMockContentRepo(item)
	tasks := &mockTaskQueue{}
	fanout := &mockFanout{outcomes: []publisher.Outcome{
		{Platform: "github", URL: "https://example.github.io/post", PostID: "sha123"},
	}}
	orch := newOrchestrator(repo, tasks, fanout)

	if _, err := orch.Execute(context.Background(), "u1", service.ActionRequest{
		Action:    service.ActionPublish,
		ContentID: "c1",
	}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if len(tasks.enqueued) != 1 {
		t.Fatalf("expected one enqueued task, got %d", len(tasks.enqueued))
	}
	task := tasks.enqueued[0]
	if task.PlanID != "p1" || task.StepID != "s2" || task.PublishedURL != "https://example.github.io/post" {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestPublishFailureSkipsActionPlanTask(t *testing.T) {
	item := reviewItem("c1", "u1")
	item.Metadata = datatypes.NewJSONType(models.ContentMetadata{
		ActionPlan: &models.ActionPlanLink{PlanID: "p1", StepID: "s2"},
	})
	repo := newMockContentRepo(item)
	tasks := &mockTaskQueue{}
	fanout := &mockFanout{outcomes: []publisher.Outcome{
		{Platform: "github", Err: publisher.NewError(publisher.CodeUnavailable, "service down")},
	}}
	orch := newOrchestrator(repo, tasks, fanout)

	if _, err := orch.Execute(context.Background(), "u1", service.ActionRequest{
		Action:    service.ActionPublish,
		ContentID: "c1",
	}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(tasks.enqueued) != 0 {
		t.Fatalf("expected no enqueued task on failed publish, got %d", len(tasks.enqueued))
	}
}

func TestPublishUnknownPlatformIsBadRequest(t *testing.T) {
	item := reviewItem("c1", "u1")
	item.TargetPlatform = "myspace"
	orch := newOrchestrator(newMockContentRepo(item), &mockTaskQueue{}, &mockFanout{})

	_, err := orch.Execute(context.Background(), "u1", service.ActionRequest{
		Action:    service.ActionPublish,
		ContentID: "c1",
	})
	if !errors.Is(err, service.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}
