package publisher

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/brandbeam/brandbeam/internal/models"
)

type fakeStore struct {
	integrations map[string]*models.PlatformIntegration
	touched      []string
	disconnected map[string]string
}

func newFakeStore(integrations ...*models.PlatformIntegration) *fakeStore {
	store := &fakeStore{
		integrations: make(map[string]*models.PlatformIntegration),
		disconnected: make(map[string]string),
	}
	for _, i := range integrations {
		store.integrations[i.Platform] = i
	}
	return store
}

func (f *fakeStore) GetConnected(userID, platform string) (*models.PlatformIntegration, error) {
	return f.integrations[platform], nil
}

func (f *fakeStore) Touch(id string, usedAt time.Time) error {
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeStore) Disconnect(id, message string) error {
	f.disconnected[id] = message
	return nil
}

type fakePublisher struct {
	name   string
	result *Result
	err    error
	calls  int
}

func (f *fakePublisher) Name() string { return f.name }

func (f *fakePublisher) Validate(integration *models.PlatformIntegration) error { return nil }

func (f *fakePublisher) Publish(ctx context.Context, integration *models.PlatformIntegration, req Request) (*Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func githubIntegration() *models.PlatformIntegration {
	return &models.PlatformIntegration{
		ID:          "int-1",
		UserID:      "u1",
		Platform:    PlatformGitHub,
		AccessToken: "token",
		Status:      models.IntegrationConnected,
	}
}

func testItem() *models.ContentItem {
	return &models.ContentItem{
		ID:             "c1",
		UserID:         "u1",
		Topic:          "Post",
		Body:           "Body",
		TargetPlatform: PlatformGitHub,
	}
}

func TestFanoutNoIntegrationSkipsCall(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{name: PlatformGitHub}
	m := NewManager(store, zap.NewNop())
	if err := m.Register(pub); err != nil {
		t.Fatal(err)
	}

	outcomes := m.Fanout(context.Background(), testItem(), []string{PlatformGitHub})
	if pub.calls != 0 {
		t.Fatalf("expected no publish call, got %d", pub.calls)
	}
	if len(outcomes) != 1 || outcomes[0].Success() {
		t.Fatalf("expected one failed outcome, got %+v", outcomes)
	}
	if outcomes[0].Err.Code != CodeUnavailable {
		t.Fatalf("expected unavailable code, got %s", outcomes[0].Err.Code)
	}
}

func TestFanoutSuccessTouchesIntegration(t *testing.T) {
	store := newFakeStore(githubIntegration())
	pub := &fakePublisher{name: PlatformGitHub, result: &Result{URL: "https://x/post", PostID: "id1"}}
	m := NewManager(store, zap.NewNop())
	if err := m.Register(pub); err != nil {
		t.Fatal(err)
	}

	outcomes := m.Fanout(context.Background(), testItem(), []string{PlatformGitHub})
	if !outcomes[0].Success() {
		t.Fatalf("expected success, got %+v", outcomes[0].Err)
	}
	if len(store.touched) != 1 || store.touched[0] != "int-1" {
		t.Fatalf("expected last_used_at bump, got %v", store.touched)
	}
	if len(store.disconnected) != 0 {
		t.Fatalf("expected no disconnect, got %v", store.disconnected)
	}
}

func TestFanoutTokenErrorDisconnects(t *testing.T) {
	store := newFakeStore(githubIntegration())
	pub := &fakePublisher{name: PlatformGitHub, err: NewError(CodeTokenExpired, "token has expired")}
	m := NewManager(store, zap.NewNop())
	if err := m.Register(pub); err != nil {
		t.Fatal(err)
	}

	outcomes := m.Fanout(context.Background(), testItem(), []string{PlatformGitHub})
	if outcomes[0].Success() {
		t.Fatal("expected failure")
	}
	if _, ok := store.disconnected["int-1"]; !ok {
		t.Fatal("expected integration disconnect on token error")
	}
}

func TestFanoutNonTokenErrorKeepsConnection(t *testing.T) {
	store := newFakeStore(githubIntegration())
	pub := &fakePublisher{name: PlatformGitHub, err: NewError(CodeRateLimited, "slow down")}
	m := NewManager(store, zap.NewNop())
	if err := m.Register(pub); err != nil {
		t.Fatal(err)
	}

	m.Fanout(context.Background(), testItem(), []string{PlatformGitHub})
	if len(store.disconnected) != 0 {
		t.Fatalf("expected no disconnect for rate limit, got %v", store.disconnected)
	}
}

func TestResolvePublishedURLPrimaryWins(t *testing.T) {
	outcomes := []Outcome{
		{Platform: PlatformReddit, URL: "https://reddit/post"},
		{Platform: PlatformGitHub, URL: "https://github/post"},
	}
	url := ResolvePublishedURL(PlatformGitHub, outcomes)
	if url == nil || *url != "https://github/post" {
		t.Fatalf("expected primary url, got %v", url)
	}
}

func TestResolvePublishedURLNoFallbackAfterPrimaryFailure(t *testing.T) {
	outcomes := []Outcome{
		{Platform: PlatformGitHub, Err: NewError(CodeUnavailable, "down")},
		{Platform: PlatformReddit, URL: "https://reddit/post"},
	}
	if url := ResolvePublishedURL(PlatformGitHub, outcomes); url != nil {
		t.Fatalf("expected nil url when primary failed, got %v", *url)
	}
}

func TestResolvePublishedURLSecondaryWhenPrimaryNotAttempted(t *testing.T) {
	outcomes := []Outcome{
		{Platform: PlatformReddit, URL: "https://reddit/post"},
	}
	url := ResolvePublishedURL(PlatformGitHub, outcomes)
	if url == nil || *url != "https://reddit/post" {
		t.Fatalf("expected secondary url, got %v", url)
	}
}

func TestFirstErrorMessagePrecedence(t *testing.T) {
	outcomes := []Outcome{
		{Platform: PlatformReddit, Err: NewError(CodeRejected, "reddit says no")},
		{Platform: PlatformMedium, Err: NewError(CodeRejected, "medium says no")},
		{Platform: PlatformGitHub, URL: "https://github/post"},
	}

	// Primary succeeded, so the fixed platform order picks reddit first.
	if msg := FirstErrorMessage(PlatformGitHub, outcomes); msg != "reddit says no" {
		t.Fatalf("unexpected message: %q", msg)
	}

	// A failed primary always wins.
	outcomes = append(outcomes, Outcome{Platform: PlatformShopify, Err: NewError(CodeRejected, "shop closed")})
	if msg := FirstErrorMessage(PlatformShopify, outcomes); msg != "shop closed" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestFirstErrorMessageEmptyWhenAllSucceed(t *testing.T) {
	outcomes := []Outcome{
		{Platform: PlatformGitHub, URL: "https://github/post"},
	}
	if msg := FirstErrorMessage(PlatformGitHub, outcomes); msg != "" {
		t.Fatalf("expected empty message, got %q", msg)
	}
}
