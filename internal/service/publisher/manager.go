package publisher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/brandbeam/brandbeam/internal/models"
)

// IntegrationStore is the slice of the integrations repository the fan-out
// needs: lookup, last-used bump, and token-failure disconnect.
type IntegrationStore interface {
	GetConnected(userID, platform string) (*models.PlatformIntegration, error)
	Touch(id string, usedAt time.Time) error
	Disconnect(id, message string) error
}

// Manager runs the per-platform publish fan-out. Attempts execute
// sequentially; one failed platform never aborts the rest.
type Manager struct {
	publishers   map[string]Publisher
	integrations IntegrationStore
	logger       *zap.Logger
}

func NewManager(integrations IntegrationStore, logger *zap.Logger) *Manager {
	return &Manager{
		publishers:   make(map[string]Publisher),
		integrations: integrations,
		logger:       logger,
	}
}

func (m *Manager) Register(p Publisher) error {
	name := p.Name()
	if _, exists := m.publishers[name]; exists {
		return fmt.Errorf("publisher for platform %s already registered", name)
	}
	m.publishers[name] = p
	m.logger.Info("Publisher registered", zap.String("platform", name))
	return nil
}

// Fanout attempts delivery of item to each requested platform in order and
// returns one Outcome per platform. Missing or disconnected integrations
// are recorded as failures without any external call.
func (m *Manager) Fanout(ctx context.Context, item *models.ContentItem, platforms []string) []Outcome {
	outcomes := make([]Outcome, 0, len(platforms))
	for _, platform := range platforms {
		outcomes = append(outcomes, m.attempt(ctx, item, platform))
	}
	return outcomes
}

// attempt runs the uniform single-platform contract: integration lookup,
// payload build, client call, bookkeeping.
func (m *Manager) attempt(ctx context.Context, item *models.ContentItem, platform string) Outcome {
	pub, ok := m.publishers[platform]
	if !ok {
		return Outcome{Platform: platform, Err: NewError(CodeUnavailable, "no publisher for platform %s", platform)}
	}

	integration, err := m.integrations.GetConnected(item.UserID, platform)
	if err != nil {
		m.logger.Error("Integration lookup failed",
			zap.String("platform", platform),
			zap.Error(err))
		return Outcome{Platform: platform, Err: NewError(CodeUnavailable, "integration lookup failed: %v", err)}
	}
	if integration == nil {
		return Outcome{Platform: platform, Err: NewError(CodeUnavailable, "no connected %s integration", platform)}
	}

	if err := pub.Validate(integration); err != nil {
		m.logger.Warn("Integration missing required settings, skipping",
			zap.String("platform", platform),
			zap.Error(err))
		return Outcome{Platform: platform, Err: AsError(err)}
	}

	result, err := pub.Publish(ctx, integration, BuildRequest(item, platform))
	if err != nil {
		perr := AsError(err)
		m.logger.Error("Publish attempt failed",
			zap.String("platform", platform),
			zap.String("content_id", item.ID),
			zap.String("code", string(perr.Code)),
			zap.Error(err))

		if perr.Code.IsTokenError() {
			msg := fmt.Sprintf("%s connection needs to be re-authorized: %s", platform, perr.Message)
			if derr := m.integrations.Disconnect(integration.ID, msg); derr != nil {
				m.logger.Error("Failed to disconnect integration", zap.Error(derr))
			}
		}
		return Outcome{Platform: platform, Err: perr}
	}

	if terr := m.integrations.Touch(integration.ID, time.Now().UTC()); terr != nil {
		m.logger.Warn("Failed to bump integration last_used_at", zap.Error(terr))
	}

	m.logger.Info("Publish attempt succeeded",
		zap.String("platform", platform),
		zap.String("content_id", item.ID),
		zap.String("url", result.URL))

	return Outcome{Platform: platform, URL: result.URL, PostID: result.PostID}
}

// ResolvePublishedURL applies the documented precedence rule: the primary
// platform's URL always wins, and if the primary platform was attempted and
// failed no secondary success is substituted. A secondary platform's URL is
// used only when the primary was not part of the attempt set.
func ResolvePublishedURL(primary string, outcomes []Outcome) *string {
	for _, o := range outcomes {
		if o.Platform != primary {
			continue
		}
		if o.Success() && o.URL != "" {
			u := o.URL
			return &u
		}
		return nil
	}
	for _, o := range outcomes {
		if o.Success() && o.URL != "" {
			u := o.URL
			return &u
		}
	}
	return nil
}

// FirstErrorMessage picks the single top-level error message for the
// published record: the primary platform's failure first, then the fixed
// platform precedence order.
func FirstErrorMessage(primary string, outcomes []Outcome) string {
	byPlatform := make(map[string]Outcome, len(outcomes))
	for _, o := range outcomes {
		byPlatform[o.Platform] = o
	}
	if o, ok := byPlatform[primary]; ok && !o.Success() {
		return o.Err.Message
	}
	for _, platform := range AllPlatforms {
		if platform == primary {
			continue
		}
		if o, ok := byPlatform[platform]; ok && !o.Success() {
			return o.Err.Message
		}
	}
	return ""
}

// ToResults converts outcomes into the metadata rows stored on the record.
func ToResults(outcomes []Outcome) []models.PlatformResult {
	results := make([]models.PlatformResult, 0, len(outcomes))
	for _, o := range outcomes {
		r := models.PlatformResult{
			Platform: o.Platform,
			Success:  o.Success(),
			URL:      o.URL,
			PostID:   o.PostID,
		}
		if o.Err != nil {
			r.Error = o.Err.Message
			r.ErrorCode = string(o.Err.Code)
		}
		results = append(results, r)
	}
	return results
}

// FindOutcome returns the outcome for a platform, if attempted.
func FindOutcome(outcomes []Outcome, platform string) (Outcome, bool) {
	for _, o := range outcomes {
		if o.Platform == platform {
			return o, true
		}
	}
	return Outcome{}, false
}
