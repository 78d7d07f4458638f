package platforms

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/brandbeam/brandbeam/internal/models"
	"github.com/brandbeam/brandbeam/internal/service/publisher"
)

const quoraAPIURL = "https://api.quora.com/v1"

// QuoraPublisher posts to the user's Quora space.
type QuoraPublisher struct {
	logger *zap.Logger
	client *http.Client
}

type quoraPostRequest struct {
	Space   string `json:"space,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type quoraPostResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func NewQuoraPublisher(logger *zap.Logger) publisher.Publisher {
	return &QuoraPublisher{logger: logger, client: newHTTPClient()}
}

func (p *QuoraPublisher) Name() string { return publisher.PlatformQuora }

func (p *QuoraPublisher) Validate(integration *models.PlatformIntegration) error {
	if integration.AccessToken == "" {
		return publisher.NewError(publisher.CodeTokenInvalid, "quora integration has no access token")
	}
	return nil
}

func (p *QuoraPublisher) Publish(ctx context.Context, integration *models.PlatformIntegration, req publisher.Request) (*publisher.Result, error) {
	payload := quoraPostRequest{
		Space:   integration.Setting("space"),
		Title:   req.Title,
		Content: req.Body,
	}

	var resp quoraPostResponse
	if err := doJSON(ctx, p.client, http.MethodPost, quoraAPIURL+"/posts", bearer(integration.AccessToken), payload, &resp); err != nil {
		return nil, err
	}

	p.logger.Info("Quora post created", zap.String("post_id", resp.ID))

	return &publisher.Result{URL: resp.URL, PostID: resp.ID}, nil
}
