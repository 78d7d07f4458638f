package platforms

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/brandbeam/brandbeam/internal/models"
	"github.com/brandbeam/brandbeam/internal/service/publisher"
)

const mediumAPIURL = "https://api.medium.com/v1"

// MediumPublisher creates a markdown story through the Medium API.
type MediumPublisher struct {
	logger *zap.Logger
	client *http.Client
}

type mediumMeResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type mediumPostRequest struct {
	Title         string   `json:"title"`
	ContentFormat string   `json:"contentFormat"`
	Content       string   `json:"content"`
	Tags          []string `json:"tags,omitempty"`
	PublishStatus string   `json:"publishStatus"`
}

type mediumPostResponse struct {
	Data struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"data"`
}

func NewMediumPublisher(logger *zap.Logger) publisher.Publisher {
	return &MediumPublisher{logger: logger, client: newHTTPClient()}
}

func (p *MediumPublisher) Name() string { return publisher.PlatformMedium }

func (p *MediumPublisher) Validate(integration *models.PlatformIntegration) error {
	if integration.AccessToken == "" {
		return publisher.NewError(publisher.CodeTokenInvalid, "medium integration has no access token")
	}
	return nil
}

func (p *MediumPublisher) Publish(ctx context.Context, integration *models.PlatformIntegration, req publisher.Request) (*publisher.Result, error) {
	headers := bearer(integration.AccessToken)

	// Author id can be cached in settings; otherwise resolve it per call.
	authorID := integration.Setting("author_id")
	if authorID == "" {
		var me mediumMeResponse
		if err := doJSON(ctx, p.client, http.MethodGet, mediumAPIURL+"/me", headers, nil, &me); err != nil {
			return nil, err
		}
		authorID = me.Data.ID
	}

	// Medium caps tags at three
	tags := req.Tags
	if len(tags) > 3 {
		tags = tags[:3]
	}

	payload := mediumPostRequest{
		Title:         req.Title,
		ContentFormat: "markdown",
		Content:       req.Body,
		Tags:          tags,
		PublishStatus: "public",
	}

	var resp mediumPostResponse
	if err := doJSON(ctx, p.client, http.MethodPost, mediumAPIURL+"/users/"+authorID+"/posts", headers, payload, &resp); err != nil {
		return nil, err
	}

	p.logger.Info("Medium story published",
		zap.String("post_id", resp.Data.ID),
		zap.String("url", resp.Data.URL))

	return &publisher.Result{URL: resp.Data.URL, PostID: resp.Data.ID}, nil
}
