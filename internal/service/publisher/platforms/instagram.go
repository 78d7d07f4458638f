package platforms

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/brandbeam/brandbeam/internal/models"
	"github.com/brandbeam/brandbeam/internal/service/publisher"
	"github.com/brandbeam/brandbeam/pkg/util"
)

// InstagramPublisher publishes an image post through the Graph API's
// two-step container flow. An image URL is mandatory.
type InstagramPublisher struct {
	logger *zap.Logger
	client *http.Client
}

type instagramContainerResponse struct {
	ID string `json:"id"`
}

type instagramMediaResponse struct {
	ID        string `json:"id"`
	Permalink string `json:"permalink"`
}

func NewInstagramPublisher(logger *zap.Logger) publisher.Publisher {
	return &InstagramPublisher{logger: logger, client: newHTTPClient()}
}

func (p *InstagramPublisher) Name() string { return publisher.PlatformInstagram }

func (p *InstagramPublisher) Validate(integration *models.PlatformIntegration) error {
	if integration.AccessToken == "" {
		return publisher.NewError(publisher.CodeTokenInvalid, "instagram integration has no access token")
	}
	if integration.Setting("ig_user_id") == "" {
		return publisher.NewError(publisher.CodeUnavailable, "instagram integration missing required setting: ig_user_id")
	}
	return nil
}

func (p *InstagramPublisher) Publish(ctx context.Context, integration *models.PlatformIntegration, req publisher.Request) (*publisher.Result, error) {
	if req.ImageURL == "" {
		return nil, publisher.NewError(publisher.CodeRejected, "instagram requires an image")
	}

	igUser := integration.Setting("ig_user_id")

	// Step 1: create the media container
	form := url.Values{}
	form.Set("image_url", req.ImageURL)
	form.Set("caption", util.Truncate(req.Title+"\n\n"+req.Body, 2200))
	form.Set("access_token", integration.AccessToken)

	var container instagramContainerResponse
	if err := doForm(ctx, p.client, graphAPIURL+"/"+igUser+"/media", nil, form, &container); err != nil {
		return nil, classifyGraphError(err)
	}

	// Step 2: publish it
	form = url.Values{}
	form.Set("creation_id", container.ID)
	form.Set("access_token", integration.AccessToken)

	var media instagramMediaResponse
	if err := doForm(ctx, p.client, graphAPIURL+"/"+igUser+"/media_publish", nil, form, &media); err != nil {
		return nil, classifyGraphError(err)
	}

	// Permalink needs a follow-up read; tolerate failure and fall back to
	// the Graph URL for the media id so the post still resolves a URL.
	permalink := p.fetchPermalink(ctx, media.ID, integration.AccessToken)
	if permalink == "" {
		permalink = instagramMediaURL(media.ID)
	}

	p.logger.Info("Instagram media published",
		zap.String("ig_user_id", igUser),
		zap.String("media_id", media.ID))

	return &publisher.Result{URL: permalink, PostID: media.ID}, nil
}

// instagramMediaURL is the fallback post URL when the permalink read fails.
func instagramMediaURL(mediaID string) string {
	return graphAPIURL + "/" + mediaID
}

func (p *InstagramPublisher) fetchPermalink(ctx context.Context, mediaID, token string) string {
	var media instagramMediaResponse
	apiURL := graphAPIURL + "/" + mediaID + "?fields=permalink&access_token=" + url.QueryEscape(token)
	if err := doJSON(ctx, p.client, http.MethodGet, apiURL, nil, nil, &media); err != nil {
		p.logger.Warn("Failed to resolve instagram permalink", zap.Error(err))
		return ""
	}
	return media.Permalink
}
