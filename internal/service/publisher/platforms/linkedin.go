package platforms

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/brandbeam/brandbeam/internal/models"
	"github.com/brandbeam/brandbeam/internal/service/publisher"
	"github.com/brandbeam/brandbeam/pkg/util"
)

const linkedInAPIURL = "https://api.linkedin.com/v2"

// LinkedInPublisher shares a text post on behalf of the stored member URN.
type LinkedInPublisher struct {
	logger *zap.Logger
	client *http.Client
}

type linkedInShareRequest struct {
	Author          string                    `json:"author"`
	LifecycleState  string                    `json:"lifecycleState"`
	SpecificContent linkedInSpecificContent   `json:"specificContent"`
	Visibility      map[string]string         `json:"visibility"`
}

type linkedInSpecificContent struct {
	ShareContent linkedInShareContent `json:"com.linkedin.ugc.ShareContent"`
}

type linkedInShareContent struct {
	ShareCommentary    map[string]string `json:"shareCommentary"`
	ShareMediaCategory string            `json:"shareMediaCategory"`
}

type linkedInShareResponse struct {
	ID string `json:"id"`
}

func NewLinkedInPublisher(logger *zap.Logger) publisher.Publisher {
	return &LinkedInPublisher{logger: logger, client: newHTTPClient()}
}

func (p *LinkedInPublisher) Name() string { return publisher.PlatformLinkedIn }

func (p *LinkedInPublisher) Validate(integration *models.PlatformIntegration) error {
	if integration.AccessToken == "" {
		return publisher.NewError(publisher.CodeTokenInvalid, "linkedin integration has no access token")
	}
	if integration.Setting("author_urn") == "" {
		return publisher.NewError(publisher.CodeUnavailable, "linkedin integration missing required setting: author_urn")
	}
	return nil
}

func (p *LinkedInPublisher) Publish(ctx context.Context, integration *models.PlatformIntegration, req publisher.Request) (*publisher.Result, error) {
	// UGC share commentary caps out well below article length
	text := util.Truncate(req.Title+"\n\n"+req.Body, 2900)

	payload := linkedInShareRequest{
		Author:         integration.Setting("author_urn"),
		LifecycleState: "PUBLISHED",
		SpecificContent: linkedInSpecificContent{
			ShareContent: linkedInShareContent{
				ShareCommentary:    map[string]string{"text": text},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: map[string]string{"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC"},
	}

	headers := bearer(integration.AccessToken)
	headers["X-Restli-Protocol-Version"] = "2.0.0"

	var resp linkedInShareResponse
	if err := doJSON(ctx, p.client, http.MethodPost, linkedInAPIURL+"/ugcPosts", headers, payload, &resp); err != nil {
		return nil, err
	}

	p.logger.Info("LinkedIn share created", zap.String("post_id", resp.ID))

	return &publisher.Result{
		URL:    "https://www.linkedin.com/feed/update/" + resp.ID,
		PostID: resp.ID,
	}, nil
}
