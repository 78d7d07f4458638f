package platforms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/brandbeam/brandbeam/internal/models"
	"github.com/brandbeam/brandbeam/internal/service/publisher"
)

const graphAPIURL = "https://graph.facebook.com/v19.0"

// FacebookPublisher posts to the connected page feed via the Graph API.
type FacebookPublisher struct {
	logger *zap.Logger
	client *http.Client
}

type graphError struct {
	Error struct {
		Message      string `json:"message"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
	} `json:"error"`
}

type facebookFeedResponse struct {
	ID string `json:"id"`
}

func NewFacebookPublisher(logger *zap.Logger) publisher.Publisher {
	return &FacebookPublisher{logger: logger, client: newHTTPClient()}
}

func (p *FacebookPublisher) Name() string { return publisher.PlatformFacebook }

func (p *FacebookPublisher) Validate(integration *models.PlatformIntegration) error {
	if integration.AccessToken == "" {
		return publisher.NewError(publisher.CodeTokenInvalid, "facebook integration has no access token")
	}
	if integration.Setting("page_id") == "" {
		return publisher.NewError(publisher.CodeUnavailable, "facebook integration missing required setting: page_id")
	}
	return nil
}

func (p *FacebookPublisher) Publish(ctx context.Context, integration *models.PlatformIntegration, req publisher.Request) (*publisher.Result, error) {
	pageID := integration.Setting("page_id")

	form := url.Values{}
	form.Set("message", req.Title+"\n\n"+req.Body)
	form.Set("access_token", integration.AccessToken)
	if req.ImageURL != "" {
		form.Set("link", req.ImageURL)
	}

	var resp facebookFeedResponse
	err := doForm(ctx, p.client, graphAPIURL+"/"+pageID+"/feed", nil, form, &resp)
	if err != nil {
		return nil, classifyGraphError(err)
	}

	p.logger.Info("Facebook page post created",
		zap.String("page_id", pageID),
		zap.String("post_id", resp.ID))

	return &publisher.Result{
		URL:    "https://www.facebook.com/" + resp.ID,
		PostID: resp.ID,
	}, nil
}

// classifyGraphError upgrades Graph API OAuth codes to token errors:
// code 190 (invalid/expired token, subcode 458 = app deauthorized) and
// code 200 (missing permission).
func classifyGraphError(err error) error {
	perr := publisher.AsError(err)

	var ge graphError
	if jerr := json.Unmarshal(extractJSONBody(perr.Message), &ge); jerr == nil {
		switch {
		case ge.Error.Code == 190 && ge.Error.ErrorSubcode == 458:
			return publisher.NewError(publisher.CodeTokenInvalid, "%s", ge.Error.Message)
		case ge.Error.Code == 190:
			return publisher.NewError(publisher.CodeTokenExpired, "%s", ge.Error.Message)
		case ge.Error.Code == 200:
			return publisher.NewError(publisher.CodeUnauthorized, "%s", ge.Error.Message)
		}
	}
	return perr
}

// extractJSONBody pulls the JSON object out of an "API returned status N:
// {...}" message so the Graph error payload can be decoded.
func extractJSONBody(msg string) []byte {
	for i := 0; i < len(msg); i++ {
		if msg[i] == '{' {
			return []byte(msg[i:])
		}
	}
	return nil
}
