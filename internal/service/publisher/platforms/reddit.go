package platforms

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/brandbeam/brandbeam/internal/models"
	"github.com/brandbeam/brandbeam/internal/service/publisher"
	"github.com/brandbeam/brandbeam/pkg/util"
)

const (
	redditAuthURL   = "https://www.reddit.com/api/v1/access_token"
	redditAPIURL    = "https://oauth.reddit.com"
	redditUserAgent = "brandbeam/0.1"
)

// RedditPublisher submits a self post to the configured subreddit. Expired
// tokens are refreshed once through the stored script-app credentials.
type RedditPublisher struct {
	logger *zap.Logger
	client *http.Client
}

type redditSubmitResponse struct {
	JSON struct {
		Errors [][]interface{} `json:"errors"`
		Data   struct {
			URL  string `json:"url"`
			Name string `json:"name"`
		} `json:"data"`
	} `json:"json"`
}

func NewRedditPublisher(logger *zap.Logger) publisher.Publisher {
	return &RedditPublisher{logger: logger, client: newHTTPClient()}
}

func (p *RedditPublisher) Name() string { return publisher.PlatformReddit }

func (p *RedditPublisher) Validate(integration *models.PlatformIntegration) error {
	if integration.AccessToken == "" && (integration.Setting("client_id") == "" || integration.Setting("client_secret") == "") {
		return publisher.NewError(publisher.CodeTokenInvalid, "reddit integration has neither token nor app credentials")
	}
	if integration.Setting("subreddit") == "" {
		return publisher.NewError(publisher.CodeUnavailable, "reddit integration missing required setting: subreddit")
	}
	return nil
}

func (p *RedditPublisher) Publish(ctx context.Context, integration *models.PlatformIntegration, req publisher.Request) (*publisher.Result, error) {
	token := integration.AccessToken
	if token == "" || tokenExpired(integration) {
		refreshed, err := p.refreshToken(ctx, integration)
		if err != nil {
			return nil, err
		}
		token = refreshed
	}

	form := url.Values{}
	form.Set("sr", integration.Setting("subreddit"))
	form.Set("kind", "self")
	form.Set("title", util.Truncate(req.Title, 300))
	form.Set("text", req.Body)
	form.Set("api_type", "json")

	headers := bearer(token)
	headers["User-Agent"] = redditUserAgent

	var resp redditSubmitResponse
	if err := doForm(ctx, p.client, redditAPIURL+"/api/submit", headers, form, &resp); err != nil {
		return nil, err
	}

	if len(resp.JSON.Errors) > 0 {
		return nil, publisher.NewError(publisher.CodeRejected, "reddit rejected submission: %v", resp.JSON.Errors[0])
	}

	p.logger.Info("Reddit post submitted",
		zap.String("subreddit", integration.Setting("subreddit")),
		zap.String("name", resp.JSON.Data.Name))

	return &publisher.Result{
		URL:    resp.JSON.Data.URL,
		PostID: resp.JSON.Data.Name,
	}, nil
}

// refreshToken obtains a fresh token via the client-credentials flow using
// the stored script-app id/secret.
func (p *RedditPublisher) refreshToken(ctx context.Context, integration *models.PlatformIntegration) (string, error) {
	clientID := integration.Setting("client_id")
	clientSecret := integration.Setting("client_secret")
	if clientID == "" || clientSecret == "" {
		return "", publisher.NewError(publisher.CodeTokenExpired, "reddit token expired and no app credentials stored")
	}

	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     redditAuthURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	tok, err := conf.Token(ctx)
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "401") {
			return "", publisher.NewError(publisher.CodeTokenInvalid, "reddit app credentials rejected: %v", err)
		}
		return "", publisher.NewError(publisher.CodeUnavailable, "reddit token refresh failed: %v", err)
	}

	p.logger.Info("Reddit token refreshed", zap.String("integration_id", integration.ID))
	return tok.AccessToken, nil
}

func tokenExpired(integration *models.PlatformIntegration) bool {
	return integration.TokenExpiresAt != nil && integration.TokenExpiresAt.Before(time.Now())
}
