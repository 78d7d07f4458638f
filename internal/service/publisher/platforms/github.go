package platforms

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/brandbeam/brandbeam/internal/models"
	"github.com/brandbeam/brandbeam/internal/service/publisher"
	"github.com/brandbeam/brandbeam/pkg/util"
)

// GitHubPublisher commits a markdown post into the configured repository
// through the contents API.
type GitHubPublisher struct {
	logger *zap.Logger
	client *http.Client
}

type githubContentRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch,omitempty"`
}

type githubContentResponse struct {
	Content struct {
		HTMLURL string `json:"html_url"`
		SHA     string `json:"sha"`
	} `json:"content"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

func NewGitHubPublisher(logger *zap.Logger) publisher.Publisher {
	return &GitHubPublisher{logger: logger, client: newHTTPClient()}
}

func (p *GitHubPublisher) Name() string { return publisher.PlatformGitHub }

func (p *GitHubPublisher) Validate(integration *models.PlatformIntegration) error {
	if integration.AccessToken == "" {
		return publisher.NewError(publisher.CodeTokenInvalid, "github integration has no access token")
	}
	for _, key := range []string{"owner", "repo"} {
		if integration.Setting(key) == "" {
			return publisher.NewError(publisher.CodeUnavailable, "github integration missing required setting: %s", key)
		}
	}
	return nil
}

func (p *GitHubPublisher) Publish(ctx context.Context, integration *models.PlatformIntegration, req publisher.Request) (*publisher.Result, error) {
	owner := integration.Setting("owner")
	repo := integration.Setting("repo")
	branch := integration.Setting("branch")

	now := time.Now().UTC()
	path := fmt.Sprintf("_posts/%s-%s.md", now.Format("2006-01-02"), util.GenerateSlug(req.Title))
	doc := fmt.Sprintf("# %s\n\n%s\n", req.Title, req.Body)

	payload := githubContentRequest{
		Message: fmt.Sprintf("Publish: %s", req.Title),
		Content: base64.StdEncoding.EncodeToString([]byte(doc)),
		Branch:  branch,
	}

	headers := bearer(integration.AccessToken)
	headers["Accept"] = "application/vnd.github+json"
	headers["X-GitHub-Api-Version"] = "2022-11-28"

	apiURL := fmt.Sprintf("https://api.github.com/repos/%s/%s/contents/%s", owner, repo, path)

	var resp githubContentResponse
	if err := doJSON(ctx, p.client, http.MethodPut, apiURL, headers, payload, &resp); err != nil {
		return nil, err
	}

	p.logger.Info("GitHub post committed",
		zap.String("repo", owner+"/"+repo),
		zap.String("path", path),
		zap.String("commit", resp.Commit.SHA))

	return &publisher.Result{
		URL:    resp.Content.HTMLURL,
		PostID: resp.Commit.SHA,
	}, nil
}
