package platforms

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/brandbeam/brandbeam/internal/models"
	"github.com/brandbeam/brandbeam/internal/service/publisher"
)

const shopifyAPIVersion = "2024-01"

// ShopifyPublisher creates a blog article in the configured shop.
type ShopifyPublisher struct {
	logger *zap.Logger
	client *http.Client
}

type shopifyArticleRequest struct {
	Article shopifyArticle `json:"article"`
}

type shopifyArticle struct {
	Title    string `json:"title"`
	BodyHTML string `json:"body_html"`
	Tags     string `json:"tags,omitempty"`
}

type shopifyArticleResponse struct {
	Article struct {
		ID     int64  `json:"id"`
		Handle string `json:"handle"`
		BlogID int64  `json:"blog_id"`
	} `json:"article"`
}

func NewShopifyPublisher(logger *zap.Logger) publisher.Publisher {
	return &ShopifyPublisher{logger: logger, client: newHTTPClient()}
}

func (p *ShopifyPublisher) Name() string { return publisher.PlatformShopify }

func (p *ShopifyPublisher) Validate(integration *models.PlatformIntegration) error {
	if integration.AccessToken == "" {
		return publisher.NewError(publisher.CodeTokenInvalid, "shopify integration has no access token")
	}
	for _, key := range []string{"shop_domain", "blog_id"} {
		if integration.Setting(key) == "" {
			return publisher.NewError(publisher.CodeUnavailable, "shopify integration missing required setting: %s", key)
		}
	}
	return nil
}

func (p *ShopifyPublisher) Publish(ctx context.Context, integration *models.PlatformIntegration, req publisher.Request) (*publisher.Result, error) {
	shop := integration.Setting("shop_domain")
	blogID := integration.Setting("blog_id")

	payload := shopifyArticleRequest{
		Article: shopifyArticle{
			Title:    req.Title,
			BodyHTML: req.Body,
			Tags:     strings.Join(req.Tags, ", "),
		},
	}

	headers := map[string]string{"X-Shopify-Access-Token": integration.AccessToken}
	apiURL := fmt.Sprintf("https://%s/admin/api/%s/blogs/%s/articles.json", shop, shopifyAPIVersion, blogID)

	var resp shopifyArticleResponse
	if err := doJSON(ctx, p.client, http.MethodPost, apiURL, headers, payload, &resp); err != nil {
		return nil, err
	}

	p.logger.Info("Shopify article created",
		zap.String("shop", shop),
		zap.Int64("article_id", resp.Article.ID))

	return &publisher.Result{
		URL:    fmt.Sprintf("https://%s/blogs/%d/%s", shop, resp.Article.BlogID, resp.Article.Handle),
		PostID: strconv.FormatInt(resp.Article.ID, 10),
	}, nil
}
