package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"gorm.io/gorm"

	"github.com/brandbeam/brandbeam/internal/config"
	"github.com/brandbeam/brandbeam/internal/models"
	"github.com/brandbeam/brandbeam/pkg/util"
)

const maxKeywordsPerCrawl = 50

// CrawlerService runs bounded same-host crawls that extract candidate
// keywords from page titles, meta tags, and headings into a crawl job row.
type CrawlerService struct {
	db       *gorm.DB
	logger   *zap.Logger
	client   *http.Client
	maxPages int
	maxDepth int
}

func NewCrawlerService(db *gorm.DB, cfg *config.CrawlerConfig, logger *zap.Logger) *CrawlerService {
	timeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil {
		timeout = 15 * time.Second
	}
	return &CrawlerService{
		db:       db,
		logger:   logger,
		client:   &http.Client{Timeout: timeout},
		maxPages: cfg.MaxPages,
		maxDepth: cfg.MaxDepth,
	}
}

// Run executes one crawl job to completion, updating the job row as it
// progresses. The page and depth bounds keep a single crawl cheap.
func (s *CrawlerService) Run(ctx context.Context, userID, jobID, domainURL string) (*models.CrawlJob, error) {
	root, err := url.Parse(domainURL)
	if err != nil || root.Host == "" {
		return nil, fmt.Errorf("invalid domain url: %q", domainURL)
	}
	if root.Scheme == "" {
		root.Scheme = "https"
	}

	job := &models.CrawlJob{
		ID:        jobID,
		UserID:    userID,
		DomainURL: root.String(),
		Status:    models.CrawlRunning,
	}
	if err := s.db.Save(job).Error; err != nil {
		return nil, fmt.Errorf("failed to create crawl job: %w", err)
	}

	keywords, pages, crawlErr := s.crawl(ctx, root)

	job.PagesCrawled = pages
	job.Keywords = keywords
	if crawlErr != nil && pages == 0 {
		job.Status = models.CrawlFailed
		job.Error = crawlErr.Error()
	} else {
		job.Status = models.CrawlCompleted
		if crawlErr != nil {
			job.Error = crawlErr.Error()
		}
	}

	if err := s.db.Save(job).Error; err != nil {
		return nil, fmt.Errorf("failed to finish crawl job: %w", err)
	}

	s.logger.Info("Crawl finished",
		zap.String("job_id", jobID),
		zap.String("domain", root.Host),
		zap.Int("pages", pages),
		zap.Int("keywords", len(keywords)))
	return job, nil
}

type crawlTarget struct {
	url   string
	depth int
}

// crawl walks same-host links breadth-first within the page and depth
// bounds and returns the deduplicated keywords found.
func (s *CrawlerService) crawl(ctx context.Context, root *url.URL) (models.StringArray, int, error) {
	queue := []crawlTarget{{url: root.String(), depth: 0}}
	visited := map[string]bool{}
	counts := map[string]int{}
	pages := 0
	var lastErr error

	for len(queue) > 0 && pages < s.maxPages {
		target := queue[0]
		queue = queue[1:]

		if visited[target.url] {
			continue
		}
		visited[target.url] = true

		doc, err := s.fetch(ctx, target.url)
		if err != nil {
			s.logger.Warn("Failed to fetch page", zap.String("url", target.url), zap.Error(err))
			lastErr = err
			continue
		}
		pages++

		for _, kw := range extractKeywords(doc) {
			counts[kw]++
		}

		if target.depth >= s.maxDepth {
			continue
		}
		for _, link := range extractLinks(doc, root) {
			if !visited[link] {
				queue = append(queue, crawlTarget{url: link, depth: target.depth + 1})
			}
		}
	}

	return rankKeywords(counts, maxKeywordsPerCrawl), pages, lastErr
}

func (s *CrawlerService) fetch(ctx context.Context, pageURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "brandbeam-crawler/0.1")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "text/html") {
		return nil, fmt.Errorf("unsupported content type %s", ct)
	}

	return html.Parse(resp.Body)
}

// extractKeywords pulls candidate phrases from the title, meta keywords and
// description, and h1-h3 headings.
func extractKeywords(doc *html.Node) []string {
	var out []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title", "h1", "h2", "h3":
				if text := nodeText(n); text != "" {
					out = append(out, util.NormalizeQuery(text))
				}
			case "meta":
				name := attr(n, "name")
				if name == "keywords" {
					for _, kw := range strings.Split(attr(n, "content"), ",") {
						if kw = util.NormalizeQuery(kw); kw != "" {
							out = append(out, kw)
						}
					}
				}
				if name == "description" {
					if text := util.NormalizeQuery(attr(n, "content")); text != "" {
						out = append(out, text)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

// extractLinks returns absolute same-host links found in the document.
func extractLinks(doc *html.Node, root *url.URL) []string {
	var links []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := attr(n, "href"); href != "" {
				if link := resolveLink(root, href); link != "" {
					links = append(links, link)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}

func resolveLink(root *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := root.ResolveReference(ref)
	if abs.Host != root.Host {
		return ""
	}
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// rankKeywords orders by frequency, most common first, capped at limit.
func rankKeywords(counts map[string]int, limit int) models.StringArray {
	keywords := make([]string, 0, len(counts))
	for kw := range counts {
		keywords = append(keywords, kw)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})
	if len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return models.StringArray(keywords)
}
