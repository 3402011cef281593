package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"TrendDigest/internal/config"
	"TrendDigest/internal/domain"
	"TrendDigest/internal/ports"
)

const (
	defaultGitHubAPI   = "https://api.github.com"
	defaultTrendingURL = "https://github.com/trending"

	releaseCutoffDays = 2
	descriptionCap    = 500
	releaseBodyCap    = 1000
)

// GitHubCollector gathers tracked-repo releases via the REST API and trending
// repos by scraping the trending page.
type GitHubCollector struct {
	client      *http.Client
	cfg         config.GitHubSrcConfig
	token       string
	apiBase     string
	trendingURL string
	logger      *slog.Logger
	now         func() time.Time
}

var _ ports.Collector = (*GitHubCollector)(nil)

// NewGitHubCollector wires an HTTP client; a nil client gets a 15s timeout.
func NewGitHubCollector(client *http.Client, cfg config.GitHubSrcConfig, token string, logger *slog.Logger) *GitHubCollector {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &GitHubCollector{
		client:      client,
		cfg:         cfg,
		token:       token,
		apiBase:     defaultGitHubAPI,
		trendingURL: defaultTrendingURL,
		logger:      logger,
		now:         time.Now,
	}
}

// Name identifies the collector and its dedup bucket.
func (c *GitHubCollector) Name() string {
	return "github"
}

// Collect combines releases and trending repos. Per-repo and per-language
// failures are logged and skipped so one bad upstream never empties the run.
func (c *GitHubCollector) Collect(ctx context.Context) ([]domain.Item, error) {
	items := c.collectReleases(ctx)
	items = append(items, c.collectTrending(ctx)...)
	return items, nil
}

type releasePayload struct {
	Name        string `json:"name"`
	TagName     string `json:"tag_name"`
	Body        string `json:"body"`
	HTMLURL     string `json:"html_url"`
	PublishedAt string `json:"published_at"`
	CreatedAt   string `json:"created_at"`
}

type repoPayload struct {
	Description string `json:"description"`
	Stars       int    `json:"stargazers_count"`
	Language    string `json:"language"`
}

type tagPayload struct {
	Name string `json:"name"`
}

func (c *GitHubCollector) collectReleases(ctx context.Context) []domain.Item {
	cutoff := c.now().UTC().AddDate(0, 0, -releaseCutoffDays)
	var items []domain.Item

	for _, repo := range c.cfg.TrackedRepos {
		var releases []releasePayload
		status, err := c.getJSON(ctx, fmt.Sprintf("%s/repos/%s/releases?per_page=5", c.apiBase, repo), &releases)
		if err != nil {
			c.warn("fetch releases failed", "repo", repo, "error", err)
			continue
		}

		if status == http.StatusNotFound {
			// Some repos only tag; fall back to the latest tag plus repo
			// metadata.
			if item := c.latestTagItem(ctx, repo); item != nil {
				items = append(items, item)
			}
			continue
		}

		if status != http.StatusOK {
			c.warn("fetch releases failed", "repo", repo, "status", status)
			continue
		}

		for _, release := range releases {
			pubStr := release.PublishedAt
			if pubStr == "" {
				pubStr = release.CreatedAt
			}
			published, err := time.Parse(time.RFC3339, pubStr)
			if err != nil || published.Before(cutoff) {
				continue
			}

			name := release.Name
			if name == "" {
				name = release.TagName
			}
			url := release.HTMLURL
			if url == "" {
				url = "https://github.com/" + repo
			}

			items = append(items, &domain.RepoRelease{
				RepoName:  repo,
				Name:      fmt.Sprintf("%s - %s", repo, name),
				URL:       url,
				Tag:       release.TagName,
				Body:      capText(release.Body, releaseBodyCap),
				Published: published.UTC().Format(time.RFC3339),
			})
		}
	}

	c.debug("fetched releases", "count", len(items))
	return items
}

func (c *GitHubCollector) latestTagItem(ctx context.Context, repo string) domain.Item {
	var tags []tagPayload
	status, err := c.getJSON(ctx, fmt.Sprintf("%s/repos/%s/tags?per_page=3", c.apiBase, repo), &tags)
	if err != nil || status != http.StatusOK || len(tags) == 0 {
		return nil
	}

	var info repoPayload
	if status, err := c.getJSON(ctx, fmt.Sprintf("%s/repos/%s", c.apiBase, repo), &info); err != nil || status != http.StatusOK {
		info = repoPayload{}
	}

	tag := tags[0].Name
	return &domain.RepoRelease{
		RepoName:    repo,
		Name:        fmt.Sprintf("%s - %s", repo, tag),
		Description: capText(info.Description, descriptionCap),
		URL:         fmt.Sprintf("https://github.com/%s/releases/tag/%s", repo, tag),
		Tag:         tag,
		Stars:       info.Stars,
		Language:    info.Language,
	}
}

func (c *GitHubCollector) collectTrending(ctx context.Context) []domain.Item {
	var items []domain.Item

	for _, language := range c.cfg.Trending.Languages {
		url := fmt.Sprintf("%s/%s?since=daily", c.trendingURL, language)
		if c.cfg.Trending.SpokenLanguage != "" {
			url += "&spoken_language_code=" + c.cfg.Trending.SpokenLanguage
		}

		doc, err := c.fetchDocument(ctx, url)
		if err != nil {
			c.warn("fetch trending failed", "language", language, "error", err)
			continue
		}

		doc.Find("article.Box-row").Each(func(_ int, row *goquery.Selection) {
			href, _ := row.Find("h2 a").First().Attr("href")
			repoName := strings.Trim(strings.TrimSpace(href), "/")
			if repoName == "" {
				return
			}

			description := strings.TrimSpace(row.Find("p").First().Text())

			stars := parseStarCount(row.Find("a.Link--muted").First().Text())
			if stars < c.cfg.Trending.MinStars {
				return
			}

			starsToday := 0
			if today := row.Find("span.d-inline-block.float-sm-right").First().Text(); today != "" {
				starsToday = parseStarCount(strings.SplitN(strings.TrimSpace(today), " ", 2)[0])
			}

			lang := strings.TrimSpace(row.Find("span[itemprop='programmingLanguage']").First().Text())
			if lang == "" {
				lang = language
			}

			items = append(items, &domain.TrendingRepo{
				RepoName:    repoName,
				Description: description,
				URL:         "https://github.com/" + repoName,
				Stars:       stars,
				StarsToday:  starsToday,
				Language:    lang,
				Published:   c.now().UTC().Format(time.RFC3339),
			})
		})
	}

	c.debug("fetched trending repos", "count", len(items))
	return items
}

func (c *GitHubCollector) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "TrendDigest/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trending returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

// getJSON performs an authenticated GET and decodes JSON bodies for 2xx
// responses; the status is returned so callers can branch on 404 fallbacks.
func (c *GitHubCollector) getJSON(ctx context.Context, url string, v any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return resp.StatusCode, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}

	return resp.StatusCode, nil
}

func parseStarCount(text string) int {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0
	}
	return n
}

func capText(text string, max int) string {
	if len(text) > max {
		return text[:max]
	}
	return text
}

func (c *GitHubCollector) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func (c *GitHubCollector) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
