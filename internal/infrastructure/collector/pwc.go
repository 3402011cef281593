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

	"TrendDigest/internal/config"
	"TrendDigest/internal/domain"
	"TrendDigest/internal/ports"
)

const defaultPwcAPI = "https://paperswithcode.com/api/v1"

// PwcCollector fetches the latest papers from the Papers with Code API and
// attaches the best-starred repository for each when available.
type PwcCollector struct {
	client  *http.Client
	cfg     config.PwcConfig
	baseURL string
	logger  *slog.Logger
}

var _ ports.Collector = (*PwcCollector)(nil)

// NewPwcCollector wires an HTTP client; a nil client gets a 30s timeout.
func NewPwcCollector(client *http.Client, cfg config.PwcConfig, logger *slog.Logger) *PwcCollector {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &PwcCollector{client: client, cfg: cfg, baseURL: defaultPwcAPI, logger: logger}
}

// Name identifies the collector and its dedup bucket.
func (c *PwcCollector) Name() string {
	return "pwc"
}

type pwcPaper struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Abstract string   `json:"abstract"`
	Authors  []string `json:"authors"`
	URLAbs   string   `json:"url_abs"`
	URLPdf   string   `json:"url_pdf"`
	ArxivID  string   `json:"arxiv_id"`
	Published string  `json:"published"`
}

type pwcRepo struct {
	URL   string `json:"url"`
	Stars int    `json:"stars"`
}

// Collect fetches the newest papers ordered by publication date.
func (c *PwcCollector) Collect(ctx context.Context) ([]domain.Item, error) {
	url := fmt.Sprintf("%s/papers/?ordering=-published&items_per_page=%s",
		c.baseURL, strconv.Itoa(c.cfg.MaxResults))

	var payload struct {
		Results []pwcPaper `json:"results"`
	}
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("fetch papers: %w", err)
	}

	items := make([]domain.Item, 0, len(payload.Results))
	for _, paper := range payload.Results {
		title := strings.TrimSpace(paper.Title)
		if title == "" {
			continue
		}

		repoURL, stars := c.bestRepository(ctx, paper.ID)

		absURL := paper.URLAbs
		if absURL == "" {
			absURL = fmt.Sprintf("https://paperswithcode.com/paper/%s", paper.ID)
		}
		published := paper.Published
		if published == "" {
			published = time.Now().UTC().Format(time.RFC3339)
		}

		items = append(items, &domain.Paper{
			ID:        paper.ID,
			Name:      title,
			Abstract:  strings.TrimSpace(paper.Abstract),
			Authors:   paper.Authors,
			URL:       absURL,
			PDFURL:    paper.URLPdf,
			RepoURL:   repoURL,
			Stars:     stars,
			Published: published,
			Origin:    "pwc",
		})
	}

	if c.logger != nil {
		c.logger.Info("pwc collected", "papers", len(items))
	}

	return items, nil
}

// bestRepository picks the highest-starred linked repo; repo info is
// nice-to-have, so failures return empty.
func (c *PwcCollector) bestRepository(ctx context.Context, paperID string) (string, int) {
	var payload struct {
		Results []pwcRepo `json:"results"`
	}
	url := fmt.Sprintf("%s/papers/%s/repositories/", c.baseURL, paperID)
	if err := c.getJSON(ctx, url, &payload); err != nil || len(payload.Results) == 0 {
		return "", 0
	}

	best := payload.Results[0]
	for _, repo := range payload.Results[1:] {
		if repo.Stars > best.Stars {
			best = repo
		}
	}
	return best.URL, best.Stars
}

func (c *PwcCollector) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pwc returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
