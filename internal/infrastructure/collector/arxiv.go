package collector

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"TrendDigest/internal/config"
	"TrendDigest/internal/domain"
	"TrendDigest/internal/ports"
)

const defaultArxivAPI = "https://export.arxiv.org/api/query"

// ArxivCollector queries the arXiv Atom API for recent papers in the
// configured categories.
type ArxivCollector struct {
	client  *http.Client
	cfg     config.ArxivConfig
	baseURL string
	logger  *slog.Logger
	now     func() time.Time
}

var _ ports.Collector = (*ArxivCollector)(nil)

// NewArxivCollector wires an HTTP client; a nil client gets a 30s timeout.
func NewArxivCollector(client *http.Client, cfg config.ArxivConfig, logger *slog.Logger) *ArxivCollector {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ArxivCollector{
		client:  client,
		cfg:     cfg,
		baseURL: defaultArxivAPI,
		logger:  logger,
		now:     time.Now,
	}
}

// Name identifies the collector and its dedup bucket.
func (c *ArxivCollector) Name() string {
	return "arxiv"
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	Updated   string `xml:"updated"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Categories []struct {
		Term string `xml:"term,attr"`
	} `xml:"category"`
	Links []struct {
		Href  string `xml:"href,attr"`
		Title string `xml:"title,attr"`
	} `xml:"link"`
}

// Collect fetches papers submitted or revised within the lookback window.
func (c *ArxivCollector) Collect(ctx context.Context) ([]domain.Item, error) {
	cats := make([]string, 0, len(c.cfg.Categories))
	for _, cat := range c.cfg.Categories {
		cats = append(cats, "cat:"+cat)
	}
	query := "(" + strings.Join(cats, " OR ") + ")"

	params := url.Values{}
	params.Set("search_query", query)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(c.cfg.MaxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "TrendDigest/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query arxiv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned %s", resp.Status)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode atom feed: %w", err)
	}

	cutoff := c.now().UTC().AddDate(0, 0, -c.cfg.LookbackDays)
	items := make([]domain.Item, 0, len(feed.Entries))
	skipped := 0

	for _, entry := range feed.Entries {
		effective := effectiveDate(entry.Published, entry.Updated)
		if effective.Before(cutoff) {
			skipped++
			continue
		}

		authors := make([]string, 0, len(entry.Authors))
		for _, a := range entry.Authors {
			if len(authors) == 5 {
				break
			}
			authors = append(authors, a.Name)
		}

		categories := make([]string, 0, len(entry.Categories))
		for _, cat := range entry.Categories {
			categories = append(categories, cat.Term)
		}

		var pdfURL string
		for _, link := range entry.Links {
			if link.Title == "pdf" {
				pdfURL = link.Href
				break
			}
		}

		items = append(items, &domain.Paper{
			ID:         arxivID(entry.ID),
			Name:       collapseWhitespace(entry.Title),
			Abstract:   collapseWhitespace(entry.Summary),
			Authors:    authors,
			Categories: categories,
			URL:        entry.ID,
			PDFURL:     pdfURL,
			Published:  effective.Format(time.RFC3339),
			Origin:     "arxiv",
		})
	}

	if c.logger != nil {
		c.logger.Info("arxiv collected",
			"raw", len(feed.Entries), "skipped_by_date", skipped, "papers", len(items))
	}

	return items, nil
}

// effectiveDate prefers the later of published and updated so revisions of
// older papers still surface.
func effectiveDate(published, updated string) time.Time {
	pub, errP := time.Parse(time.RFC3339, published)
	upd, errU := time.Parse(time.RFC3339, updated)

	switch {
	case errP != nil && errU != nil:
		return time.Time{}
	case errP != nil:
		return upd.UTC()
	case errU != nil:
		return pub.UTC()
	case upd.After(pub):
		return upd.UTC()
	default:
		return pub.UTC()
	}
}

func arxivID(entryID string) string {
	if idx := strings.Index(entryID, "/abs/"); idx >= 0 {
		return entryID[idx+len("/abs/"):]
	}
	return entryID
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
