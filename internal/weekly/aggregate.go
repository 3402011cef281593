// Package weekly rebuilds structured items from previously rendered daily
// digests and ranks them for the weekly summary.
//
// The only durable record of what a daily digest contained is its rendered
// Markdown, so the aggregator parses that text back into items. It depends on
// the exact conventions of the format package: section headers, numbered
// item links, a lowercase "score:" token, an optional "Topics:" list, and an
// optional blockquote description. Any change there is a breaking change
// here.
package weekly

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// AggregatedItem is an item recovered from rendered daily digests, merged
// across documents by URL.
type AggregatedItem struct {
	Title       string
	URL         string
	Source      string // "arxiv", "github", "pwc", or "unknown"
	Score       float64
	Categories  []string
	Description string
	Appearances int
}

// WeightedScore boosts the relevance score by repeated appearances across
// daily digests: +20% per extra day.
func (a AggregatedItem) WeightedScore() float64 {
	return a.Score * (1 + 0.2*float64(a.Appearances-1))
}

var (
	sectionPatterns = []struct {
		source  string
		pattern *regexp.Regexp
	}{
		{"arxiv", regexp.MustCompile(`(?i)^##\s+arXiv\s+Papers`)},
		{"github", regexp.MustCompile(`(?i)^##\s+GitHub\s+Updates`)},
		{"pwc", regexp.MustCompile(`(?i)^##\s+Papers\s+with\s+Code`)},
	}

	// ### N. [Title](URL)  or  **N. [Title](URL)
	itemPattern = regexp.MustCompile(`(?:###?\s*\d+\.\s*|\*\*\d+\.\s*)\[([^\]]+)\]\(([^)]+)\)`)

	// The formatter renders scores as %.2f with a dot separator, so a plain
	// digits-and-dot class is sufficient.
	scorePattern = regexp.MustCompile(`score:\s*([\d.]+)`)

	topicsPattern = regexp.MustCompile(`Topics?:\s*([^\n|]+)`)
	quotePattern  = regexp.MustCompile(`^>\s*(.+)`)
)

const (
	scoreLookahead = 5
	quoteLookahead = 8
)

// ParseDocument extracts items from one rendered daily digest. Documents with
// no recognizable items yield an empty slice; items outside any known section
// are kept with source "unknown".
func ParseDocument(body string) []AggregatedItem {
	var items []AggregatedItem
	currentSource := "unknown"

	lines := strings.Split(body, "\n")
	for i, raw := range lines {
		line := strings.TrimSpace(raw)

		for _, sec := range sectionPatterns {
			if sec.pattern.MatchString(line) {
				currentSource = sec.source
				break
			}
		}

		m := itemPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		item := AggregatedItem{
			Title:       m[1],
			URL:         m[2],
			Source:      currentSource,
			Appearances: 1,
		}

		end := i + scoreLookahead
		if end > len(lines) {
			end = len(lines)
		}
		context := strings.Join(lines[i:end], "\n")

		if sm := scorePattern.FindStringSubmatch(context); sm != nil {
			if score, err := strconv.ParseFloat(sm[1], 64); err == nil {
				item.Score = score
			}
		}

		if tm := topicsPattern.FindStringSubmatch(context); tm != nil {
			for _, cat := range strings.Split(tm[1], ",") {
				if cat = strings.TrimSpace(cat); cat != "" {
					item.Categories = append(item.Categories, cat)
				}
			}
		}

		quoteEnd := i + quoteLookahead
		if quoteEnd > len(lines) {
			quoteEnd = len(lines)
		}
		for j := i + 1; j < quoteEnd; j++ {
			if qm := quotePattern.FindStringSubmatch(lines[j]); qm != nil {
				item.Description = strings.TrimSpace(qm[1])
				break
			}
		}

		items = append(items, item)
	}

	return items
}

// Aggregate parses every document and merges items by URL, preserving
// first-seen order. A repeat occurrence bumps the appearance count, keeps the
// higher score, and unions matched categories in first-seen order.
func Aggregate(docs []string, logger *slog.Logger) []AggregatedItem {
	var order []string
	byURL := map[string]*AggregatedItem{}

	for _, doc := range docs {
		for _, item := range ParseDocument(doc) {
			existing, ok := byURL[item.URL]
			if !ok {
				copied := item
				byURL[item.URL] = &copied
				order = append(order, item.URL)
				continue
			}

			existing.Appearances++
			if item.Score > existing.Score {
				existing.Score = item.Score
			}

			known := make(map[string]struct{}, len(existing.Categories))
			for _, cat := range existing.Categories {
				known[cat] = struct{}{}
			}
			for _, cat := range item.Categories {
				if _, dup := known[cat]; !dup {
					existing.Categories = append(existing.Categories, cat)
					known[cat] = struct{}{}
				}
			}
		}
	}

	items := make([]AggregatedItem, 0, len(order))
	for _, url := range order {
		items = append(items, *byURL[url])
	}

	if logger != nil {
		logger.Info("aggregated weekly items", "documents", len(docs), "unique_items", len(items))
	}

	return items
}
