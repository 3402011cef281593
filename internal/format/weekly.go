package format

import (
	"fmt"
	"strings"
	"time"

	"TrendDigest/internal/weekly"
)

const weeklyDescriptionLimit = 200

// Weekly renders ranked aggregated items into the weekly summary document:
// an overall top-5 highlight block followed by per-source sections, with a
// residual "Other" group for items whose source could not be recovered.
func Weekly(items []weekly.AggregatedItem, lookbackDays int, now time.Time) (string, string) {
	end := now.UTC()
	start := end.AddDate(0, 0, -lookbackDays)
	startStr, endStr := start.Format("2006-01-02"), end.Format("2006-01-02")

	title := fmt.Sprintf("LLM Weekly Summary - %s to %s (%d highlights)", startStr, endStr, len(items))

	parts := []string{
		"# LLM Research & Tech Weekly Summary",
		fmt.Sprintf("**Period**: %s to %s | **Highlights**: %d\n", startStr, endStr, len(items)),
		"---\n",
	}

	if len(items) == 0 {
		parts = append(parts, "*No items found for this period.*\n")
		return title, strings.Join(parts, "\n")
	}

	bySource := map[string][]weekly.AggregatedItem{}
	var other []weekly.AggregatedItem
	for _, item := range items {
		switch item.Source {
		case "arxiv", "github", "pwc":
			bySource[item.Source] = append(bySource[item.Source], item)
		default:
			other = append(other, item)
		}
	}

	parts = append(parts, "## Top Highlights\n")
	top := items
	if len(top) > 5 {
		top = top[:5]
	}
	for i, item := range top {
		head := fmt.Sprintf("**%d. [%s](%s)** | Score: %.1f", i+1, item.Title, item.URL, item.WeightedScore())
		if item.Appearances > 1 {
			head += fmt.Sprintf(" (appeared %dx)", item.Appearances)
		}
		parts = append(parts, head)
		if len(item.Categories) > 0 {
			parts = append(parts, fmt.Sprintf("   Topics: %s", strings.Join(item.Categories, ", ")))
		}
		if item.Description != "" {
			parts = append(parts, fmt.Sprintf("   > %s", truncate(item.Description, weeklyDescriptionLimit)))
		}
		parts = append(parts, "")
	}
	parts = append(parts, "---\n")

	sections := []struct {
		source string
		header string
	}{
		{"arxiv", "arXiv Papers"},
		{"github", "GitHub Updates"},
		{"pwc", "Papers with Code"},
	}

	for _, sec := range sections {
		group := bySource[sec.source]
		if len(group) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("## %s (%d)\n", sec.header, len(group)))
		for i, item := range group {
			parts = append(parts, fmt.Sprintf("%d. [%s](%s) | Score: %.1f", i+1, item.Title, item.URL, item.WeightedScore()))
			if len(item.Categories) > 0 {
				parts = append(parts, fmt.Sprintf("   Topics: %s", strings.Join(item.Categories, ", ")))
			}
			if item.Description != "" {
				parts = append(parts, fmt.Sprintf("   > %s", truncate(item.Description, weeklyDescriptionLimit)))
			}
			parts = append(parts, "")
		}
		parts = append(parts, "---\n")
	}

	if len(other) > 0 {
		parts = append(parts, fmt.Sprintf("## Other (%d)\n", len(other)))
		for i, item := range other {
			parts = append(parts, fmt.Sprintf("%d. [%s](%s) | Score: %.1f", i+1, item.Title, item.URL, item.WeightedScore()), "")
		}
	}

	return title, strings.Join(parts, "\n")
}
