package relevance

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"TrendDigest/internal/domain"
)

// Score matches text against the category list and returns the total score
// plus the matched category names in category order.
//
// Per category the contribution is sqrt(distinct matched terms) * weight; the
// square root gives diminishing returns so a single term-stuffed category
// cannot dominate the total. The result is rounded to two decimals.
func Score(text string, categories []Category) (float64, []string) {
	total := 0.0
	var matched []string

	for _, cat := range categories {
		hits := 0
		for _, pattern := range cat.patterns {
			if pattern.MatchString(text) {
				hits++
			}
		}
		if hits > 0 {
			total += math.Sqrt(float64(hits)) * cat.Weight
			matched = append(matched, cat.Name)
		}
	}

	return math.Round(total*100) / 100, matched
}

// Filter scores each item on its title plus text body, keeps those meeting
// minScore, writes the score and matched categories back onto the item, and
// returns the survivors sorted by score descending (stable, so ties keep
// their input order).
func Filter(items []domain.Item, categories []Category, minScore float64, logger *slog.Logger) []domain.Item {
	kept := make([]domain.Item, 0, len(items))

	for _, item := range items {
		text := item.Title()
		if body := item.Text(); body != "" {
			text = strings.Join([]string{text, body}, " ")
		}

		score, matched := Score(text, categories)
		if score < minScore {
			continue
		}

		rel := item.Relevance()
		rel.Score = score
		rel.Categories = matched
		kept = append(kept, item)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Relevance().Score > kept[j].Relevance().Score
	})

	if logger != nil {
		logger.Info("filtered items", "in", len(items), "out", len(kept), "min_score", minScore)
	}

	return kept
}
