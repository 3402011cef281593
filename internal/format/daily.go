// Package format renders digests to Markdown.
//
// The daily output is a stable contract: the weekly aggregator parses it back
// into structured items, relying on the section headers, the numbered
// [title](url) item lines, the lowercase "score:" token, the "Topics:" list,
// and the "> " blockquote description. Scores always render with %.2f and a
// dot decimal separator; changing any of these conventions breaks weekly
// aggregation.
package format

import (
	"fmt"
	"strings"
	"time"

	"TrendDigest/internal/domain"
)

const descriptionLimit = 300

func scoreBadge(score float64) string {
	switch {
	case score >= 4.0:
		return "HIGH"
	case score >= 2.0:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return strings.TrimRight(text[:max], " ") + "..."
}

// summaryFor returns the generated summary for lang if present, otherwise the
// item's own text truncated.
func summaryFor(item domain.Item, lang string) string {
	if s := item.Summaries().ForLang(lang); s != "" {
		return s
	}
	if text := item.Text(); text != "" {
		return truncate(text, descriptionLimit)
	}
	return ""
}

func joinAuthors(authors []string) string {
	if len(authors) > 3 {
		return strings.Join(authors[:3], ", ") + " et al."
	}
	return strings.Join(authors, ", ")
}

// ArxivSection renders scored arXiv papers.
func ArxivSection(papers []domain.Item, lang string) string {
	if len(papers) == 0 {
		return ""
	}

	lines := []string{fmt.Sprintf("## arXiv Papers (%d)\n", len(papers))}

	for i, item := range papers {
		rel := item.Relevance()
		cats := "general"
		if len(rel.Categories) > 0 {
			cats = strings.Join(rel.Categories, ", ")
		}

		lines = append(lines,
			fmt.Sprintf("### %d. [%s](%s)", i+1, item.Title(), item.Link()),
			fmt.Sprintf("**Relevance: %s** (score: %.2f) | **Topics**: %s", scoreBadge(rel.Score), rel.Score, cats),
		)

		if paper, ok := item.(*domain.Paper); ok {
			meta := fmt.Sprintf("**Authors**: %s", joinAuthors(paper.Authors))
			if len(paper.Categories) > 0 {
				end := len(paper.Categories)
				if end > 3 {
					end = 3
				}
				meta += fmt.Sprintf(" | **Categories**: %s", strings.Join(paper.Categories[:end], ", "))
			}
			lines = append(lines, meta)
		}

		if summary := summaryFor(item, lang); summary != "" {
			lines = append(lines, fmt.Sprintf("\n> %s\n", summary))
		}

		if paper, ok := item.(*domain.Paper); ok && paper.PDFURL != "" {
			lines = append(lines, fmt.Sprintf("[PDF](%s)\n", paper.PDFURL))
		}
	}

	return strings.Join(lines, "\n")
}

// GitHubSection renders releases first, then trending repos.
func GitHubSection(items []domain.Item, lang string) string {
	if len(items) == 0 {
		return ""
	}

	var releases, trending []domain.Item
	for _, item := range items {
		if _, ok := item.(*domain.TrendingRepo); ok {
			trending = append(trending, item)
		} else {
			releases = append(releases, item)
		}
	}

	lines := []string{fmt.Sprintf("## GitHub Updates (%d)\n", len(items))}

	if len(releases) > 0 {
		lines = append(lines, "### New Releases\n")
		for i, item := range releases {
			rel := item.Relevance()
			head := fmt.Sprintf("**%d. [%s](%s)**", i+1, item.Title(), item.Link())
			if release, ok := item.(*domain.RepoRelease); ok && release.Tag != "" {
				head += fmt.Sprintf(" `%s`", release.Tag)
			}
			lines = append(lines, head, relevanceLine(rel))
			lines = append(lines, summaryBlock(item, lang))
		}
	}

	if len(trending) > 0 {
		lines = append(lines, "### Trending Repos\n")
		for i, item := range trending {
			rel := item.Relevance()
			head := fmt.Sprintf("**%d. [%s](%s)**", i+1, item.Title(), item.Link())
			if repo, ok := item.(*domain.TrendingRepo); ok {
				stars := fmt.Sprintf("Stars: %d", repo.Stars)
				if repo.StarsToday > 0 {
					stars += fmt.Sprintf(" (+%d today)", repo.StarsToday)
				}
				head += " | " + stars
			}
			lines = append(lines, head, relevanceLine(rel))
			if repo, ok := item.(*domain.TrendingRepo); ok && repo.Language != "" {
				lines = append(lines, fmt.Sprintf("Language: %s", repo.Language))
			}
			lines = append(lines, summaryBlock(item, lang))
		}
	}

	return strings.Join(lines, "\n")
}

func relevanceLine(rel *domain.Relevance) string {
	line := fmt.Sprintf("Relevance: %s (score: %.2f)", scoreBadge(rel.Score), rel.Score)
	if len(rel.Categories) > 0 {
		line += fmt.Sprintf(" | Topics: %s", strings.Join(rel.Categories, ", "))
	}
	return line
}

func summaryBlock(item domain.Item, lang string) string {
	if summary := summaryFor(item, lang); summary != "" {
		return fmt.Sprintf("\n> %s\n", summary)
	}
	return ""
}

// PwcSection renders scored Papers with Code items.
func PwcSection(papers []domain.Item, lang string) string {
	if len(papers) == 0 {
		return ""
	}

	lines := []string{fmt.Sprintf("## Papers with Code (%d)\n", len(papers))}

	for i, item := range papers {
		rel := item.Relevance()
		head := fmt.Sprintf("**Relevance: %s** (score: %.2f)", scoreBadge(rel.Score), rel.Score)
		if len(rel.Categories) > 0 {
			head += fmt.Sprintf(" | **Topics**: %s", strings.Join(rel.Categories, ", "))
		}

		lines = append(lines,
			fmt.Sprintf("### %d. [%s](%s)", i+1, item.Title(), item.Link()),
			head,
		)

		paper, _ := item.(*domain.Paper)
		if paper != nil && len(paper.Authors) > 0 {
			lines = append(lines, fmt.Sprintf("**Authors**: %s", joinAuthors(paper.Authors)))
		}

		if summary := summaryFor(item, lang); summary != "" {
			lines = append(lines, fmt.Sprintf("\n> %s\n", summary))
		}

		if paper != nil {
			var links []string
			if paper.PDFURL != "" {
				links = append(links, fmt.Sprintf("[PDF](%s)", paper.PDFURL))
			}
			if paper.RepoURL != "" {
				link := fmt.Sprintf("[Code](%s)", paper.RepoURL)
				if paper.Stars > 0 {
					link += fmt.Sprintf(" (%d stars)", paper.Stars)
				}
				links = append(links, link)
			}
			if len(links) > 0 {
				lines = append(lines, strings.Join(links, " | ")+"\n")
			}
		}
	}

	return strings.Join(lines, "\n")
}

// Daily renders the full daily digest. Sections are ordered GitHub, arXiv,
// Papers with Code.
func Daily(githubItems, arxivPapers, pwcPapers []domain.Item, date time.Time, lang string) (string, string) {
	dateStr := date.UTC().Format("2006-01-02")
	total := len(githubItems) + len(arxivPapers) + len(pwcPapers)

	title := fmt.Sprintf("LLM Daily Update - %s (%d items)", dateStr, total)

	parts := []string{
		fmt.Sprintf("# LLM Research & Tech Daily Update - %s\n", dateStr),
		fmt.Sprintf("**%d** GitHub updates | **%d** arXiv papers | **%d** Papers with Code\n",
			len(githubItems), len(arxivPapers), len(pwcPapers)),
		"---\n",
	}

	for _, section := range []string{
		GitHubSection(githubItems, lang),
		ArxivSection(arxivPapers, lang),
		PwcSection(pwcPapers, lang),
	} {
		if section != "" {
			parts = append(parts, section, "---\n")
		}
	}

	if total == 0 {
		parts = append(parts, "*No new items matching the configured keywords were found today.*\n")
	}

	parts = append(parts,
		"\n---\n**Generate Weekly Summary**: Comment `/weekly-summary` on this issue "+
			"to trigger a weekly digest of the most important updates.\n")

	return title, strings.Join(parts, "\n")
}
