package format

import (
	"strings"
	"testing"
	"time"

	"TrendDigest/internal/domain"
	"TrendDigest/internal/weekly"
)

func TestScoreBadge(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score float64
		want  string
	}{
		{5.0, "HIGH"},
		{4.0, "HIGH"},
		{3.99, "MEDIUM"},
		{2.0, "MEDIUM"},
		{1.99, "LOW"},
		{0, "LOW"},
	}
	for _, c := range cases {
		if got := scoreBadge(c.score); got != c.want {
			t.Fatalf("scoreBadge(%v) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := truncate("short", 10); got != "short" {
		t.Fatalf("unexpected truncation: %s", got)
	}
	if got := truncate("a longer piece of text", 8); got != "a longer..." {
		t.Fatalf("unexpected truncation: %s", got)
	}
}

func TestJoinAuthors(t *testing.T) {
	t.Parallel()

	if got := joinAuthors([]string{"A", "B"}); got != "A, B" {
		t.Fatalf("unexpected authors: %s", got)
	}
	if got := joinAuthors([]string{"A", "B", "C", "D"}); got != "A, B, C et al." {
		t.Fatalf("unexpected authors: %s", got)
	}
}

func scoredPaper(id, name, abstract string, score float64, cats ...string) *domain.Paper {
	p := &domain.Paper{ID: id, Name: name, Abstract: abstract, URL: "https://arxiv.org/abs/" + id, Origin: "arxiv"}
	rel := p.Relevance()
	rel.Score = score
	rel.Categories = cats
	return p
}

func TestDailyStructure(t *testing.T) {
	t.Parallel()

	release := &domain.RepoRelease{
		RepoName: "org/engine",
		Name:     "org/engine",
		URL:      "https://github.com/org/engine/releases/tag/v2.0.0",
		Tag:      "v2.0.0",
		Body:     "Faster kernels.",
	}
	release.Relevance().Score = 4.5
	release.Relevance().Categories = []string{"llm", "inference"}

	paper := scoredPaper("2408.00001", "A New Transformer Architecture", "We propose a variant.", 2.0, "llm")

	date := time.Date(2026, 8, 17, 6, 0, 0, 0, time.UTC)
	title, body := Daily([]domain.Item{release}, []domain.Item{paper}, nil, date, "en")

	if title != "LLM Daily Update - 2026-08-17 (2 items)" {
		t.Fatalf("unexpected title: %s", title)
	}

	for _, want := range []string{
		"## GitHub Updates (1)",
		"### New Releases",
		"**1. [org/engine](https://github.com/org/engine/releases/tag/v2.0.0)** `v2.0.0`",
		"Relevance: HIGH (score: 4.50) | Topics: llm, inference",
		"> Faster kernels.",
		"## arXiv Papers (1)",
		"### 1. [A New Transformer Architecture](https://arxiv.org/abs/2408.00001)",
		"(score: 2.00)",
		"/weekly-summary",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}

	if strings.Contains(body, "## Papers with Code") {
		t.Fatal("empty section should be omitted")
	}
}

func TestDailyEmptyRun(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	title, body := Daily(nil, nil, nil, date, "en")

	if !strings.Contains(title, "(0 items)") {
		t.Fatalf("unexpected title: %s", title)
	}
	if !strings.Contains(body, "No new items matching the configured keywords") {
		t.Fatalf("missing empty-run note:\n%s", body)
	}
}

func TestDailyPrefersGeneratedSummary(t *testing.T) {
	t.Parallel()

	paper := scoredPaper("2408.00001", "Paper", "Raw abstract text.", 2.0, "llm")
	paper.Summaries().EN = "Generated English summary."
	paper.Summaries().CN = "生成的中文摘要。"

	_, en := Daily(nil, []domain.Item{paper}, nil, time.Now(), "en")
	if !strings.Contains(en, "Generated English summary.") {
		t.Fatal("English summary not used")
	}

	_, cn := Daily(nil, []domain.Item{paper}, nil, time.Now(), "cn")
	if !strings.Contains(cn, "生成的中文摘要。") {
		t.Fatal("Chinese summary not used")
	}
}

// The weekly aggregator reads the daily output back; the conventions the two
// packages share are exercised end to end here.
func TestDailyRoundTripsThroughAggregator(t *testing.T) {
	t.Parallel()

	trending := &domain.TrendingRepo{
		RepoName:    "org/agentkit",
		Description: "Toolkit for building agents.",
		URL:         "https://github.com/org/agentkit",
		Stars:       1200,
	}
	trending.Relevance().Score = 3.0
	trending.Relevance().Categories = []string{"agents"}

	paper := scoredPaper("2408.00001", "A New Transformer Architecture", "We propose a variant.", 2.0, "llm")

	date := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	_, body := Daily([]domain.Item{trending}, []domain.Item{paper}, nil, date, "en")

	items := weekly.ParseDocument(body)
	if len(items) != 2 {
		t.Fatalf("expected 2 recovered items, got %d:\n%s", len(items), body)
	}

	repo := items[0]
	if repo.Source != "github" || repo.URL != "https://github.com/org/agentkit" {
		t.Fatalf("unexpected repo item: %+v", repo)
	}
	if repo.Score != 3.0 {
		t.Fatalf("score not recovered, got %v", repo.Score)
	}
	if len(repo.Categories) != 1 || repo.Categories[0] != "agents" {
		t.Fatalf("topics not recovered, got %v", repo.Categories)
	}
	if repo.Description != "Toolkit for building agents." {
		t.Fatalf("description not recovered, got %q", repo.Description)
	}

	recovered := items[1]
	if recovered.Source != "arxiv" || recovered.Score != 2.0 {
		t.Fatalf("unexpected paper item: %+v", recovered)
	}
}
