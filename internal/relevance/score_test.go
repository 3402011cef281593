package relevance

import (
	"testing"

	"TrendDigest/internal/domain"
)

func TestScoreSqrtDampening(t *testing.T) {
	t.Parallel()

	cat := NewCategory("llm", 1.0, []string{"alpha", "beta", "gamma", "delta"})

	one, _ := Score("alpha only here", []Category{cat})
	four, _ := Score("alpha beta gamma delta", []Category{cat})

	if one != 1.0 {
		t.Fatalf("expected single-term score 1.0, got %v", one)
	}
	// sqrt(4) = 2, so four distinct terms count exactly double one term.
	if four != 2.0 {
		t.Fatalf("expected four-term score 2.0, got %v", four)
	}
}

func TestScoreDistinctTermsNotOccurrences(t *testing.T) {
	t.Parallel()

	cat := NewCategory("llm", 1.0, []string{"transformer"})

	once, _ := Score("transformer", []Category{cat})
	many, _ := Score("transformer transformer transformer", []Category{cat})

	if once != many {
		t.Fatalf("repeated occurrences changed the score: %v vs %v", once, many)
	}
}

func TestScoreWordBoundaries(t *testing.T) {
	t.Parallel()

	cat := NewCategory("llm", 1.0, []string{"rag"})

	if score, _ := Score("storage systems", []Category{cat}); score != 0 {
		t.Fatalf("substring matched across word boundary, score %v", score)
	}
	if score, _ := Score("A RAG pipeline", []Category{cat}); score != 1.0 {
		t.Fatalf("case-insensitive whole word did not match, score %v", score)
	}
}

func TestScoreMultipleCategories(t *testing.T) {
	t.Parallel()

	categories := []Category{
		NewCategory("llm", 2.0, []string{"transformer", "language model"}),
		NewCategory("agents", 1.5, []string{"agent"}),
		NewCategory("audio", 1.0, []string{"speech"}),
	}

	score, matched := Score("A New Transformer Architecture", categories)
	if score != 2.0 {
		t.Fatalf("expected score 2.0, got %v", score)
	}
	if len(matched) != 1 || matched[0] != "llm" {
		t.Fatalf("expected matched [llm], got %v", matched)
	}

	score, matched = Score("an agent built on a transformer language model", categories)
	// sqrt(2)*2.0 + sqrt(1)*1.5 = 2.83 + 1.5 rounded to two decimals.
	if score != 4.33 {
		t.Fatalf("expected score 4.33, got %v", score)
	}
	if len(matched) != 2 || matched[0] != "llm" || matched[1] != "agents" {
		t.Fatalf("expected matched [llm agents], got %v", matched)
	}
}

func TestFilterThresholdAndOrdering(t *testing.T) {
	t.Parallel()

	categories := []Category{
		NewCategory("llm", 2.0, []string{"transformer"}),
		NewCategory("agents", 1.0, []string{"agent"}),
	}

	items := []domain.Item{
		&domain.Paper{ID: "1", Name: "An agent framework", Origin: "arxiv"},
		&domain.Paper{ID: "2", Name: "Transformer internals", Origin: "arxiv"},
		&domain.Paper{ID: "3", Name: "Unrelated botany study", Origin: "arxiv"},
	}

	kept := Filter(items, categories, 1.0, nil)
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept items, got %d", len(kept))
	}
	if kept[0].Title() != "Transformer internals" {
		t.Fatalf("expected highest score first, got %s", kept[0].Title())
	}
	if kept[0].Relevance().Score != 2.0 {
		t.Fatalf("score not written back, got %v", kept[0].Relevance().Score)
	}
	if got := kept[1].Relevance().Categories; len(got) != 1 || got[0] != "agents" {
		t.Fatalf("categories not written back, got %v", got)
	}
}

func TestFilterStableTies(t *testing.T) {
	t.Parallel()

	categories := []Category{NewCategory("llm", 1.0, []string{"transformer"})}

	items := []domain.Item{
		&domain.Paper{ID: "a", Name: "transformer one", Origin: "arxiv"},
		&domain.Paper{ID: "b", Name: "transformer two", Origin: "arxiv"},
	}

	kept := Filter(items, categories, 0.5, nil)
	if len(kept) != 2 {
		t.Fatalf("expected both items kept, got %d", len(kept))
	}
	if kept[0].Title() != "transformer one" || kept[1].Title() != "transformer two" {
		t.Fatalf("tie broke input order: %s, %s", kept[0].Title(), kept[1].Title())
	}
}

func TestFilterEmptyCategories(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		&domain.Paper{ID: "1", Name: "anything", Origin: "arxiv"},
	}

	if kept := Filter(items, nil, 1.0, nil); len(kept) != 0 {
		t.Fatalf("expected nothing to pass with no categories, got %d", len(kept))
	}
}
