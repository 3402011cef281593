package llm

import (
	"strings"
	"testing"

	"TrendDigest/internal/domain"
)

func TestCleanJSONArray(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `[{"id": "a"}]`, `[{"id": "a"}]`},
		{"fenced", "```json\n[{\"id\": \"a\"}]\n```", `[{"id": "a"}]`},
		{"bare fence", "```\n[1, 2]\n```", `[1, 2]`},
		{"surrounding prose", "Here you go:\n[1, 2]\nHope that helps!", `[1, 2]`},
	}

	for _, c := range cases {
		if got := cleanJSONArray(c.in); got != c.want {
			t.Fatalf("%s: cleanJSONArray(%q) = %q, want %q", c.name, c.in, got, c.want)
		}
	}
}

func TestBuildUserPromptCapsText(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", inputTextCap+500)
	items := []domain.Item{
		&domain.Paper{ID: "2408.00001", Name: "Paper", Abstract: long, Origin: "arxiv"},
	}

	prompt := buildUserPrompt(items)
	if !strings.Contains(prompt, "Item id: arxiv:2408.00001") {
		t.Fatalf("prompt missing item id:\n%s", prompt[:200])
	}
	if strings.Contains(prompt, strings.Repeat("x", inputTextCap+1)) {
		t.Fatal("item text not capped")
	}
}
