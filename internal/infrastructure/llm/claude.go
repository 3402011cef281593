package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"TrendDigest/internal/domain"
	"TrendDigest/internal/ports"
)

const systemPrompt = "You are an expert AI/ML research analyst. Your job is to read paper abstracts " +
	"and project descriptions, then write concise key-point summaries that help a " +
	"busy researcher quickly decide whether each item is worth reading.\n\n" +
	"Rules:\n" +
	"- Write exactly 2-3 sentences per item.\n" +
	"- First sentence: what the project/paper does (the core contribution).\n" +
	"- Second/third sentence: why it matters, what problem it solves, or what makes it novel.\n" +
	"- Be specific and informative, not vague.\n" +
	"- Generate BOTH an English summary and a Chinese summary for each item.\n" +
	"- The Chinese summary should be a natural Chinese version conveying the same key points, " +
	"not a literal translation. Keep technical terms in English where appropriate.\n" +
	"- Return ONLY valid JSON, no markdown fences, no extra text."

const inputTextCap = 1500

// ClaudeSummarizer generates bilingual key-point summaries for all items in a
// single batched request.
type ClaudeSummarizer struct {
	client *anthropic.Client
	model  anthropic.Model
	logger *slog.Logger
}

var _ ports.Summarizer = (*ClaudeSummarizer)(nil)

// NewClaudeSummarizer builds a client from the API key and model name.
func NewClaudeSummarizer(apiKey, model string, logger *slog.Logger) *ClaudeSummarizer {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &ClaudeSummarizer{
		client: &client,
		model:  anthropic.Model(model),
		logger: logger,
	}
}

type itemSummary struct {
	ID string `json:"id"`
	EN string `json:"en"`
	CN string `json:"cn"`
}

// Summarize fills EN+CN summaries onto the items in place. Items the model
// skips keep empty summaries and fall back to their own text downstream.
func (s *ClaudeSummarizer) Summarize(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}

	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: 8192,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildUserPrompt(items))),
		},
	})
	if err != nil {
		return fmt.Errorf("anthropic request: %w", err)
	}

	if len(resp.Content) == 0 {
		return fmt.Errorf("empty anthropic response")
	}

	var parsed []itemSummary
	cleaned := cleanJSONArray(resp.Content[0].Text)
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return fmt.Errorf("parse summaries: %w", err)
	}

	byID := make(map[string]itemSummary, len(parsed))
	for _, summary := range parsed {
		byID[summary.ID] = summary
	}

	filled := 0
	for _, item := range items {
		if summary, ok := byID[item.UniqueID()]; ok {
			sm := item.Summaries()
			sm.EN = summary.EN
			sm.CN = summary.CN
			filled++
		}
	}

	if s.logger != nil {
		s.logger.Info("summaries generated", "items", len(items), "filled", filled)
	}
	return nil
}

func buildUserPrompt(items []domain.Item) string {
	var b strings.Builder
	b.WriteString("Summarize each of the following items. Return a JSON array where each element has " +
		"\"id\" (the item id I provide), \"en\" (English summary), and \"cn\" (Chinese summary).\n\n")

	for _, item := range items {
		text := item.Text()
		if len(text) > inputTextCap {
			text = text[:inputTextCap]
		}
		fmt.Fprintf(&b, "--- Item id: %s ---\n", item.UniqueID())
		fmt.Fprintf(&b, "Title: %s\n", item.Title())
		fmt.Fprintf(&b, "Text: %s\n\n", text)
	}

	b.WriteString("Return ONLY the JSON array. Example format:\n" +
		`[{"id": "arxiv:2401.00001", "en": "This paper ...", "cn": "..."}]`)
	return b.String()
}

func cleanJSONArray(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around the JSON.
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}

const translateSystemPrompt = "You translate Markdown technical digests from English to natural Chinese. " +
	"Keep all Markdown structure, links, code spans, and technical terms in English intact. " +
	"Translate only the prose. Return the translated Markdown and nothing else."

var _ ports.Translator = (*ClaudeSummarizer)(nil)

// Translate renders the digest body into Chinese while preserving its
// Markdown structure.
func (s *ClaudeSummarizer) Translate(ctx context.Context, markdown string) (string, error) {
	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: 8192,
		System: []anthropic.TextBlockParam{
			{Text: translateSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(markdown)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("empty anthropic response")
	}
	return strings.TrimSpace(resp.Content[0].Text), nil
}
