package githubissue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TrendDigest/internal/ports"
)

const defaultAPIBase = "https://api.github.com"

// Client publishes digests as GitHub Issues and retrieves past daily issues
// for weekly aggregation.
type Client struct {
	token      string
	repository string // "owner/repo"
	apiBase    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.IssueClient = (*Client)(nil)

// NewClient registers the token and target repository.
func NewClient(token, repository string, logger *slog.Logger) *Client {
	return &Client{
		token:      token,
		repository: repository,
		apiBase:    defaultAPIBase,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

type issuePayload struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	HTMLURL     string `json:"html_url"`
	CreatedAt   string `json:"created_at"`
	PullRequest *struct {
		URL string `json:"url"`
	} `json:"pull_request,omitempty"`
}

type labelPayload struct {
	Name string `json:"name"`
}

// CreateIssue creates a new issue, ensuring the labels exist first.
func (c *Client) CreateIssue(ctx context.Context, title, body string, labels []string) (string, error) {
	if c.token == "" || c.repository == "" {
		return "", fmt.Errorf("issue client misconfigured")
	}

	c.ensureLabels(ctx, labels)

	payload, err := json.Marshal(map[string]any{
		"title":  title,
		"body":   body,
		"labels": labels,
	})
	if err != nil {
		return "", fmt.Errorf("marshal issue payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/repos/%s/issues", c.apiBase, c.repository)
	var created issuePayload
	if err := c.do(ctx, http.MethodPost, endpoint, payload, &created); err != nil {
		return "", fmt.Errorf("create issue: %w", err)
	}

	if c.logger != nil {
		c.logger.Info("issue created", "url", created.HTMLURL)
	}
	return created.HTMLURL, nil
}

// ensureLabels creates any missing labels; failures are non-fatal because the
// issue itself still goes through without them.
func (c *Client) ensureLabels(ctx context.Context, labels []string) {
	if len(labels) == 0 {
		return
	}

	var existing []labelPayload
	endpoint := fmt.Sprintf("%s/repos/%s/labels?per_page=100", c.apiBase, c.repository)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &existing); err != nil {
		return
	}

	known := make(map[string]struct{}, len(existing))
	for _, label := range existing {
		known[label.Name] = struct{}{}
	}

	for _, label := range labels {
		if _, ok := known[label]; ok {
			continue
		}
		payload, err := json.Marshal(map[string]string{"name": label, "color": "0e8a16"})
		if err != nil {
			continue
		}
		createURL := fmt.Sprintf("%s/repos/%s/labels", c.apiBase, c.repository)
		_ = c.do(ctx, http.MethodPost, createURL, payload, nil)
	}
}

// IssueBodiesByLabel returns the bodies of issues carrying label that were
// created within the last sinceDays, newest first. Pull requests are skipped.
func (c *Client) IssueBodiesByLabel(ctx context.Context, label string, sinceDays int) ([]string, error) {
	if c.token == "" || c.repository == "" {
		return nil, fmt.Errorf("issue client misconfigured")
	}

	since := time.Now().UTC().AddDate(0, 0, -sinceDays)

	params := url.Values{}
	params.Set("labels", label)
	params.Set("state", "all")
	params.Set("since", since.Format(time.RFC3339))
	params.Set("sort", "created")
	params.Set("direction", "desc")
	params.Set("per_page", "100")

	endpoint := fmt.Sprintf("%s/repos/%s/issues?%s", c.apiBase, c.repository, params.Encode())

	var issues []issuePayload
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &issues); err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}

	bodies := make([]string, 0, len(issues))
	for _, issue := range issues {
		if issue.PullRequest != nil {
			continue
		}
		if created, err := time.Parse(time.RFC3339, issue.CreatedAt); err == nil && created.Before(since) {
			continue
		}
		bodies = append(bodies, issue.Body)
	}

	if c.logger != nil {
		c.logger.Info("fetched daily issues", "label", label, "since_days", sinceDays, "count", len(bodies))
	}
	return bodies, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte, v any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("github error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	if v == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
