package ports

import (
	"context"
	"time"

	"TrendDigest/internal/domain"
)

// Collector pulls fresh items from one upstream source.
type Collector interface {
	Name() string
	Collect(ctx context.Context) ([]domain.Item, error)
}

// IssueClient publishes digests to the issue tracker and retrieves past ones.
type IssueClient interface {
	CreateIssue(ctx context.Context, title, body string, labels []string) (string, error)
	IssueBodiesByLabel(ctx context.Context, label string, sinceDays int) ([]string, error)
}

// Summarizer fills bilingual key-point summaries onto items in place.
type Summarizer interface {
	Summarize(ctx context.Context, items []domain.Item) error
}

// Translator converts a rendered digest into Chinese, preserving the
// Markdown structure.
type Translator interface {
	Translate(ctx context.Context, markdown string) (string, error)
}

// EmailSender delivers a digest to per-language recipient lists. The result
// maps language code to delivery success.
type EmailSender interface {
	Send(ctx context.Context, subject, bodyEN, bodyCN string) map[string]bool
}

// DigestArchive stores published daily digests keyed by run date so the
// weekly path can read structured records instead of issue-tracker text.
type DigestArchive interface {
	SaveDigest(ctx context.Context, runDate time.Time, title, body string, itemCount int) error
	DigestBodiesSince(ctx context.Context, sinceDays int) ([]string, error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
