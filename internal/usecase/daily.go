package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"TrendDigest/internal/config"
	"TrendDigest/internal/domain"
	"TrendDigest/internal/format"
	"TrendDigest/internal/ports"
	"TrendDigest/internal/relevance"
	"TrendDigest/internal/state"
)

// DailyDeps wires all driven adapters into the daily pipeline.
type DailyDeps struct {
	Collectors []ports.Collector
	Dedup      *state.DedupStore
	Categories []relevance.Category
	Summarizer ports.Summarizer
	Issues     ports.IssueClient
	Email      ports.EmailSender
	Archive    ports.DigestArchive
	Filter     config.FilterConfig
	Issue      config.IssueConfig
	EmailCfg   config.EmailConfig
	RunLogPath string
	Logger     *slog.Logger
}

// DailyPipeline implements the collect-dedup-score-publish workflow. Every
// stage is best-effort: collector, summarizer, archive, and email failures
// are logged and counted but never abort the run.
type DailyPipeline struct {
	deps DailyDeps
}

// NewDailyPipeline constructs the orchestration component.
func NewDailyPipeline(deps DailyDeps) *DailyPipeline {
	return &DailyPipeline{deps: deps}
}

// Run executes one daily batch for the given day.
func (p *DailyPipeline) Run(ctx context.Context, day time.Time) error {
	d := p.deps
	var runErrors []string

	collected := map[string]int{}
	afterDedup := map[string]int{}
	afterFilter := map[string]int{}
	bySource := map[string][]domain.Item{}

	for _, collector := range d.Collectors {
		name := collector.Name()

		items, err := collector.Collect(ctx)
		if err != nil {
			p.logError("collection failed", "source", name, "error", err)
			runErrors = append(runErrors, fmt.Sprintf("%s collection failed: %v", name, err))
		}
		collected[name] = len(items)

		unseen := d.Dedup.FilterUnseen(items)
		afterDedup[name] = len(unseen)

		filtered := relevance.Filter(unseen, d.Categories, d.Filter.MinScore, d.Logger)
		if max := d.Filter.MaxItemsPerSource; max > 0 && len(filtered) > max {
			filtered = filtered[:max]
		}
		afterFilter[name] = len(filtered)
		bySource[name] = filtered
	}

	var all []domain.Item
	for _, name := range []string{"github", "arxiv", "pwc"} {
		all = append(all, bySource[name]...)
	}

	if d.Summarizer != nil && len(all) > 0 {
		if err := d.Summarizer.Summarize(ctx, all); err != nil {
			p.logError("summarization failed, falling back to raw text", "error", err)
			runErrors = append(runErrors, fmt.Sprintf("summarization failed: %v", err))
		}
	}

	title, body := format.Daily(bySource["github"], bySource["arxiv"], bySource["pwc"], day, "en")

	var issueURL string
	if d.Issues != nil {
		url, err := d.Issues.CreateIssue(ctx, title, body, d.Issue.DailyLabels)
		if err != nil {
			p.logError("issue creation failed", "error", err)
			runErrors = append(runErrors, fmt.Sprintf("issue creation failed: %v", err))
		}
		issueURL = url
	}

	if d.Archive != nil {
		if err := d.Archive.SaveDigest(ctx, day, title, body, len(all)); err != nil {
			p.logError("digest archive failed", "error", err)
			runErrors = append(runErrors, fmt.Sprintf("digest archive failed: %v", err))
		}
	}

	emailResults := map[string]bool{"en": false, "cn": false}
	if d.Email != nil && d.EmailCfg.Enabled && d.EmailCfg.DailyEnabled {
		_, bodyCN := format.Daily(bySource["github"], bySource["arxiv"], bySource["pwc"], day, "cn")
		emailResults = d.Email.Send(ctx, title, body, bodyCN)
	}

	if d.RunLogPath != "" {
		record := state.RunRecord{
			Type:        "daily",
			Collected:   collected,
			AfterDedup:  afterDedup,
			AfterFilter: afterFilter,
			IssueURL:    issueURL,
			Email:       emailResults,
			Errors:      runErrors,
		}
		if err := state.AppendRunRecord(d.RunLogPath, record); err != nil {
			p.logError("run log append failed", "error", err)
		}
	}

	if err := d.Dedup.Save(); err != nil {
		p.logError("dedup store save failed", "error", err)
	}

	if d.Logger != nil {
		d.Logger.Info("daily run completed",
			"collected", collected, "after_filter", afterFilter, "issue_url", issueURL)
	}
	return nil
}

func (p *DailyPipeline) logError(msg string, args ...any) {
	if p.deps.Logger != nil {
		p.deps.Logger.Error(msg, args...)
	}
}
