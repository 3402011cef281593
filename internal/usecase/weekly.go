package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"TrendDigest/internal/config"
	"TrendDigest/internal/format"
	"TrendDigest/internal/ports"
	"TrendDigest/internal/state"
	"TrendDigest/internal/weekly"
)

// WeeklyDeps wires the adapters needed to rebuild a week of digests.
type WeeklyDeps struct {
	Issues     ports.IssueClient
	Archive    ports.DigestArchive
	Email      ports.EmailSender
	Translator ports.Translator
	Weekly     config.WeeklyConfig
	Issue      config.IssueConfig
	EmailCfg   config.EmailConfig
	RunLogPath string
	Logger     *slog.Logger
}

// WeeklyPipeline reconstructs the week's items from published daily digests,
// re-ranks them, and publishes a summary. The archive is the preferred source
// of digest bodies; the issue tracker is the fallback when no archive is
// configured or the archive read fails.
type WeeklyPipeline struct {
	deps WeeklyDeps
}

// NewWeeklyPipeline constructs the weekly orchestration component.
func NewWeeklyPipeline(deps WeeklyDeps) *WeeklyPipeline {
	return &WeeklyPipeline{deps: deps}
}

// Run executes one weekly summary for the period ending at now.
func (p *WeeklyPipeline) Run(ctx context.Context, now time.Time) error {
	d := p.deps
	var runErrors []string

	lookback := d.Weekly.LookbackDays
	if lookback <= 0 {
		lookback = 7
	}

	docs, err := p.digestBodies(ctx, lookback)
	if err != nil {
		p.logError("digest retrieval failed", "error", err)
		runErrors = append(runErrors, fmt.Sprintf("digest retrieval failed: %v", err))
	}

	aggregated := weekly.Aggregate(docs, d.Logger)
	top := weekly.Rank(aggregated, d.Weekly.TopN)

	title, body := format.Weekly(top, lookback, now)

	var issueURL string
	if d.Issues != nil {
		url, err := d.Issues.CreateIssue(ctx, title, body, d.Issue.WeeklyLabels)
		if err != nil {
			p.logError("issue creation failed", "error", err)
			runErrors = append(runErrors, fmt.Sprintf("issue creation failed: %v", err))
		}
		issueURL = url
	}

	emailResults := map[string]bool{"en": false, "cn": false}
	if d.Email != nil && d.EmailCfg.Enabled && d.EmailCfg.WeeklyEnabled {
		bodyCN := body
		if d.Translator != nil {
			translated, err := d.Translator.Translate(ctx, body)
			if err != nil {
				p.logError("translation failed, sending English body", "error", err)
				runErrors = append(runErrors, fmt.Sprintf("translation failed: %v", err))
			} else {
				bodyCN = translated
			}
		}
		emailResults = d.Email.Send(ctx, title, body, bodyCN)
	}

	if d.RunLogPath != "" {
		record := state.RunRecord{
			Type: "weekly",
			Collected: map[string]int{
				"digests":    len(docs),
				"aggregated": len(aggregated),
				"top":        len(top),
			},
			IssueURL: issueURL,
			Email:    emailResults,
			Errors:   runErrors,
		}
		if err := state.AppendRunRecord(d.RunLogPath, record); err != nil {
			p.logError("run log append failed", "error", err)
		}
	}

	if d.Logger != nil {
		d.Logger.Info("weekly run completed",
			"digests", len(docs), "aggregated", len(aggregated), "top", len(top), "issue_url", issueURL)
	}
	return nil
}

func (p *WeeklyPipeline) digestBodies(ctx context.Context, lookbackDays int) ([]string, error) {
	d := p.deps

	if d.Archive != nil {
		docs, err := d.Archive.DigestBodiesSince(ctx, lookbackDays)
		if err == nil {
			return docs, nil
		}
		p.logError("archive read failed, falling back to issue tracker", "error", err)
	}

	if d.Issues == nil {
		return nil, fmt.Errorf("no digest source configured")
	}

	label := ""
	if len(d.Issue.DailyLabels) > 0 {
		label = d.Issue.DailyLabels[0]
	}
	return d.Issues.IssueBodiesByLabel(ctx, label, lookbackDays)
}

func (p *WeeklyPipeline) logError(msg string, args ...any) {
	if p.deps.Logger != nil {
		p.deps.Logger.Error(msg, args...)
	}
}
