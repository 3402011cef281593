package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TrendDigest/internal/config"
	"TrendDigest/internal/infrastructure/collector"
	"TrendDigest/internal/infrastructure/email"
	"TrendDigest/internal/infrastructure/githubissue"
	"TrendDigest/internal/infrastructure/llm"
	"TrendDigest/internal/infrastructure/scheduler"
	"TrendDigest/internal/infrastructure/storage"
	"TrendDigest/internal/logging"
	"TrendDigest/internal/ports"
	"TrendDigest/internal/relevance"
	"TrendDigest/internal/state"
	"TrendDigest/internal/usecase"
)

// Application wires configs to adapters, pipelines, and lifecycle
// orchestration.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	daily   *usecase.DailyPipeline
	weekly  *usecase.WeeklyPipeline
	archive *storage.PostgresArchive
}

// New builds a runnable application instance. Optional adapters (archive,
// summarizer, issue client) stay nil when their configuration is absent and
// the pipelines degrade accordingly.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	categories, err := relevance.LoadCategories(cfg.KeywordsPath)
	if err != nil {
		baseLogger.Warn("keyword config unavailable, relevance filtering disabled",
			"path", cfg.KeywordsPath, "error", err)
	}

	dedup := state.NewDedupStore(cfg.Dedup.Path, cfg.Dedup.RetentionDays,
		logging.Component(baseLogger, "dedup"))

	collectors := []ports.Collector{
		collector.NewGitHubCollector(nil, cfg.Sources.GitHub, cfg.GitHub.Token,
			logging.Component(baseLogger, "collector.github")),
		collector.NewArxivCollector(nil, cfg.Sources.Arxiv,
			logging.Component(baseLogger, "collector.arxiv")),
		collector.NewPwcCollector(nil, cfg.Sources.Pwc,
			logging.Component(baseLogger, "collector.pwc")),
	}

	var issues ports.IssueClient
	if cfg.GitHub.Token != "" && cfg.GitHub.Repository != "" {
		issues = githubissue.NewClient(cfg.GitHub.Token, cfg.GitHub.Repository,
			logging.Component(baseLogger, "issues"))
	} else {
		baseLogger.Warn("github token or repository missing, issue publishing disabled")
	}

	var archive *storage.PostgresArchive
	var digestArchive ports.DigestArchive
	if cfg.Database.DSN != "" {
		archive, err = storage.Open(ctx, cfg.Database.DSN)
		if err != nil {
			baseLogger.Warn("digest archive unavailable", "error", err)
		} else {
			digestArchive = archive
		}
	}

	var summarizer ports.Summarizer
	var translator ports.Translator
	if cfg.Summarizer.Enabled && cfg.Summarizer.APIKey != "" {
		claude := llm.NewClaudeSummarizer(cfg.Summarizer.APIKey, cfg.Summarizer.Model,
			logging.Component(baseLogger, "summarizer"))
		summarizer = claude
		translator = claude
	}

	sender := email.NewSMTPSender(cfg.Email, logging.Component(baseLogger, "email"))

	daily := usecase.NewDailyPipeline(usecase.DailyDeps{
		Collectors: collectors,
		Dedup:      dedup,
		Categories: categories,
		Summarizer: summarizer,
		Issues:     issues,
		Email:      sender,
		Archive:    digestArchive,
		Filter:     cfg.Filter,
		Issue:      cfg.Issue,
		EmailCfg:   cfg.Email,
		RunLogPath: cfg.RunLogPath,
		Logger:     logging.Component(baseLogger, "pipeline.daily"),
	})

	weekly := usecase.NewWeeklyPipeline(usecase.WeeklyDeps{
		Issues:     issues,
		Archive:    digestArchive,
		Email:      sender,
		Translator: translator,
		Weekly:     cfg.Weekly,
		Issue:      cfg.Issue,
		EmailCfg:   cfg.Email,
		RunLogPath: cfg.RunLogPath,
		Logger:     logging.Component(baseLogger, "pipeline.weekly"),
	})

	return &Application{
		cfg:     cfg,
		logger:  baseLogger,
		daily:   daily,
		weekly:  weekly,
		archive: archive,
	}
}

// RunDaily executes one daily batch for the current day.
func (a *Application) RunDaily(ctx context.Context) error {
	now := time.Now().In(a.cfg.Scheduler.Location())
	return a.daily.Run(ctx, now)
}

// RunWeekly executes one weekly summary for the period ending now.
func (a *Application) RunWeekly(ctx context.Context) error {
	now := time.Now().In(a.cfg.Scheduler.Location())
	return a.weekly.Run(ctx, now)
}

// Serve runs both pipelines on their cron schedules until the process
// receives an interrupt.
func (a *Application) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewCronScheduler(
		a.cfg.Scheduler.Location(),
		a.cfg.Scheduler.DailyCron,
		a.cfg.Scheduler.WeeklyCron,
		func(t time.Time) {
			if err := a.daily.Run(ctx, t); err != nil {
				a.logger.Error("daily run failed", "error", err)
			}
		},
		func(t time.Time) {
			if err := a.weekly.Run(ctx, t); err != nil {
				a.logger.Error("weekly run failed", "error", err)
			}
		},
	)

	if err := sched.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("scheduler started",
		"daily", a.cfg.Scheduler.DailyCron, "weekly", a.cfg.Scheduler.WeeklyCron,
		"timezone", a.cfg.Scheduler.Timezone)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sched.Stop(shutdownCtx)
}

// Close releases held resources.
func (a *Application) Close() {
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.logger.Warn("archive close failed", "error", err)
		}
	}
}
