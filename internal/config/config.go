package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone    = "UTC"
	configPathEnv      = "TREND_DIGEST_CONFIG"
	githubTokenEnv     = "GITHUB_TOKEN"
	githubRepoEnv      = "GITHUB_REPOSITORY"
	anthropicAPIKeyEnv = "ANTHROPIC_API_KEY"
	databaseDSNEnv     = "DATABASE_DSN"
	smtpPasswordEnv    = "SMTP_PASSWORD"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Sources    SourcesConfig    `yaml:"sources"`
	Filter     FilterConfig     `yaml:"filter"`
	Dedup      DedupConfig      `yaml:"dedup"`
	Weekly     WeeklyConfig     `yaml:"weekly_summary"`
	Issue      IssueConfig      `yaml:"issue"`
	Email      EmailConfig      `yaml:"email"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Database   DatabaseConfig   `yaml:"database"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	GitHub     GitHubConfig     `yaml:"github"`

	KeywordsPath string `yaml:"keywordsPath"`
	RunLogPath   string `yaml:"runLogPath"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SourcesConfig groups per-collector settings.
type SourcesConfig struct {
	Arxiv  ArxivConfig     `yaml:"arxiv"`
	GitHub GitHubSrcConfig `yaml:"github"`
	Pwc    PwcConfig       `yaml:"papers_with_code"`
}

// ArxivConfig describes the arXiv API query.
type ArxivConfig struct {
	Categories   []string `yaml:"categories"`
	MaxResults   int      `yaml:"max_results"`
	LookbackDays int      `yaml:"lookback_days"`
}

// GitHubSrcConfig describes tracked releases and the trending scrape.
type GitHubSrcConfig struct {
	TrackedRepos []string       `yaml:"tracked_repos"`
	Trending     TrendingConfig `yaml:"trending"`
}

// TrendingConfig tunes the trending-page scrape.
type TrendingConfig struct {
	Languages      []string `yaml:"languages"`
	MinStars       int      `yaml:"min_stars"`
	SpokenLanguage string   `yaml:"spoken_language"`
}

// PwcConfig describes the Papers with Code query.
type PwcConfig struct {
	MaxResults int `yaml:"max_results"`
}

// FilterConfig controls relevance filtering.
type FilterConfig struct {
	MinScore          float64 `yaml:"min_score"`
	MaxItemsPerSource int     `yaml:"max_items_per_source"`
}

// DedupConfig locates the seen-store and its retention window.
type DedupConfig struct {
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// WeeklyConfig controls weekly aggregation.
type WeeklyConfig struct {
	LookbackDays int `yaml:"lookback_days"`
	TopN         int `yaml:"top_n"`
}

// IssueConfig sets labels for published issues.
type IssueConfig struct {
	DailyLabels  []string `yaml:"daily_labels"`
	WeeklyLabels []string `yaml:"weekly_labels"`
}

// EmailConfig wires SMTP delivery of digests.
type EmailConfig struct {
	Enabled       bool     `yaml:"enabled"`
	DailyEnabled  bool     `yaml:"daily_enabled"`
	WeeklyEnabled bool     `yaml:"weekly_enabled"`
	SubjectPrefix string   `yaml:"subject_prefix"`
	Host          string   `yaml:"host"`
	Port          int      `yaml:"port"`
	Username      string   `yaml:"username"`
	Password      string   `yaml:"password"`
	From          string   `yaml:"from"`
	RecipientsEN  []string `yaml:"recipients_en"`
	RecipientsCN  []string `yaml:"recipients_cn"`
}

// SummarizerConfig wires the Claude summarizer.
type SummarizerConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"apiKey"`
	Model   string `yaml:"model"`
}

// DatabaseConfig describes the optional Postgres digest archive.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when the pipelines run in serve mode.
type SchedulerConfig struct {
	DailyCron  string         `yaml:"dailyCron"`
	WeeklyCron string         `yaml:"weeklyCron"`
	Timezone   string         `yaml:"timezone"`
	location   *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// GitHubConfig identifies the repository that receives digest issues.
type GitHubConfig struct {
	Token      string `yaml:"token"`
	Repository string `yaml:"repository"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	return LoadFrom(os.Getenv(configPathEnv))
}

// LoadFrom reads the config file at path, falling back to defaults on any
// read or parse problem.
func LoadFrom(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(githubTokenEnv); v != "" {
		c.GitHub.Token = v
	}

	if v := os.Getenv(githubRepoEnv); v != "" {
		c.GitHub.Repository = v
	}

	if v := os.Getenv(anthropicAPIKeyEnv); v != "" {
		c.Summarizer.APIKey = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Email.Password = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if len(override.Sources.Arxiv.Categories) > 0 {
		base.Sources.Arxiv.Categories = override.Sources.Arxiv.Categories
	}
	if override.Sources.Arxiv.MaxResults > 0 {
		base.Sources.Arxiv.MaxResults = override.Sources.Arxiv.MaxResults
	}
	if override.Sources.Arxiv.LookbackDays > 0 {
		base.Sources.Arxiv.LookbackDays = override.Sources.Arxiv.LookbackDays
	}
	if len(override.Sources.GitHub.TrackedRepos) > 0 {
		base.Sources.GitHub.TrackedRepos = override.Sources.GitHub.TrackedRepos
	}
	if len(override.Sources.GitHub.Trending.Languages) > 0 {
		base.Sources.GitHub.Trending.Languages = override.Sources.GitHub.Trending.Languages
	}
	if override.Sources.GitHub.Trending.MinStars > 0 {
		base.Sources.GitHub.Trending.MinStars = override.Sources.GitHub.Trending.MinStars
	}
	if override.Sources.GitHub.Trending.SpokenLanguage != "" {
		base.Sources.GitHub.Trending.SpokenLanguage = override.Sources.GitHub.Trending.SpokenLanguage
	}
	if override.Sources.Pwc.MaxResults > 0 {
		base.Sources.Pwc.MaxResults = override.Sources.Pwc.MaxResults
	}

	if override.Filter.MinScore > 0 {
		base.Filter.MinScore = override.Filter.MinScore
	}
	if override.Filter.MaxItemsPerSource > 0 {
		base.Filter.MaxItemsPerSource = override.Filter.MaxItemsPerSource
	}

	if override.Dedup.Path != "" {
		base.Dedup.Path = override.Dedup.Path
	}
	if override.Dedup.RetentionDays > 0 {
		base.Dedup.RetentionDays = override.Dedup.RetentionDays
	}

	if override.Weekly.LookbackDays > 0 {
		base.Weekly.LookbackDays = override.Weekly.LookbackDays
	}
	if override.Weekly.TopN > 0 {
		base.Weekly.TopN = override.Weekly.TopN
	}

	if len(override.Issue.DailyLabels) > 0 {
		base.Issue.DailyLabels = override.Issue.DailyLabels
	}
	if len(override.Issue.WeeklyLabels) > 0 {
		base.Issue.WeeklyLabels = override.Issue.WeeklyLabels
	}

	if override.Email.Enabled {
		base.Email = override.Email
	}

	if override.Summarizer.Enabled {
		base.Summarizer.Enabled = true
	}
	if override.Summarizer.APIKey != "" {
		base.Summarizer.APIKey = override.Summarizer.APIKey
	}
	if override.Summarizer.Model != "" {
		base.Summarizer.Model = override.Summarizer.Model
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.DailyCron != "" {
		base.Scheduler.DailyCron = override.Scheduler.DailyCron
	}
	if override.Scheduler.WeeklyCron != "" {
		base.Scheduler.WeeklyCron = override.Scheduler.WeeklyCron
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.GitHub.Token != "" {
		base.GitHub.Token = override.GitHub.Token
	}
	if override.GitHub.Repository != "" {
		base.GitHub.Repository = override.GitHub.Repository
	}

	if override.KeywordsPath != "" {
		base.KeywordsPath = override.KeywordsPath
	}
	if override.RunLogPath != "" {
		base.RunLogPath = override.RunLogPath
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Sources: SourcesConfig{
			Arxiv: ArxivConfig{
				Categories:   []string{"cs.CL", "cs.AI", "cs.LG"},
				MaxResults:   200,
				LookbackDays: 3,
			},
			GitHub: GitHubSrcConfig{
				Trending: TrendingConfig{
					Languages: []string{"python"},
					MinStars:  50,
				},
			},
			Pwc: PwcConfig{MaxResults: 50},
		},
		Filter: FilterConfig{MinScore: 1.0, MaxItemsPerSource: 15},
		Dedup:  DedupConfig{Path: "data/seen.json", RetentionDays: 30},
		Weekly: WeeklyConfig{LookbackDays: 7, TopN: 20},
		Issue: IssueConfig{
			DailyLabels:  []string{"daily-update"},
			WeeklyLabels: []string{"weekly-summary"},
		},
		Email: EmailConfig{SubjectPrefix: "[LLM Update]", Port: 587},
		Summarizer: SummarizerConfig{
			Model: "claude-sonnet-4-20250514",
		},
		Scheduler: SchedulerConfig{
			DailyCron:  "0 6 * * *",
			WeeklyCron: "0 8 * * 1",
			Timezone:   defaultTimezone,
			location:   tz,
		},
		KeywordsPath: "config/keywords.yaml",
		RunLogPath:   "data/run-log.json",
	}
}
