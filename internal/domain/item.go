package domain

import "fmt"

// Relevance carries the scoring output assigned by the keyword filter.
type Relevance struct {
	Score      float64
	Categories []string
}

// Summaries holds generated key-point summaries per language. Empty fields
// mean the formatter falls back to the item's own text.
type Summaries struct {
	EN string
	CN string
}

// ForLang returns the summary for lang ("en" or "cn"), falling back to the
// English one.
func (s Summaries) ForLang(lang string) string {
	if lang == "cn" && s.CN != "" {
		return s.CN
	}
	return s.EN
}

// Item is the common capability shared by everything the collectors produce.
// UniqueID is stable across repeated collection of the same entity and is the
// sole dedup key; the prefix before the first ':' selects the dedup bucket.
type Item interface {
	UniqueID() string
	Title() string
	Text() string
	Source() string
	Link() string
	Relevance() *Relevance
	Summaries() *Summaries
}

// Paper is a research paper from arXiv or Papers with Code.
type Paper struct {
	ID         string
	Name       string
	Abstract   string
	Authors    []string
	Categories []string
	URL        string
	PDFURL     string
	RepoURL    string
	Stars      int
	Published  string
	Origin     string // "arxiv" or "pwc"

	relevance Relevance
	summaries Summaries
}

func (p *Paper) UniqueID() string      { return fmt.Sprintf("%s:%s", p.Origin, p.ID) }
func (p *Paper) Title() string         { return p.Name }
func (p *Paper) Text() string          { return p.Abstract }
func (p *Paper) Source() string        { return p.Origin }
func (p *Paper) Link() string          { return p.URL }
func (p *Paper) Relevance() *Relevance { return &p.relevance }
func (p *Paper) Summaries() *Summaries { return &p.summaries }

// RepoRelease is a new release (or latest tag) of a tracked repository.
type RepoRelease struct {
	RepoName    string
	Name        string
	Description string
	URL         string
	Tag         string
	Body        string
	Stars       int
	Language    string
	Published   string

	relevance Relevance
	summaries Summaries
}

func (r *RepoRelease) UniqueID() string {
	return fmt.Sprintf("github:release:%s:%s", r.RepoName, r.Tag)
}

func (r *RepoRelease) Title() string { return r.Name }

// Text prefers the release body; tag-only releases fall back to the repo
// description.
func (r *RepoRelease) Text() string {
	if r.Body != "" {
		return r.Body
	}
	return r.Description
}

func (r *RepoRelease) Source() string        { return "github" }
func (r *RepoRelease) Link() string          { return r.URL }
func (r *RepoRelease) Relevance() *Relevance { return &r.relevance }
func (r *RepoRelease) Summaries() *Summaries { return &r.summaries }

// TrendingRepo is a repository scraped from the GitHub trending page.
type TrendingRepo struct {
	RepoName    string
	Description string
	URL         string
	Stars       int
	StarsToday  int
	Language    string
	Published   string

	relevance Relevance
	summaries Summaries
}

func (t *TrendingRepo) UniqueID() string {
	return fmt.Sprintf("github:trending:%s", t.RepoName)
}

func (t *TrendingRepo) Title() string         { return t.RepoName }
func (t *TrendingRepo) Text() string          { return t.Description }
func (t *TrendingRepo) Source() string        { return "github" }
func (t *TrendingRepo) Link() string          { return t.URL }
func (t *TrendingRepo) Relevance() *Relevance { return &t.relevance }
func (t *TrendingRepo) Summaries() *Summaries { return &t.summaries }
