package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/draftforge/draftforge/internal/metrics"
	"github.com/draftforge/draftforge/internal/plan"
	"github.com/draftforge/draftforge/internal/scraper"
	"github.com/draftforge/draftforge/internal/serp"
	"github.com/draftforge/draftforge/pkg/ratelimit"
)

const (
	// DefaultQueryCount is how many search queries a topic expands into.
	DefaultQueryCount = 5
	// DefaultResultsPerQuery caps how many results of each search round get
	// scraped.
	DefaultResultsPerQuery = 5
	// DefaultMinContentChars is the acceptance threshold: pages with this
	// much extracted text or less are rejected as thin.
	DefaultMinContentChars = 100
	// DefaultMaxPages stops research once this many pages are accepted,
	// even when queries remain.
	DefaultMaxPages = 25
	// DefaultQueryPause is the pause between search rounds.
	DefaultQueryPause = 500 * time.Millisecond
)

var (
	// ErrEmptyTopic rejects a session started without a topic.
	ErrEmptyTopic = errors.New("pipeline: topic is empty")
	// ErrNoPages rejects plan analysis when research accepted nothing.
	ErrNoPages = errors.New("pipeline: research accepted no pages")
	// ErrIncompletePlan rejects article generation while any plan field is
	// still blank.
	ErrIncompletePlan = errors.New("pipeline: plan is incomplete")
)

// PageScraper fetches a single URL into a Page record. *scraper.Fetcher
// implements it; tests substitute stubs.
type PageScraper interface {
	Scrape(ctx context.Context, url string) *scraper.Page
}

// Generator runs the completion-backed operations of the flow. *llm.Writer
// implements it.
type Generator interface {
	GenerateQueries(ctx context.Context, topic string, count int) []string
	AnalyzePlan(ctx context.Context, topic string, pages []*scraper.Page) plan.ContentPlan
	GenerateArticle(ctx context.Context, topic string, p plan.ContentPlan, wordCount int) (string, error)
}

// Config wires a session's collaborators and research tuning. Zeroed tuning
// fields take the package defaults.
type Config struct {
	Search    serp.Provider
	Scraper   PageScraper
	Generator Generator
	Logger    *slog.Logger

	QueryCount      int
	ResultsPerQuery int
	MinContentChars int
	MaxPages        int
	QueryPause      time.Duration
	SearchOptions   serp.Options
}

// QueryStats records the research outcome of one search round.
type QueryStats struct {
	Query    string `json:"query"`
	Results  int    `json:"results"`
	Accepted int    `json:"accepted"`
	Rejected int    `json:"rejected"`
	Failed   int    `json:"failed"`
}

// ResearchStats summarizes a completed research run for reporting.
type ResearchStats struct {
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Queries    []QueryStats `json:"queries"`
}

// Session owns the state of one topic-to-article flow. It is single-caller:
// the presentation layer drives one operation at a time, so no locking is
// needed. Operations check the session's stage and fail with a StageError
// when invoked out of order, leaving all state untouched.
type Session struct {
	id     string
	config Config
	logger *slog.Logger

	stage   Stage
	topic   string
	queries []string
	pages   []*scraper.Page
	stats   ResearchStats
	plan    plan.ContentPlan
	article string
}

// NewSession creates an idle session from the given collaborators.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Search == nil {
		return nil, errors.New("pipeline: search provider is required")
	}
	if cfg.Scraper == nil {
		return nil, errors.New("pipeline: scraper is required")
	}
	if cfg.Generator == nil {
		return nil, errors.New("pipeline: generator is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QueryCount <= 0 {
		cfg.QueryCount = DefaultQueryCount
	}
	if cfg.ResultsPerQuery <= 0 {
		cfg.ResultsPerQuery = DefaultResultsPerQuery
	}
	if cfg.MinContentChars <= 0 {
		cfg.MinContentChars = DefaultMinContentChars
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.QueryPause <= 0 {
		cfg.QueryPause = DefaultQueryPause
	}

	id := uuid.New().String()
	return &Session{
		id:     id,
		config: cfg,
		logger: cfg.Logger.With("session", id[:8]),
		stage:  StageIdle,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Stage returns the session's current stage.
func (s *Session) Stage() Stage { return s.stage }

// Topic returns the submitted topic, empty while idle.
func (s *Session) Topic() string { return s.topic }

// Queries returns the search queries produced by SubmitTopic.
func (s *Session) Queries() []string { return s.queries }

// Pages returns the accepted research pages.
func (s *Session) Pages() []*scraper.Page { return s.pages }

// Stats returns the research statistics of the last research run.
func (s *Session) Stats() ResearchStats { return s.stats }

// Plan returns the current content plan.
func (s *Session) Plan() plan.ContentPlan { return s.plan }

// Article returns the most recently generated article, empty before the
// writing stage.
func (s *Session) Article() string { return s.article }

// SubmitTopic starts the flow: it stores the topic and expands it into
// search queries. Query generation never fails (templated fallbacks cover
// model failure), so the session always reaches the queries stage.
func (s *Session) SubmitTopic(ctx context.Context, topic string) ([]string, error) {
	if s.stage != StageIdle {
		return nil, &StageError{Op: "submit topic", Current: s.stage, Required: StageIdle}
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	queries := s.config.Generator.GenerateQueries(ctx, topic, s.config.QueryCount)

	s.topic = topic
	s.queries = queries
	s.stage = StageQueries
	s.logger.Info("topic submitted", "topic", topic, "queries", len(queries))
	return queries, nil
}

// RunResearch performs one search round per query and scrapes the leading
// results. A page is accepted when its extracted text exceeds the minimum
// length; research stops early once MaxPages pages are accepted. Search and
// scrape failures degrade to empty or failed records and never abort the
// run, so the only error paths are stage misuse and context cancellation.
func (s *Session) RunResearch(ctx context.Context) error {
	if s.stage != StageQueries {
		return &StageError{Op: "run research", Current: s.stage, Required: StageQueries}
	}

	limiter := ratelimit.NewLimiter(s.config.QueryPause, 0)
	defer limiter.Stop()

	stats := ResearchStats{StartedAt: time.Now().UTC()}
	var pages []*scraper.Page
	seen := make(map[string]bool)

	for i, query := range s.queries {
		if len(pages) >= s.config.MaxPages {
			break
		}
		if i > 0 {
			if err := limiter.Wait(ctx); err != nil {
				return fmt.Errorf("pipeline: research interrupted: %w", err)
			}
		}

		results := s.config.Search.Search(ctx, query, s.config.SearchOptions)
		if len(results) > s.config.ResultsPerQuery {
			results = results[:s.config.ResultsPerQuery]
		}
		qs := QueryStats{Query: query, Results: len(results)}

		for _, result := range results {
			if len(pages) >= s.config.MaxPages {
				break
			}
			if seen[result.URL] {
				continue
			}
			seen[result.URL] = true

			page := s.config.Scraper.Scrape(ctx, result.URL)
			switch {
			case page.Failed():
				qs.Failed++
				metrics.RecordScrape(hostOf(result.URL), metrics.OutcomeFailed, page.Duration)
				s.logger.Warn("scrape failed", "url", result.URL, "reason", page.Error)
			case len(page.Content) > s.config.MinContentChars:
				qs.Accepted++
				pages = append(pages, page)
				metrics.RecordScrape(hostOf(result.URL), metrics.OutcomeAccepted, page.Duration)
			default:
				qs.Rejected++
				metrics.RecordScrape(hostOf(result.URL), metrics.OutcomeRejected, page.Duration)
				s.logger.Debug("page rejected as thin", "url", result.URL, "chars", len(page.Content))
			}
		}

		stats.Queries = append(stats.Queries, qs)
	}

	stats.FinishedAt = time.Now().UTC()
	s.pages = pages
	s.stats = stats
	s.stage = StageResearched
	s.logger.Info("research done",
		"queries", len(stats.Queries),
		"accepted", len(pages),
		"duration", stats.FinishedAt.Sub(stats.StartedAt))
	return nil
}

// AnalyzePlan distills the accepted pages into a content plan. Analysis
// itself never fails (the templated plan covers model failure), but it
// refuses to run on an empty working set.
func (s *Session) AnalyzePlan(ctx context.Context) (plan.ContentPlan, error) {
	if s.stage != StageResearched {
		return plan.ContentPlan{}, &StageError{Op: "analyze plan", Current: s.stage, Required: StageResearched}
	}
	if len(s.pages) == 0 {
		return plan.ContentPlan{}, ErrNoPages
	}

	s.plan = s.config.Generator.AnalyzePlan(ctx, s.topic, s.pages)
	s.stage = StagePlanned
	s.logger.Info("plan ready", "title", s.plan.Title, "sections", len(s.plan.Outline))
	return s.plan, nil
}

// EditPlan applies the non-empty fields of update onto the stored plan.
// Blank fields leave the stored values unchanged. No external calls.
func (s *Session) EditPlan(update plan.ContentPlan) error {
	if s.stage < StagePlanned {
		return &StageError{Op: "edit plan", Current: s.stage, Required: StagePlanned}
	}
	s.plan.Merge(update)
	return nil
}

// GenerateArticle drafts the article from the stored plan. On generation
// failure the error surfaces and the previously stored article, if any, is
// kept.
func (s *Session) GenerateArticle(ctx context.Context, wordCount int) (string, error) {
	if s.stage < StagePlanned {
		return "", &StageError{Op: "generate article", Current: s.stage, Required: StagePlanned}
	}
	if !s.plan.Complete() {
		return "", ErrIncompletePlan
	}

	article, err := s.config.Generator.GenerateArticle(ctx, s.topic, s.plan, wordCount)
	if err != nil {
		return "", err
	}

	s.article = article
	s.stage = StageWritten
	s.logger.Info("article written", "chars", len(article))
	return article, nil
}

// Regenerate re-runs article generation with the current plan, overwriting
// the stored article on success.
func (s *Session) Regenerate(ctx context.Context, wordCount int) (string, error) {
	if s.stage != StageWritten {
		return "", &StageError{Op: "regenerate", Current: s.stage, Required: StageWritten}
	}
	return s.GenerateArticle(ctx, wordCount)
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Hostname()
}
