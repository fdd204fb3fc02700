package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/draftforge/draftforge/internal/plan"
	"github.com/draftforge/draftforge/internal/scraper"
	"github.com/draftforge/draftforge/internal/serp"
)

type stubSearch struct {
	fn    func(query string) []serp.Result
	calls int
}

func (s *stubSearch) Search(_ context.Context, query string, _ serp.Options) []serp.Result {
	s.calls++
	return s.fn(query)
}

type stubScraper struct {
	fn    func(url string) *scraper.Page
	calls int
}

func (s *stubScraper) Scrape(_ context.Context, url string) *scraper.Page {
	s.calls++
	return s.fn(url)
}

type stubGenerator struct {
	queriesFn func(topic string, count int) []string
	analyzeFn func(topic string, pages []*scraper.Page) plan.ContentPlan
	articleFn func(topic string, p plan.ContentPlan, wordCount int) (string, error)
}

func (g *stubGenerator) GenerateQueries(_ context.Context, topic string, count int) []string {
	if g.queriesFn != nil {
		return g.queriesFn(topic, count)
	}
	return []string{topic + " guide"}
}

func (g *stubGenerator) AnalyzePlan(_ context.Context, topic string, pages []*scraper.Page) plan.ContentPlan {
	if g.analyzeFn != nil {
		return g.analyzeFn(topic, pages)
	}
	return plan.Fallback(topic)
}

func (g *stubGenerator) GenerateArticle(_ context.Context, topic string, p plan.ContentPlan, wordCount int) (string, error) {
	if g.articleFn != nil {
		return g.articleFn(topic, p, wordCount)
	}
	return "article about " + topic, nil
}

func resultsFor(query string, n int) []serp.Result {
	results := make([]serp.Result, n)
	for i := range results {
		results[i] = serp.Result{
			Title: fmt.Sprintf("%s result %d", query, i),
			URL:   fmt.Sprintf("https://example.com/%s/%d", strings.ReplaceAll(query, " ", "-"), i),
		}
	}
	return results
}

func contentPage(url string, chars int) *scraper.Page {
	return &scraper.Page{URL: url, Content: strings.Repeat("x", chars)}
}

func newTestSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	if cfg.Search == nil {
		cfg.Search = &stubSearch{fn: func(q string) []serp.Result { return resultsFor(q, 5) }}
	}
	if cfg.Scraper == nil {
		cfg.Scraper = &stubScraper{fn: func(url string) *scraper.Page { return contentPage(url, 150) }}
	}
	if cfg.Generator == nil {
		cfg.Generator = &stubGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.QueryPause == 0 {
		cfg.QueryPause = time.Millisecond
	}
	s, err := NewSession(cfg)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestSubmitTopic(t *testing.T) {
	gen := &stubGenerator{
		queriesFn: func(topic string, count int) []string {
			return []string{topic + " a", topic + " b"}
		},
	}
	s := newTestSession(t, Config{Generator: gen})

	queries, err := s.SubmitTopic(context.Background(), "  urban beekeeping  ")
	if err != nil {
		t.Fatalf("SubmitTopic: %v", err)
	}
	if s.Stage() != StageQueries {
		t.Errorf("stage = %v, want %v", s.Stage(), StageQueries)
	}
	if s.Topic() != "urban beekeeping" {
		t.Errorf("topic not trimmed: %q", s.Topic())
	}
	if len(queries) != 2 {
		t.Errorf("queries = %v", queries)
	}
}

func TestSubmitTopic_EmptyTopic(t *testing.T) {
	s := newTestSession(t, Config{})

	if _, err := s.SubmitTopic(context.Background(), "   "); !errors.Is(err, ErrEmptyTopic) {
		t.Fatalf("err = %v, want ErrEmptyTopic", err)
	}
	if s.Stage() != StageIdle {
		t.Errorf("failed submit moved the stage to %v", s.Stage())
	}
}

func TestStageGuard_NoMutation(t *testing.T) {
	s := newTestSession(t, Config{})

	_, err := s.AnalyzePlan(context.Background())
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("err = %v, want *StageError", err)
	}
	if stageErr.Required != StageResearched {
		t.Errorf("required stage = %v", stageErr.Required)
	}
	if s.Stage() != StageIdle || len(s.Pages()) != 0 || s.Plan().Complete() {
		t.Error("out-of-order call mutated session state")
	}
}

func TestStageGuard_AllOperations(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, Config{})

	var stageErr *StageError
	if err := s.RunResearch(ctx); !errors.As(err, &stageErr) {
		t.Errorf("RunResearch before queries: err = %v", err)
	}
	if err := s.EditPlan(plan.ContentPlan{Title: "x"}); !errors.As(err, &stageErr) {
		t.Errorf("EditPlan before plan: err = %v", err)
	}
	if _, err := s.GenerateArticle(ctx, 1500); !errors.As(err, &stageErr) {
		t.Errorf("GenerateArticle before plan: err = %v", err)
	}
	if _, err := s.Regenerate(ctx, 1500); !errors.As(err, &stageErr) {
		t.Errorf("Regenerate before article: err = %v", err)
	}
}

func TestRunResearch_StopsAtPageCap(t *testing.T) {
	// 10 queries each returning 5 scrapeable results of 150 chars: research
	// must stop at exactly 25 accepted pages with queries left over.
	queries := make([]string, 10)
	for i := range queries {
		queries[i] = fmt.Sprintf("query %d", i)
	}
	scr := &stubScraper{fn: func(url string) *scraper.Page { return contentPage(url, 150) }}
	s := newTestSession(t, Config{
		Generator: &stubGenerator{queriesFn: func(string, int) []string { return queries }},
		Scraper:   scr,
	})

	ctx := context.Background()
	if _, err := s.SubmitTopic(ctx, "endurance running"); err != nil {
		t.Fatalf("SubmitTopic: %v", err)
	}
	if err := s.RunResearch(ctx); err != nil {
		t.Fatalf("RunResearch: %v", err)
	}

	if len(s.Pages()) != 25 {
		t.Errorf("accepted %d pages, want 25", len(s.Pages()))
	}
	if scr.calls != 25 {
		t.Errorf("scraped %d urls, want 25 (no scraping past the cap)", scr.calls)
	}
	if got := len(s.Stats().Queries); got != 5 {
		t.Errorf("ran %d search rounds, want 5", got)
	}
	if s.Stage() != StageResearched {
		t.Errorf("stage = %v", s.Stage())
	}
}

func TestRunResearch_DeduplicatesURLs(t *testing.T) {
	// Both queries return the same single result.
	search := &stubSearch{fn: func(string) []serp.Result {
		return []serp.Result{{Title: "dup", URL: "https://example.com/same"}}
	}}
	scr := &stubScraper{fn: func(url string) *scraper.Page { return contentPage(url, 150) }}
	s := newTestSession(t, Config{
		Generator: &stubGenerator{queriesFn: func(string, int) []string { return []string{"a", "b"} }},
		Search:    search,
		Scraper:   scr,
	})

	ctx := context.Background()
	if _, err := s.SubmitTopic(ctx, "anything"); err != nil {
		t.Fatalf("SubmitTopic: %v", err)
	}
	if err := s.RunResearch(ctx); err != nil {
		t.Fatalf("RunResearch: %v", err)
	}

	if scr.calls != 1 {
		t.Errorf("scraped %d times, want 1", scr.calls)
	}
	if len(s.Pages()) != 1 {
		t.Errorf("accepted %d pages, want 1", len(s.Pages()))
	}
}

func TestRunResearch_ClassifiesPages(t *testing.T) {
	pages := map[string]*scraper.Page{
		"https://example.com/q/0": contentPage("https://example.com/q/0", 150),
		"https://example.com/q/1": contentPage("https://example.com/q/1", 50),
		"https://example.com/q/2": {URL: "https://example.com/q/2", Error: "request failed: connection refused"},
	}
	search := &stubSearch{fn: func(string) []serp.Result {
		return []serp.Result{
			{URL: "https://example.com/q/0"},
			{URL: "https://example.com/q/1"},
			{URL: "https://example.com/q/2"},
		}
	}}
	s := newTestSession(t, Config{
		Generator: &stubGenerator{queriesFn: func(string, int) []string { return []string{"q"} }},
		Search:    search,
		Scraper:   &stubScraper{fn: func(url string) *scraper.Page { return pages[url] }},
	})

	ctx := context.Background()
	if _, err := s.SubmitTopic(ctx, "anything"); err != nil {
		t.Fatalf("SubmitTopic: %v", err)
	}
	if err := s.RunResearch(ctx); err != nil {
		t.Fatalf("RunResearch: %v", err)
	}

	if len(s.Pages()) != 1 {
		t.Fatalf("accepted %d pages, want 1", len(s.Pages()))
	}
	qs := s.Stats().Queries[0]
	if qs.Accepted != 1 || qs.Rejected != 1 || qs.Failed != 1 {
		t.Errorf("stats = %+v, want 1 accepted, 1 rejected, 1 failed", qs)
	}
}

func TestAnalyzePlan_RequiresPages(t *testing.T) {
	// Every scrape comes back thin, so nothing is accepted.
	s := newTestSession(t, Config{
		Scraper: &stubScraper{fn: func(url string) *scraper.Page { return contentPage(url, 10) }},
	})

	ctx := context.Background()
	if _, err := s.SubmitTopic(ctx, "anything"); err != nil {
		t.Fatalf("SubmitTopic: %v", err)
	}
	if err := s.RunResearch(ctx); err != nil {
		t.Fatalf("RunResearch: %v", err)
	}

	if _, err := s.AnalyzePlan(ctx); !errors.Is(err, ErrNoPages) {
		t.Fatalf("err = %v, want ErrNoPages", err)
	}
	if s.Stage() != StageResearched {
		t.Errorf("failed analysis moved the stage to %v", s.Stage())
	}
}

func advanceToPlanned(t *testing.T, s *Session) {
	t.Helper()
	ctx := context.Background()
	if _, err := s.SubmitTopic(ctx, "home coffee roasting"); err != nil {
		t.Fatalf("SubmitTopic: %v", err)
	}
	if err := s.RunResearch(ctx); err != nil {
		t.Fatalf("RunResearch: %v", err)
	}
	if _, err := s.AnalyzePlan(ctx); err != nil {
		t.Fatalf("AnalyzePlan: %v", err)
	}
}

func TestEditPlan(t *testing.T) {
	s := newTestSession(t, Config{})
	advanceToPlanned(t, s)
	original := s.Plan()

	// Blank fields leave stored values alone.
	if err := s.EditPlan(plan.ContentPlan{Title: ""}); err != nil {
		t.Fatalf("EditPlan: %v", err)
	}
	if s.Plan().Title != original.Title {
		t.Errorf("blank edit overwrote title: %q", s.Plan().Title)
	}

	// Non-blank fields overwrite.
	if err := s.EditPlan(plan.ContentPlan{Title: "A Better Title"}); err != nil {
		t.Fatalf("EditPlan: %v", err)
	}
	if s.Plan().Title != "A Better Title" {
		t.Errorf("title = %q", s.Plan().Title)
	}
	if s.Plan().PrimaryKeyword != original.PrimaryKeyword {
		t.Errorf("edit leaked into untouched field: %q", s.Plan().PrimaryKeyword)
	}
}

func TestGenerateArticle_IncompletePlan(t *testing.T) {
	s := newTestSession(t, Config{
		Generator: &stubGenerator{
			analyzeFn: func(string, []*scraper.Page) plan.ContentPlan {
				return plan.ContentPlan{PrimaryKeyword: "only one field"}
			},
		},
	})
	advanceToPlanned(t, s)

	if _, err := s.GenerateArticle(context.Background(), 1500); !errors.Is(err, ErrIncompletePlan) {
		t.Fatalf("err = %v, want ErrIncompletePlan", err)
	}
}

func TestGenerateArticle_FailureKeepsState(t *testing.T) {
	fail := true
	s := newTestSession(t, Config{
		Generator: &stubGenerator{
			articleFn: func(topic string, _ plan.ContentPlan, _ int) (string, error) {
				if fail {
					return "", errors.New("model overloaded")
				}
				return "the article", nil
			},
		},
	})
	advanceToPlanned(t, s)
	ctx := context.Background()

	if _, err := s.GenerateArticle(ctx, 1500); err == nil {
		t.Fatal("expected generation error")
	}
	if s.Stage() != StagePlanned || s.Article() != "" {
		t.Error("failed generation mutated session state")
	}

	fail = false
	article, err := s.GenerateArticle(ctx, 1500)
	if err != nil {
		t.Fatalf("GenerateArticle: %v", err)
	}
	if article != "the article" || s.Article() != "the article" {
		t.Errorf("article = %q, stored = %q", article, s.Article())
	}
	if s.Stage() != StageWritten {
		t.Errorf("stage = %v", s.Stage())
	}
}

func TestRegenerate_Overwrites(t *testing.T) {
	n := 0
	s := newTestSession(t, Config{
		Generator: &stubGenerator{
			articleFn: func(string, plan.ContentPlan, int) (string, error) {
				n++
				return fmt.Sprintf("draft %d", n), nil
			},
		},
	})
	advanceToPlanned(t, s)
	ctx := context.Background()

	if _, err := s.GenerateArticle(ctx, 1500); err != nil {
		t.Fatalf("GenerateArticle: %v", err)
	}
	article, err := s.Regenerate(ctx, 800)
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if article != "draft 2" || s.Article() != "draft 2" {
		t.Errorf("regenerate did not overwrite: %q", s.Article())
	}
	if s.Stage() != StageWritten {
		t.Errorf("stage = %v", s.Stage())
	}
}
