package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/draftforge/draftforge/internal/metrics"
	"github.com/draftforge/draftforge/internal/plan"
	"github.com/draftforge/draftforge/internal/prompt"
	"github.com/draftforge/draftforge/internal/scraper"
)

const (
	// DefaultQueryCount is how many search queries a topic expands into.
	DefaultQueryCount = 5
	// DefaultWordCount is the article length target when the caller passes none.
	DefaultWordCount = 1500
	// DefaultMaxAnalysisChars bounds the combined scraped content sent to the
	// analysis prompt. Without a bound, 25 full articles can blow past the
	// model's context window.
	DefaultMaxAnalysisChars = 15000

	truncationMarker      = "... [content truncated]"
	maxHeadingsPerArticle = 10
)

// WriterConfig defines the setup for a Writer.
type WriterConfig struct {
	Client  Client
	Prompts *prompt.Set
	Logger  *slog.Logger
	// MaxAnalysisChars caps the combined content passed to analysis.
	MaxAnalysisChars int
}

// Writer exposes the three completion-backed operations of the pipeline.
// GenerateQueries and AnalyzePlan degrade to deterministic templated values
// instead of failing; GenerateArticle reports failure as an error because an
// article has no usable fallback.
type Writer struct {
	client           Client
	prompts          *prompt.Set
	logger           *slog.Logger
	maxAnalysisChars int
}

// NewWriter creates a Writer around the given completion client.
func NewWriter(cfg WriterConfig) (*Writer, error) {
	if cfg.Client == nil {
		return nil, errors.New("llm: client is required")
	}
	if cfg.Prompts == nil {
		cfg.Prompts = prompt.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxAnalysisChars <= 0 {
		cfg.MaxAnalysisChars = DefaultMaxAnalysisChars
	}
	return &Writer{
		client:           cfg.Client,
		prompts:          cfg.Prompts,
		logger:           cfg.Logger,
		maxAnalysisChars: cfg.MaxAnalysisChars,
	}, nil
}

// FallbackQueries returns the templated queries used when query generation
// cannot produce anything from the model.
func FallbackQueries(topic string) []string {
	return []string{
		topic + " guide",
		topic + " best practices",
		"how to " + topic,
		topic + " tips",
		topic + " examples",
	}
}

// GenerateQueries asks the model for count search queries about topic. The
// result always holds between 1 and count non-empty queries: any transport
// or parse failure substitutes the templated fallbacks.
func (w *Writer) GenerateQueries(ctx context.Context, topic string, count int) []string {
	if count <= 0 {
		count = DefaultQueryCount
	}

	system, user, err := w.prompts.Queries(prompt.QueriesData{Topic: topic, Count: count})
	if err != nil {
		w.logger.Warn("query prompt render failed", "topic", topic, "err", err)
		return w.queryFallback(topic, count)
	}

	raw, err := w.client.CompleteJSON(ctx, Prompt{System: system, User: user})
	if err != nil {
		w.logger.Warn("query generation failed", "topic", topic, "err", err)
		metrics.RecordCompletion("generate_queries", "error")
		return w.queryFallback(topic, count)
	}

	queries, ok := ExtractQueries(raw)
	if !ok {
		w.logger.Warn("query response unparseable", "topic", topic)
		metrics.RecordCompletion("generate_queries", "unparseable")
		return w.queryFallback(topic, count)
	}

	metrics.RecordCompletion("generate_queries", "ok")
	if len(queries) > count {
		queries = queries[:count]
	}
	return queries
}

func (w *Writer) queryFallback(topic string, count int) []string {
	metrics.RecordFallback("generate_queries")
	queries := FallbackQueries(topic)
	if len(queries) > count {
		queries = queries[:count]
	}
	return queries
}

// AnalyzePlan distills the accepted pages into a content plan. Transport
// failure or unusable output degrades to the templated fallback plan; the
// returned plan is always complete.
func (w *Writer) AnalyzePlan(ctx context.Context, topic string, pages []*scraper.Page) plan.ContentPlan {
	combined := CombineContent(pages, w.maxAnalysisChars)

	system, user, err := w.prompts.Analyze(prompt.AnalyzeData{Topic: topic, Content: combined})
	if err != nil {
		w.logger.Warn("analysis prompt render failed", "topic", topic, "err", err)
		metrics.RecordFallback("analyze_content")
		return plan.Fallback(topic)
	}

	raw, err := w.client.CompleteJSON(ctx, Prompt{System: system, User: user})
	if err != nil {
		w.logger.Warn("content analysis failed", "topic", topic, "err", err)
		metrics.RecordCompletion("analyze_content", "error")
		metrics.RecordFallback("analyze_content")
		return plan.Fallback(topic)
	}

	metrics.RecordCompletion("analyze_content", "ok")
	return ExtractPlan(raw, topic)
}

// GenerateArticle drafts the full article from the plan. Unlike the other
// operations there is no usable fallback text, so failure surfaces as an
// error rather than an error-shaped article.
func (w *Writer) GenerateArticle(ctx context.Context, topic string, p plan.ContentPlan, wordCount int) (string, error) {
	if wordCount <= 0 {
		wordCount = DefaultWordCount
	}

	var outline strings.Builder
	for _, section := range p.Outline {
		outline.WriteString("- ")
		outline.WriteString(section)
		outline.WriteString("\n")
	}

	system, user, err := w.prompts.Article(prompt.ArticleData{
		Topic:             topic,
		Title:             p.Title,
		PrimaryKeyword:    p.PrimaryKeyword,
		SecondaryKeywords: strings.Join(p.SecondaryKeywords, ", "),
		Outline:           outline.String(),
		WordCount:         wordCount,
	})
	if err != nil {
		return "", fmt.Errorf("llm: article prompt: %w", err)
	}

	article, err := w.client.Complete(ctx, Prompt{System: system, User: user})
	if err != nil {
		metrics.RecordCompletion("generate_article", "error")
		return "", fmt.Errorf("llm: generate article: %w", err)
	}

	metrics.RecordCompletion("generate_article", "ok")
	return article, nil
}

// CombineContent assembles the analysis prompt body: each page's text under
// an article separator, followed by up to ten of its headings. The result
// is truncated at limit bytes with a deterministic marker.
func CombineContent(pages []*scraper.Page, limit int) string {
	var sb strings.Builder

	article := 0
	for _, page := range pages {
		if page == nil || page.Content == "" {
			continue
		}
		article++

		fmt.Fprintf(&sb, "--- Article %d ---\n\n", article)
		sb.WriteString(page.Content)
		sb.WriteString("\n\n")

		if len(page.Headings) > 0 {
			sb.WriteString("Headings:\n")
			headings := page.Headings
			if len(headings) > maxHeadingsPerArticle {
				headings = headings[:maxHeadingsPerArticle]
			}
			for _, h := range headings {
				sb.WriteString("- ")
				sb.WriteString(h.Text)
				sb.WriteString("\n")
			}
			sb.WriteString("\n\n")
		}
	}

	combined := sb.String()
	if limit > 0 && len(combined) > limit {
		// Back the cut off to a rune boundary so the prompt never ends in
		// a partial UTF-8 sequence.
		cut := limit
		for cut > 0 && !utf8.RuneStart(combined[cut]) {
			cut--
		}
		combined = combined[:cut] + truncationMarker
	}
	return combined
}
