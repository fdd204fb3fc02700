package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/draftforge/draftforge/internal/pipeline"
	"github.com/draftforge/draftforge/internal/scraper"
)

// Summary contains aggregated metrics about one research run.
type Summary struct {
	Topic      string                `json:"topic"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Duration   time.Duration         `json:"duration"`
	Queries    int                   `json:"queries"`
	Results    int                   `json:"results"`
	Accepted   int                   `json:"accepted"`
	Rejected   int                   `json:"rejected"`
	Failed     int                   `json:"failed"`
	TotalBytes int64                 `json:"total_bytes"`
	PerQuery   []pipeline.QueryStats `json:"per_query"`
}

// Generate aggregates a session's research stats and accepted pages into a
// Summary.
func Generate(topic string, stats pipeline.ResearchStats, pages []*scraper.Page) Summary {
	s := Summary{
		Topic:      topic,
		StartedAt:  stats.StartedAt,
		FinishedAt: stats.FinishedAt,
		Duration:   stats.FinishedAt.Sub(stats.StartedAt),
		PerQuery:   stats.Queries,
	}

	for _, q := range stats.Queries {
		s.Queries++
		s.Results += q.Results
		s.Accepted += q.Accepted
		s.Rejected += q.Rejected
		s.Failed += q.Failed
	}
	for _, p := range pages {
		s.TotalBytes += int64(len(p.Content))
	}
	return s
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

// WriteText writes a human-readable research summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `Research Summary: {{.Topic}}
-----------------------------
Time:       {{.StartedAt.Format "2006-01-02 15:04:05"}} - {{.FinishedAt.Format "2006-01-02 15:04:05"}}
Duration:   {{.Duration}}
Queries:    {{.Queries}}
Results:    {{.Results}}
Accepted:   {{.Accepted}}
Rejected:   {{.Rejected}}
Failed:     {{.Failed}}
Content:    {{.TotalBytes}} bytes

Per query:
{{- range .PerQuery}}
  {{.Query}}: {{.Results}} results, {{.Accepted}} accepted, {{.Rejected}} rejected, {{.Failed}} failed
{{- else}}
  None
{{- end}}
`

	t, err := template.New("textReport").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("report: parse template: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: render text: %w", err)
	}
	return nil
}
