// Package llm wraps a chat-completion API with the three operations the
// writing pipeline needs: query generation, content analysis, and article
// drafting. Model output is never trusted: JSON responses go through an
// ordered recovery cascade, and every operation that can degrade has a
// deterministic templated fallback.
package llm

import "context"

// Prompt is a system/user message pair sent to the model.
type Prompt struct {
	System string
	User   string
}

// Client abstracts the chat-completion API so tests can stub it out.
type Client interface {
	// Complete requests free-text output.
	Complete(ctx context.Context, p Prompt) (string, error)
	// CompleteJSON requests structured JSON output. Even with the format
	// flag set, callers must assume the result may not be valid JSON.
	CompleteJSON(ctx context.Context, p Prompt) (string, error)
}
