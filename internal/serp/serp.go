package serp

import "context"

// Result represents a single organic result from a web search.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Options localizes a search round. Zero values fall back to the defaults
// used throughout research (US, English, 5 results).
type Options struct {
	Country  string
	Language string
	Limit    int
}

// Provider abstracts a search engine that can return organic results for a
// query. Implementations fail soft: a transport or API problem produces an
// empty result set, never an error to the caller. Research treats an empty
// round as "nothing worth scraping for this query" and moves on.
type Provider interface {
	Search(ctx context.Context, query string, opts Options) []Result
}
