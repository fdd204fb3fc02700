package serp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/draftforge/draftforge/internal/metrics"
	"github.com/draftforge/draftforge/pkg/httpclient"
)

const defaultEndpoint = "https://google.serper.dev/search"

// Config defines the setup for the Serper client.
type Config struct {
	// APIKey for the search API. Falls back to the SERPER_API_KEY
	// environment variable.
	APIKey   string
	Endpoint string
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Serper queries the serper.dev search API.
type Serper struct {
	cfg    Config
	client *httpclient.Client
	logger *slog.Logger
}

var _ Provider = (*Serper)(nil)

// searchRequest is the wire payload the search API expects.
type searchRequest struct {
	Query    string `json:"q"`
	Country  string `json:"gl"`
	Language string `json:"hl"`
	Num      int    `json:"num"`
}

// searchResponse carries the part of the API response we consume. A missing
// or non-list "organic" field decodes to nil and is treated as zero results.
type searchResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// NewSerper creates a search client. The API key may be empty here; requests
// without a key will fail soft at search time like any other API error.
func NewSerper(cfg Config) (*Serper, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("SERPER_API_KEY")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	client, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("serp: create client: %w", err)
	}

	return &Serper{
		cfg:    cfg,
		client: client,
		logger: cfg.Logger,
	}, nil
}

// Search posts the query to the search API and returns the organic results.
// Results without a link are dropped. Any failure logs the cause and returns
// an empty slice.
func (s *Serper) Search(ctx context.Context, query string, opts Options) []Result {
	results, err := s.search(ctx, query, opts)
	if err != nil {
		s.logger.Warn("search failed", "query", query, "err", err)
		metrics.RecordSearch("error")
		return nil
	}
	if len(results) == 0 {
		metrics.RecordSearch("empty")
		return nil
	}
	metrics.RecordSearch("ok")
	return results
}

func (s *Serper) search(ctx context.Context, query string, opts Options) ([]Result, error) {
	if opts.Country == "" {
		opts.Country = "us"
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	if opts.Limit <= 0 {
		opts.Limit = 5
	}

	payload, err := json.Marshal(searchRequest{
		Query:    query,
		Country:  opts.Country,
		Language: opts.Language,
		Num:      opts.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("serp: encode request: %w", err)
	}

	resp, err := s.client.PostJSON(ctx, s.cfg.Endpoint, payload, map[string]string{
		"X-API-KEY": s.cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("serp: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("serp: unexpected status %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("serp: decode response: %w", err)
	}

	results := make([]Result, 0, len(decoded.Organic))
	for _, org := range decoded.Organic {
		if org.Link == "" {
			continue
		}
		results = append(results, Result{
			Title:   org.Title,
			URL:     org.Link,
			Snippet: org.Snippet,
		})
	}
	return results, nil
}
