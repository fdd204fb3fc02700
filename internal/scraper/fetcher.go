package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/draftforge/draftforge/internal/fingerprint"
	"github.com/draftforge/draftforge/pkg/httpclient"
	"github.com/draftforge/draftforge/pkg/proxy"
	"github.com/draftforge/draftforge/pkg/useragent"
	"github.com/google/uuid"
)

type contextKey string

const proxyKey contextKey = "proxy_url"

// FetchConfig configures the page fetcher.
type FetchConfig struct {
	// Timeout bounds a single page fetch. Third-party pages hang often
	// enough that the default is a tight 10 seconds.
	Timeout      time.Duration
	MaxRedirects int
	ProxyPool    *proxy.Pool
	UAPool       *useragent.Pool
	Fingerprint  fingerprint.Profile
}

// Fetcher scrapes individual pages into Page records. Scrape never returns
// an error: every failure mode ends up in Page.Error so a bad page cannot
// abort a research run.
type Fetcher struct {
	config FetchConfig
	client *httpclient.Client
}

// NewFetcher initializes a new Fetcher with the given configuration.
func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = 5
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if string(cfg.Fingerprint) == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}

	// One transport per fetcher so connections pool across scrapes. The proxy
	// function reads from the request context, which lets the pool rotate
	// per request without mutating the transport.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if val := req.Context().Value(proxyKey); val != nil {
			if u, ok := val.(*url.URL); ok {
				return u, nil
			}
		}
		if req.URL.Hostname() == "127.0.0.1" || req.URL.Host == "example.com" {
			// Keep system proxies out of local test traffic.
			return nil, nil
		}
		return http.ProxyFromEnvironment(req)
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, proxyFunc)
	if err != nil {
		return nil, fmt.Errorf("scraper: setup transport: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("scraper: create client: %w", err)
	}

	return &Fetcher{
		config: cfg,
		client: client,
	}, nil
}

// Scrape fetches the target URL and extracts its title, main content and
// headings. All failures (transport, HTTP status, bot challenge, empty or
// unparseable body) are reported through Page.Error.
func (f *Fetcher) Scrape(ctx context.Context, targetURL string) *Page {
	start := time.Now()

	page := &Page{
		ID:        uuid.New().String(),
		URL:       targetURL,
		FetchedAt: start.UTC(),
	}

	var activeProxy *url.URL
	if f.config.ProxyPool != nil {
		activeProxy = f.config.ProxyPool.Next()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		page.Error = fmt.Sprintf("failed to create request: %v", err)
		page.Duration = time.Since(start)
		return page
	}

	if activeProxy != nil {
		req = req.WithContext(context.WithValue(req.Context(), proxyKey, activeProxy))
	}

	req.Header.Set("User-Agent", f.config.UAPool.GetSequential())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req.Context(), req)
	if err != nil {
		if activeProxy != nil {
			_ = f.config.ProxyPool.MarkFailure(activeProxy)
		}
		page.Error = fmt.Sprintf("request failed: %v", err)
		page.Duration = time.Since(start)
		return page
	}
	defer resp.Body.Close()

	if activeProxy != nil {
		_ = f.config.ProxyPool.MarkSuccess(activeProxy)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		page.Error = fmt.Sprintf("failed to read body: %v", err)
		page.Duration = time.Since(start)
		return page
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if detected, source := DetectChallenge(resp.StatusCode, resp.Header, body); detected {
			page.Error = fmt.Sprintf("blocked by %s (status %d)", source, resp.StatusCode)
		} else {
			page.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		page.Duration = time.Since(start)
		return page
	}

	if len(body) == 0 {
		page.Error = "empty response content"
		page.Duration = time.Since(start)
		return page
	}

	if err := extract(page, body); err != nil {
		page.Error = fmt.Sprintf("failed to parse html: %v", err)
	}
	page.Duration = time.Since(start)
	return page
}

// ScrapeAll scrapes each URL in order and returns one Page per URL.
func (f *Fetcher) ScrapeAll(ctx context.Context, urls []string) []*Page {
	pages := make([]*Page, 0, len(urls))
	for _, u := range urls {
		pages = append(pages, f.Scrape(ctx, u))
	}
	return pages
}
