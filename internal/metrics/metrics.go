package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftforge_search_requests_total",
			Help: "Total number of web search requests executed",
		},
		[]string{"outcome"},
	)

	ScrapePagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftforge_scrape_pages_total",
			Help: "Total number of pages scraped during research",
		},
		[]string{"domain", "outcome"},
	)

	ScrapeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "draftforge_scrape_duration_seconds",
			Help:    "Duration of page scrapes in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"domain"},
	)

	CompletionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftforge_completion_requests_total",
			Help: "Total number of chat-completion calls by operation",
		},
		[]string{"operation", "outcome"},
	)

	CompletionFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftforge_completion_fallbacks_total",
			Help: "Completion calls that degraded to a templated fallback value",
		},
		[]string{"operation"},
	)
)

// Scrape outcome labels.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// RecordSearch counts one search round.
func RecordSearch(outcome string) {
	SearchRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordScrape counts one scraped page and its duration.
func RecordScrape(domain, outcome string, duration time.Duration) {
	ScrapePagesTotal.WithLabelValues(domain, outcome).Inc()
	ScrapeDuration.WithLabelValues(domain).Observe(duration.Seconds())
}

// RecordCompletion counts one chat-completion call.
func RecordCompletion(operation, outcome string) {
	CompletionRequestsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordFallback counts a completion call that fell back to a templated value.
func RecordFallback(operation string) {
	CompletionFallbacksTotal.WithLabelValues(operation).Inc()
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		// Suppress the error from intentional shutdown
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
