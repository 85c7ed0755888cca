package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/furkancmc/prodrisk/internal/engine"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8090).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// MetricsRegistry receives the server's Prometheus metrics. If nil,
	// prometheus.DefaultRegisterer is used.
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer backs the GET /metrics endpoint. If nil,
	// prometheus.DefaultGatherer is used.
	MetricsGatherer prometheus.Gatherer
}

// riskEngine is the interface the handlers call into the search core.
// *engine.Engine satisfies it; tests inject a fake.
type riskEngine interface {
	SearchWithFilters(ctx context.Context, query string, collections []string, filters *engine.Filters, limit int) ([]engine.SearchResult, error)
	GetProductDetails(ctx context.Context, productID, collection string) (*engine.ProductDetails, error)
	CollectionStats(ctx context.Context) (map[string]engine.CollectionStats, error)
	ListBrands(ctx context.Context) ([]string, error)
	SalesData(ctx context.Context) ([]engine.SalesEntry, error)
}

// Server is the HTTP server that exposes the risk engine.
type Server struct {
	// risk is the search and risk-scoring core behind every handler.
	risk riskEngine
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// searchRequest is the JSON body for POST /api/search.
type searchRequest struct {
	// Query is the free-text product search query.
	Query string `json:"query"`
	// Collections optionally restricts the search to the named categories.
	Collections []string `json:"collections,omitempty"`
	// Limit is the maximum number of results (default 10).
	Limit int `json:"limit,omitempty"`
	// PriceMin keeps only results priced at or above this value.
	PriceMin *float64 `json:"price_min,omitempty"`
	// PriceMax keeps only results priced at or below this value.
	PriceMax *float64 `json:"price_max,omitempty"`
	// RatingMin keeps only results rated at or above this value.
	RatingMin *float64 `json:"rating_min,omitempty"`
	// Brands keeps only results whose brand matches one of these values.
	Brands []string `json:"brands,omitempty"`
}

// searchResponse is the JSON response for POST /api/search.
type searchResponse struct {
	// Query echoes the search query.
	Query string `json:"query"`
	// Count is the number of results returned.
	Count int `json:"count"`
	// Results are the ranked matches.
	Results []engine.SearchResult `json:"results"`
}

// brandsResponse is the JSON response for GET /api/brands.
type brandsResponse struct {
	// Brands is the sorted list of distinct brands across all categories.
	Brands []string `json:"brands"`
}

// salesResponse is the JSON response for GET /api/sales.
type salesResponse struct {
	// Sales is the dashboard feed, ordered by price descending.
	Sales []engine.SalesEntry `json:"sales"`
	// Count is the number of feed entries.
	Count int `json:"count"`
}

// errorResponse is the JSON body for all error statuses.
type errorResponse struct {
	// Error is the human-readable failure reason.
	Error string `json:"error"`
}
