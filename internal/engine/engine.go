// Package engine implements the product retrieval and risk-scoring core:
// multi-collection similarity search, detail resolution with risk analysis,
// post-enrichment filtering, and per-collection statistics. The engine only
// reads from the catalog; ingestion is owned elsewhere.
//
// Per-row and per-collection failures are absorbed here with a warning log so
// one malformed vector or one broken collection never aborts a whole
// operation. Only true unavailability of the store or the encoder surfaces to
// callers, and only at construction time.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/furkancmc/prodrisk/internal/store"
)

// Default search tuning. The values mirror long-standing production behavior
// and are overridable through Config; they are recall-oriented because the
// similarity pass is a re-ranking stage, not the final filter.
const (
	// DefaultThreshold is the minimum cosine similarity (exclusive) a
	// candidate must exceed to survive the per-collection scan.
	DefaultThreshold = 0.05
	// DefaultScanCap bounds how many embedding rows are scanned per
	// collection in a single search.
	DefaultScanCap = 200
)

// Encoder converts text into a dense embedding vector of a fixed,
// encoder-defined dimension. Implementations must be safe for concurrent use
// and must not error on empty or whitespace input — they return a zero vector
// of the expected dimension instead.
type Encoder interface {
	// Encode returns the embedding for the given text.
	Encode(ctx context.Context, text string) ([]float64, error)
}

// Config holds the engine's tunable search parameters.
type Config struct {
	// Threshold is the acceptance similarity; candidates at or below it are
	// dropped. Zero means DefaultThreshold.
	Threshold float64
	// ScanCap is the per-collection embedding scan bound. Zero or negative
	// means DefaultScanCap.
	ScanCap int
}

// Engine ties the catalog store and the encoder together. It holds no
// per-request state; a single instance serves concurrent requests.
type Engine struct {
	// store is the read-only product catalog.
	store *store.Store
	// encoder produces query embeddings.
	encoder Encoder
	// cfg holds the resolved search tuning.
	cfg Config
	// log is the structured logger for recovered per-item failures.
	log *slog.Logger
	// fields caches the per-collection logical-to-physical column mapping.
	fields *fieldCache
}

// New constructs an Engine and verifies both collaborators are reachable.
// A store that cannot be pinged or an encoder that cannot produce a probe
// vector fails construction: the engine never partially initializes.
func New(ctx context.Context, st *store.Store, enc Encoder, cfg Config, log *slog.Logger) (*Engine, error) {
	if st == nil {
		return nil, fmt.Errorf("engine: store must not be nil")
	}
	if enc == nil {
		return nil, fmt.Errorf("engine: encoder must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.ScanCap <= 0 {
		cfg.ScanCap = DefaultScanCap
	}

	if err := st.Ping(ctx); err != nil {
		return nil, fmt.Errorf("engine: storage unavailable: %w", err)
	}
	if _, err := enc.Encode(ctx, "ping"); err != nil {
		return nil, fmt.Errorf("engine: encoder unavailable: %w", err)
	}

	return &Engine{
		store:   st,
		encoder: enc,
		cfg:     cfg,
		log:     log,
		fields:  newFieldCache(),
	}, nil
}

// Store returns the underlying catalog store, for readiness probes.
func (e *Engine) Store() *store.Store { return e.store }
