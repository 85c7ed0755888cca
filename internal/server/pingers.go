package server

import (
	"context"
	"fmt"

	"github.com/furkancmc/prodrisk/internal/engine"
	"github.com/furkancmc/prodrisk/internal/store"
)

// StorePinger probes the product catalog database. It satisfies the Pinger
// interface and is used by GET /api/ready.
type StorePinger struct {
	// store is the catalog store to probe.
	store *store.Store
}

// NewStorePinger constructs a StorePinger for the given store.
func NewStorePinger(st *store.Store) *StorePinger {
	return &StorePinger{store: st}
}

// Name returns the dependency label used in readiness responses.
func (p *StorePinger) Name() string { return "store" }

// Ping verifies the catalog database answers a connection check.
func (p *StorePinger) Ping(ctx context.Context) error {
	if err := p.store.Ping(ctx); err != nil {
		return fmt.Errorf("catalog unreachable: %w", err)
	}
	return nil
}

// EncoderPinger probes the embedding backend by encoding a minimal probe
// text. It satisfies the Pinger interface and is used by GET /api/ready.
type EncoderPinger struct {
	// encoder is the embedding backend to probe.
	encoder engine.Encoder
}

// NewEncoderPinger constructs an EncoderPinger for the given encoder.
func NewEncoderPinger(enc engine.Encoder) *EncoderPinger {
	return &EncoderPinger{encoder: enc}
}

// Name returns the dependency label used in readiness responses.
func (p *EncoderPinger) Name() string { return "encoder" }

// Ping sends a single short encode request to the backend.
func (p *EncoderPinger) Ping(ctx context.Context) error {
	vec, err := p.encoder.Encode(ctx, "ping")
	if err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}
	if len(vec) == 0 {
		return fmt.Errorf("encode returned an empty vector")
	}
	return nil
}
