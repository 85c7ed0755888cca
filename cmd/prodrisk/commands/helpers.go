package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/furkancmc/prodrisk/internal/embedder"
	"github.com/furkancmc/prodrisk/internal/engine"
	"github.com/furkancmc/prodrisk/internal/store"
)

// buildEngine opens the catalog store, constructs the configured embedding
// backend, and assembles the risk engine. The returned store must be closed
// by the caller when the command finishes.
func buildEngine(ctx context.Context, log *slog.Logger) (*engine.Engine, *store.Store, engine.Encoder, error) {
	dbPath := os.Getenv("PRODRISK_DB")
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("resolve catalog path: %w", err)
		}
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open catalog: %w", err)
	}

	enc, err := embedder.NewFromEnv()
	if err != nil {
		_ = st.Close()
		return nil, nil, nil, fmt.Errorf("initialise embedding backend: %w", err)
	}

	eng, err := engine.New(ctx, st, enc, engine.Config{
		Threshold: envFloat("SEARCH_THRESHOLD", 0),
		ScanCap:   envInt("SEARCH_SCAN_CAP", 0),
	}, log)
	if err != nil {
		_ = st.Close()
		return nil, nil, nil, fmt.Errorf("initialise engine: %w", err)
	}

	log.Info("engine ready", slog.String("catalog", dbPath))
	return eng, st, enc, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// envFloat returns the float value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// envInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
