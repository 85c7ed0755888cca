package engine

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/furkancmc/prodrisk/internal/store"
	"github.com/furkancmc/prodrisk/internal/vector"
)

// Search runs a similarity search for query across the given embedding
// collections, or across every registered one when collections is nil.
// Results are merged, ranked by descending similarity, and truncated to
// limit. A failure inside one collection is logged and skipped; the search
// never fails for lack of results, it returns an empty slice.
func (e *Engine) Search(ctx context.Context, query string, collections []string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		return nil, nil
	}

	queryVec := e.encodeQuery(ctx, query)

	if collections == nil {
		collections = e.listEmbeddingCollections(ctx)
	} else {
		collections = e.resolveRequested(ctx, collections)
	}
	if len(collections) == 0 {
		e.log.Warn("search: no embedding collections available")
		return nil, nil
	}

	// Fan out per collection. Lookups are independent and failure-isolated;
	// per-collection result order does not matter because everything is
	// re-sorted globally below, but the slices are merged in collection
	// order to keep the final ordering deterministic.
	perCollection := make([][]SearchResult, len(collections))
	var wg sync.WaitGroup
	for i, coll := range collections {
		wg.Add(1)
		go func(i int, coll string) {
			defer wg.Done()
			results, err := e.scanCollection(ctx, coll, queryVec)
			if err != nil {
				e.log.Warn("search: collection scan failed, skipping",
					slog.String("collection", coll),
					slog.Any("error", err),
				)
				return
			}
			perCollection[i] = results
		}(i, coll)
	}
	wg.Wait()

	var merged []SearchResult
	for _, results := range perCollection {
		merged = append(merged, results...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Similarity > merged[j].Similarity
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// scanCollection scores every embedded row of one collection against the
// query vector, keeping candidates strictly above the threshold. Rows whose
// stored vector cannot be parsed are skipped.
func (e *Engine) scanCollection(ctx context.Context, collection string, queryVec []float64) ([]SearchResult, error) {
	rows, err := e.store.ScanEmbeddings(ctx, collection, e.cfg.ScanCap)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(collection, store.EmbeddingSuffix)
	skipped := 0

	var out []SearchResult
	for _, row := range rows {
		stored := vector.ParseStored(row.Raw)
		if stored == nil {
			skipped++
			continue
		}
		sim := vector.Cosine(queryVec, stored)
		if sim > e.cfg.Threshold {
			out = append(out, SearchResult{
				ProductID:        row.ProductID,
				ProductName:      row.ProductName,
				CombinedText:     row.CombinedText,
				Similarity:       sim,
				SourceCollection: base,
			})
		}
	}

	if skipped > 0 {
		e.log.Warn("search: skipped rows with unparseable embeddings",
			slog.String("collection", collection),
			slog.Int("skipped", skipped),
		)
	}
	return out, nil
}

// encodeQuery produces the query embedding. Encoding failure degrades the
// search instead of aborting it: a nil vector scores zero against everything,
// so nothing passes the threshold and the caller gets an empty result.
func (e *Engine) encodeQuery(ctx context.Context, query string) []float64 {
	vec, err := e.encoder.Encode(ctx, query)
	if err != nil {
		e.log.Warn("search: query encoding failed, degrading to empty result",
			slog.Any("error", err),
		)
		return nil
	}
	return vec
}

// listEmbeddingCollections resolves the registry. A catalog failure degrades
// to an empty list rather than failing the caller.
func (e *Engine) listEmbeddingCollections(ctx context.Context) []string {
	names, err := e.store.ListEmbeddingCollections(ctx)
	if err != nil {
		e.log.Warn("search: could not list embedding collections",
			slog.Any("error", err),
		)
		return nil
	}
	return names
}

// resolveRequested normalizes caller-supplied collection names (base or
// embedding form) and drops any that do not exist in the catalog. Names from
// requests are never trusted into a statement without this existence check.
func (e *Engine) resolveRequested(ctx context.Context, requested []string) []string {
	var out []string
	for _, name := range requested {
		if !strings.HasSuffix(name, store.EmbeddingSuffix) {
			name += store.EmbeddingSuffix
		}
		exists, err := e.store.CollectionExists(ctx, name)
		if err != nil {
			e.log.Warn("search: collection existence check failed, skipping",
				slog.String("collection", name),
				slog.Any("error", err),
			)
			continue
		}
		if !exists {
			e.log.Warn("search: requested collection not found, skipping",
				slog.String("collection", name),
			)
			continue
		}
		out = append(out, name)
	}
	return out
}
