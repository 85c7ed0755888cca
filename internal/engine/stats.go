package engine

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/furkancmc/prodrisk/internal/store"
)

// CollectionStats computes coverage statistics for every registered
// embedding collection. A dangling embedding collection (no matching base
// table) is a data-integrity anomaly: it is skipped with a warning, never a
// failure. Collections whose base table is empty are omitted, matching the
// dashboard's expectation of only showing live categories.
func (e *Engine) CollectionStats(ctx context.Context) (map[string]CollectionStats, error) {
	stats := make(map[string]CollectionStats)

	for _, embName := range e.listEmbeddingCollections(ctx) {
		base := strings.TrimSuffix(embName, store.EmbeddingSuffix)

		exists, err := e.store.CollectionExists(ctx, base)
		if err != nil {
			e.log.Warn("stats: existence check failed, skipping",
				slog.String("collection", base), slog.Any("error", err))
			continue
		}
		if !exists {
			e.log.Warn("stats: embedding collection has no base collection",
				slog.String("collection", embName))
			continue
		}

		entry, err := e.collectStats(ctx, base, embName)
		if err != nil {
			e.log.Warn("stats: aggregation failed, skipping",
				slog.String("collection", base), slog.Any("error", err))
			continue
		}
		if entry.TotalProducts == 0 {
			continue
		}
		stats[base] = entry
	}

	return stats, nil
}

// collectStats gathers the counts and averages for one base/embedding pair.
func (e *Engine) collectStats(ctx context.Context, base, embName string) (CollectionStats, error) {
	total, err := e.store.CountRows(ctx, base)
	if err != nil {
		return CollectionStats{}, err
	}
	embCount, err := e.store.CountRows(ctx, embName)
	if err != nil {
		return CollectionStats{}, err
	}

	schema, err := e.schemaFor(ctx, base)
	if err != nil {
		return CollectionStats{}, err
	}

	entry := CollectionStats{
		TotalProducts:   total,
		EmbeddingsCount: embCount,
	}

	if col, ok := schema.fields[fieldPrice]; ok {
		if avg, have, err := e.store.AvgPositive(ctx, base, col); err == nil && have {
			entry.AvgPrice = avg
		}
	}
	if col, ok := schema.fields[fieldRating]; ok {
		if avg, have, err := e.store.AvgPositive(ctx, base, col); err == nil && have {
			entry.AvgRating = avg
		}
	}

	if total > 0 {
		entry.EmbeddingCoverage = round2(float64(embCount) / float64(total) * 100)
	}
	return entry, nil
}

// ListBrands returns the sorted union of distinct brand values across every
// base collection that has a brand column. Per-collection failures are
// logged and skipped.
func (e *Engine) ListBrands(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})

	for _, embName := range e.listEmbeddingCollections(ctx) {
		base := strings.TrimSuffix(embName, store.EmbeddingSuffix)

		schema, err := e.schemaFor(ctx, base)
		if err != nil {
			e.log.Warn("brands: schema probe failed, skipping",
				slog.String("collection", base), slog.Any("error", err))
			continue
		}
		brandCol, ok := schema.fields[fieldBrand]
		if !ok {
			continue
		}

		values, err := e.store.DistinctValues(ctx, base, brandCol)
		if err != nil {
			e.log.Warn("brands: distinct query failed, skipping",
				slog.String("collection", base), slog.Any("error", err))
			continue
		}
		for _, v := range values {
			seen[v] = struct{}{}
		}
	}

	brands := make([]string, 0, len(seen))
	for b := range seen {
		brands = append(brands, b)
	}
	sort.Strings(brands)
	return brands, nil
}

// SalesData builds the dashboard feed: each collection's top-priced rows
// annotated with a quick risk estimate, merged and ordered by price
// descending. Collections without a price column cannot rank and are
// skipped.
func (e *Engine) SalesData(ctx context.Context) ([]SalesEntry, error) {
	var entries []SalesEntry

	for _, embName := range e.listEmbeddingCollections(ctx) {
		base := strings.TrimSuffix(embName, store.EmbeddingSuffix)

		schema, err := e.schemaFor(ctx, base)
		if err != nil {
			e.log.Warn("sales: schema probe failed, skipping",
				slog.String("collection", base), slog.Any("error", err))
			continue
		}
		priceCol, ok := schema.fields[fieldPrice]
		if !ok {
			continue
		}

		projection := presentColumns(schema.fields,
			fieldName, fieldBrand, fieldPrice, fieldRating,
			fieldSeller, fieldStockStatus, fieldAvailability)

		rows, err := e.store.TopPositive(ctx, base, projection, priceCol, 10)
		if err != nil {
			e.log.Warn("sales: top rows query failed, skipping",
				slog.String("collection", base), slog.Any("error", err))
			continue
		}

		for _, row := range rows {
			entries = append(entries, salesEntry(row, schema.fields, base))
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Price > entries[j].Price
	})
	return entries, nil
}

// salesEntry maps one row to a feed entry, substituting placeholders for the
// fields the collection does not carry.
func salesEntry(row map[string]any, fields fieldMap, collection string) SalesEntry {
	price, _, _ := fieldFloat(row, fields, fieldPrice)
	rating, _, _ := fieldFloat(row, fields, fieldRating)

	return SalesEntry{
		ProductName:      stringOr(row, fields, fieldName, "Unknown Product"),
		Brand:            stringOr(row, fields, fieldBrand, "Unknown Brand"),
		Price:            price,
		Rating:           rating,
		Seller:           stringOr(row, fields, fieldSeller, "Unknown Seller"),
		StockStatus:      stringOr(row, fields, fieldStockStatus, "Unknown"),
		Availability:     stringOr(row, fields, fieldAvailability, "Unknown"),
		SourceCollection: collection,
		Progress:         math.Min(100, math.Max(0, rating*20)),
		RiskScore:        quickRiskScore(price, rating),
	}
}

// stringOr resolves a logical string field, falling back when absent or empty.
func stringOr(row map[string]any, fields fieldMap, logical, fallback string) string {
	if v, present := fieldString(row, fields, logical); present && v != "" {
		return v
	}
	return fallback
}

// presentColumns returns the physical columns backing the requested logical
// fields, in the given order, omitting unmapped ones.
func presentColumns(fields fieldMap, logicals ...string) []string {
	var cols []string
	for _, l := range logicals {
		if phys, ok := fields[l]; ok {
			cols = append(cols, phys)
		}
	}
	return cols
}
