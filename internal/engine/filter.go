package engine

import (
	"context"
	"log/slog"
	"strings"
)

// SearchWithFilters runs a search restricted to the given collections (all
// collections when nil), enriches each candidate with its resolved details,
// and applies the optional filter predicates. Enrichment is the
// expensive step (one detail round trip per candidate), so the raw search
// over-fetches twice the limit and accumulation stops as soon as limit
// results pass.
//
// With no filters set, every candidate is still enriched but none are
// dropped. Filters operate on enriched fields (price, rating, brand) that do
// not exist at the raw-search stage.
func (e *Engine) SearchWithFilters(ctx context.Context, query string, collections []string, filters *Filters, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		return nil, nil
	}

	candidates, err := e.Search(ctx, query, collections, limit*2)
	if err != nil {
		return nil, err
	}

	filtering := !filters.Empty()
	out := make([]SearchResult, 0, limit)

	for _, cand := range candidates {
		if len(out) >= limit {
			break
		}

		details, err := e.GetProductDetails(ctx, cand.ProductID, cand.SourceCollection)
		if err != nil {
			e.log.Warn("filter: detail enrichment failed, skipping candidate",
				slog.String("product_id", cand.ProductID),
				slog.String("collection", cand.SourceCollection),
				slog.Any("error", err),
			)
			continue
		}

		if !filtering {
			// Enrichment-only pass: candidates survive even when no details
			// could be resolved.
			cand.Details = details
			out = append(out, cand)
			continue
		}

		if details == nil {
			continue
		}
		if !e.passesFilters(ctx, details, filters) {
			continue
		}
		cand.Details = details
		out = append(out, cand)
	}

	return out, nil
}

// passesFilters evaluates the predicate set against an enriched record.
// Missing or unparseable values pass their predicate: on sparse heterogeneous
// data, excluding a record because a field is absent would over-filter.
func (e *Engine) passesFilters(ctx context.Context, details *ProductDetails, f *Filters) bool {
	fields := e.filterFields(ctx, details)

	if f.PriceMin != nil || f.PriceMax != nil {
		price, ok, present := fieldFloat(details.Fields, fields, fieldPrice)
		if present && ok {
			if f.PriceMin != nil && price < *f.PriceMin {
				return false
			}
			if f.PriceMax != nil && price > *f.PriceMax {
				return false
			}
		}
	}

	if f.RatingMin != nil {
		rating, ok, present := fieldFloat(details.Fields, fields, fieldRating)
		if present && ok && rating < *f.RatingMin {
			return false
		}
	}

	if len(f.Brands) > 0 {
		brand, present := fieldString(details.Fields, fields, fieldBrand)
		if present && !brandMatches(brand, f.Brands) {
			return false
		}
	}

	return true
}

// filterFields resolves the logical field map for a record. Reduced records
// carry fixed embedding-table columns, so an empty map (everything absent,
// everything passes) is the right degradation when the base schema is not
// probeable.
func (e *Engine) filterFields(ctx context.Context, details *ProductDetails) fieldMap {
	if details.ReducedData {
		return fieldMap{}
	}
	schema, err := e.schemaFor(ctx, details.Collection)
	if err != nil {
		e.log.Warn("filter: schema probe failed, treating fields as absent",
			slog.String("collection", details.Collection),
			slog.Any("error", err),
		)
		return fieldMap{}
	}
	return schema.fields
}

// brandMatches reports whether brand equals any allowed brand, compared
// case-insensitively. Unlike the competition-risk count this is an exact
// match: the two call sites intentionally differ.
func brandMatches(brand string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(brand, a) {
			return true
		}
	}
	return false
}
