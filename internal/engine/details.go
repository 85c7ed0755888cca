package engine

import (
	"context"
	"log/slog"

	"github.com/furkancmc/prodrisk/internal/store"
)

// GetProductDetails resolves the full record for a product and attaches its
// risk analysis. When the base collection has no matching row, the embedding
// sub-collection is consulted and a reduced record with a neutral risk
// analysis is returned, explicitly marked as such. A (nil, nil) return means
// the id exists in neither place: not-found is a normal outcome, not an
// error.
//
// The collection name may come from a request, so it is validated against
// the catalog before any statement references it.
func (e *Engine) GetProductDetails(ctx context.Context, productID, collection string) (*ProductDetails, error) {
	exists, err := e.store.CollectionExists(ctx, collection)
	if err != nil {
		return nil, err
	}

	if exists {
		details, err := e.lookupBase(ctx, productID, collection)
		if err != nil {
			return nil, err
		}
		if details != nil {
			return details, nil
		}
	}

	// The base row is missing (or the base collection itself is a dangling
	// reference). Fall back to the embedding sub-collection.
	return e.lookupReduced(ctx, productID, collection)
}

// lookupBase fetches the full row from the base collection and scores it.
func (e *Engine) lookupBase(ctx context.Context, productID, collection string) (*ProductDetails, error) {
	schema, err := e.schemaFor(ctx, collection)
	if err != nil {
		return nil, err
	}
	idCol, ok := schema.fields[fieldID]
	if !ok {
		e.log.Warn("details: collection has no identifier column",
			slog.String("collection", collection),
		)
		return nil, nil
	}

	row, err := e.store.LookupRow(ctx, collection, schema.columns, idCol, productID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	return &ProductDetails{
		Collection: collection,
		Fields:     row,
		Risk:       e.scoreRow(ctx, collection, schema.fields, row),
	}, nil
}

// lookupReduced builds the reduced record from the embedding sub-collection.
func (e *Engine) lookupReduced(ctx context.Context, productID, collection string) (*ProductDetails, error) {
	embName := collection + store.EmbeddingSuffix
	exists, err := e.store.CollectionExists(ctx, embName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	row, err := e.store.LookupEmbedding(ctx, embName, productID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	e.log.Info("details: base row missing, returning reduced record",
		slog.String("collection", collection),
		slog.String("product_id", productID),
	)

	return &ProductDetails{
		Collection: collection,
		Fields: map[string]any{
			"product_id":  row.ProductID,
			"name":        row.ProductName,
			"description": row.CombinedText,
			"created_at":  row.CreatedAt,
		},
		Risk:        neutralRiskAnalysis(),
		ReducedData: true,
	}, nil
}

// scoreRow computes the three risk sub-scores for a resolved row. Each
// sub-score degrades to its neutral default when the aggregate it needs
// cannot be computed; scoring never fails the lookup.
func (e *Engine) scoreRow(ctx context.Context, collection string, fields fieldMap, row map[string]any) RiskAnalysis {
	price, _, _ := fieldFloat(row, fields, fieldPrice)
	rating, _, _ := fieldFloat(row, fields, fieldRating)

	return newRiskAnalysis(
		e.priceRiskFor(ctx, collection, fields, price),
		ratingRisk(rating),
		e.competitionRiskFor(ctx, collection, fields, row),
	)
}

// priceRiskFor scores the price against the collection's current average.
// No price column, no positive prices, or an aggregate failure all yield the
// neutral score.
func (e *Engine) priceRiskFor(ctx context.Context, collection string, fields fieldMap, price float64) float64 {
	priceCol, ok := fields[fieldPrice]
	if !ok {
		return 5.0
	}
	avg, haveAvg, err := e.store.AvgPositive(ctx, collection, priceCol)
	if err != nil {
		e.log.Warn("risk: price average failed, using neutral score",
			slog.String("collection", collection),
			slog.Any("error", err),
		)
		return 5.0
	}
	return priceRisk(price, avg, haveAvg)
}

// competitionRiskFor scores brand saturation via a case-insensitive substring
// count over the collection's brand column. No brand column or a count
// failure yields the neutral score.
func (e *Engine) competitionRiskFor(ctx context.Context, collection string, fields fieldMap, row map[string]any) float64 {
	brandCol, ok := fields[fieldBrand]
	if !ok {
		return 5.0
	}
	brand, _ := fieldString(row, fields, fieldBrand)
	count, err := e.store.CountContaining(ctx, collection, brandCol, brand)
	if err != nil {
		e.log.Warn("risk: brand count failed, using neutral score",
			slog.String("collection", collection),
			slog.Any("error", err),
		)
		return 5.0
	}
	return competitionRisk(count)
}
