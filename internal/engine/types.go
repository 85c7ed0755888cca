package engine

// SearchResult is one ranked candidate produced by a search. It is built per
// request and never persisted.
type SearchResult struct {
	// ProductID identifies the product in its source collection.
	ProductID string `json:"product_id"`
	// ProductName is the denormalized name captured at embed time.
	ProductName string `json:"product_name"`
	// CombinedText is the text the stored embedding was computed from.
	CombinedText string `json:"combined_text"`
	// Similarity is the cosine similarity to the query, in (threshold, 1].
	Similarity float64 `json:"similarity"`
	// SourceCollection is the base collection name (embedding suffix removed).
	SourceCollection string `json:"source_collection"`
	// Details carries the enriched record when the caller requested
	// enrichment; nil otherwise.
	Details *ProductDetails `json:"product_details,omitempty"`
}

// RiskAnalysis is the deterministic multi-factor risk assessment of one
// product, computed fresh from the current collection aggregates.
type RiskAnalysis struct {
	// PriceRisk scores the product's price position against the collection
	// average, in [0, 10].
	PriceRisk float64 `json:"price_risk"`
	// RatingRisk scores the customer rating, in [0, 10]; lower ratings score
	// higher risk.
	RatingRisk float64 `json:"rating_risk"`
	// CompetitionRisk scores brand saturation in the collection, in [0, 10].
	CompetitionRisk float64 `json:"competition_risk"`
	// OverallRisk is the mean of the three sub-scores, rounded to 2 decimals.
	OverallRisk float64 `json:"overall_risk"`
	// RiskLevel buckets OverallRisk: very-low, low, medium, or high.
	RiskLevel string `json:"risk_level"`
	// SellerRecommendation is the fixed guidance text for the risk level.
	SellerRecommendation string `json:"seller_recommendation"`
}

// ProductDetails is a fully resolved product record with its risk analysis.
type ProductDetails struct {
	// Collection is the base collection the record belongs to.
	Collection string `json:"collection"`
	// Fields holds the raw row keyed by physical column name. For reduced
	// records it carries only the embedding-table columns.
	Fields map[string]any `json:"fields"`
	// Risk is the computed risk analysis.
	Risk RiskAnalysis `json:"risk_analysis"`
	// ReducedData marks a record recovered from the embedding sub-collection
	// because the base row was missing. Its risk analysis is neutral and
	// carries lower confidence.
	ReducedData bool `json:"reduced_data,omitempty"`
}

// Filters is the optional post-enrichment predicate set. A nil pointer field
// (or empty brand list) means no constraint on that dimension.
type Filters struct {
	// PriceMin excludes records with a resolvable price below it.
	PriceMin *float64 `json:"price_min,omitempty"`
	// PriceMax excludes records with a resolvable price above it.
	PriceMax *float64 `json:"price_max,omitempty"`
	// RatingMin excludes records with a resolvable rating below it.
	RatingMin *float64 `json:"rating_min,omitempty"`
	// Brands, when non-empty, keeps only records whose brand matches one of
	// the entries case-insensitively (exact match, not substring).
	Brands []string `json:"brands,omitempty"`
}

// Empty reports whether no predicate is set.
func (f *Filters) Empty() bool {
	return f == nil ||
		(f.PriceMin == nil && f.PriceMax == nil && f.RatingMin == nil && len(f.Brands) == 0)
}

// CollectionStats summarizes one collection's size and embedding coverage.
type CollectionStats struct {
	// TotalProducts is the base collection row count.
	TotalProducts int `json:"total_products"`
	// EmbeddingsCount is the embedding sub-collection row count.
	EmbeddingsCount int `json:"embeddings_count"`
	// AvgPrice is the average over strictly positive prices, 0 if none.
	AvgPrice float64 `json:"avg_price"`
	// AvgRating is the average over strictly positive ratings, 0 if none.
	AvgRating float64 `json:"avg_rating"`
	// EmbeddingCoverage is EmbeddingsCount / TotalProducts in percent,
	// rounded to 2 decimals, 0 when the base collection is empty.
	EmbeddingCoverage float64 `json:"embedding_coverage"`
}

// SalesEntry is one row of the dashboard sales feed: a top-priced product
// with a cheap two-factor risk estimate.
type SalesEntry struct {
	ProductName      string  `json:"product_name"`
	Brand            string  `json:"brand"`
	Price            float64 `json:"price"`
	Rating           float64 `json:"rating"`
	Seller           string  `json:"seller"`
	StockStatus      string  `json:"stock_status"`
	Availability     string  `json:"availability"`
	SourceCollection string  `json:"source_collection"`
	// Progress renders the rating as a 0-100 bar (rating * 20, clamped).
	Progress float64 `json:"progress"`
	// RiskScore is the quick price/rating risk estimate, 1 decimal.
	RiskScore float64 `json:"risk_score"`
}
