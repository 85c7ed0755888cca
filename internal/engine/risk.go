package engine

import "math"

// Risk level buckets, derived from the composite score.
const (
	RiskHigh    = "high"
	RiskMedium  = "medium"
	RiskLow     = "low"
	RiskVeryLow = "very-low"
)

// sellerRecommendations is the fixed guidance text per risk level. The
// bucket boundaries are the contract; the wording is presentation.
var sellerRecommendations = map[string]string{
	RiskHigh:    "Not recommended for sale: high risk factors present.",
	RiskMedium:  "Sell with caution: evaluate the risk factors first.",
	RiskLow:     "Suitable for sale: reasonable risk level.",
	RiskVeryLow: "Recommended product: low risk, high potential.",
}

// reducedDataRecommendation annotates the neutral analysis attached to
// records recovered from an embedding sub-collection.
const reducedDataRecommendation = "Derived from embedding data only. Match the product with its source collection for a full analysis."

// priceRisk scores how far the price sits from the collection average.
// Overpriced items risk being uncompetitive, heavily underpriced ones risk
// looking suspicious or leaving no margin. haveAvg is false when the
// collection has no positive prices to average; the score is then neutral.
func priceRisk(price, avg float64, haveAvg bool) float64 {
	if !haveAvg {
		return 5.0
	}
	switch {
	case price > avg*1.5:
		return 8.0
	case price > avg*1.2:
		return 6.0
	case price < avg*0.8:
		return 4.0
	default:
		return 3.0
	}
}

// ratingRisk maps a 0-5 customer rating to risk. Monotonically decreasing:
// a lower rating always scores at least as risky as a higher one.
func ratingRisk(rating float64) float64 {
	switch {
	case rating >= 4.5:
		return 2.0
	case rating >= 4.0:
		return 3.0
	case rating >= 3.5:
		return 5.0
	case rating >= 3.0:
		return 7.0
	default:
		return 9.0
	}
}

// competitionRisk scores brand saturation: the more rows in the collection
// carry this brand, the more competitive pressure on the seller.
func competitionRisk(brandCount int) float64 {
	switch {
	case brandCount > 50:
		return 8.0
	case brandCount > 20:
		return 6.0
	case brandCount > 10:
		return 4.0
	default:
		return 2.0
	}
}

// riskLevel buckets a composite score into the four levels.
func riskLevel(overall float64) string {
	switch {
	case overall >= 7:
		return RiskHigh
	case overall >= 5:
		return RiskMedium
	case overall >= 3:
		return RiskLow
	default:
		return RiskVeryLow
	}
}

// newRiskAnalysis assembles the full analysis from the three sub-scores.
func newRiskAnalysis(price, rating, competition float64) RiskAnalysis {
	overall := round2((price + rating + competition) / 3)
	level := riskLevel(overall)
	return RiskAnalysis{
		PriceRisk:            price,
		RatingRisk:           rating,
		CompetitionRisk:      competition,
		OverallRisk:          overall,
		RiskLevel:            level,
		SellerRecommendation: sellerRecommendations[level],
	}
}

// neutralRiskAnalysis is the mid-range analysis attached to reduced records,
// where no collection aggregates are available to score against.
func neutralRiskAnalysis() RiskAnalysis {
	return RiskAnalysis{
		PriceRisk:            5.0,
		RatingRisk:           5.0,
		CompetitionRisk:      5.0,
		OverallRisk:          5.0,
		RiskLevel:            riskLevel(5.0),
		SellerRecommendation: reducedDataRecommendation,
	}
}

// quickRiskScore is the cheap two-factor estimate used by the sales feed,
// where no per-product aggregate queries are affordable. Unknown price or
// rating defaults pessimistically.
func quickRiskScore(price, rating float64) float64 {
	priceScore := 5.0
	if price > 0 {
		priceScore = math.Min(10, price/1000)
	}
	ratingScore := 10.0
	if rating > 0 {
		ratingScore = math.Max(0, 10-rating*2)
	}
	return round1((priceScore + ratingScore) / 2)
}

// round2 rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round1 rounds to 1 decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
