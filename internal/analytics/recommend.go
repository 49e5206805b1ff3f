package analytics

import (
	"fmt"
	"math"
)

// Confidence labels the reliability of a recommendation, derived from the
// competitor sample size and dispersion.
type Confidence string

// Confidence levels.
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// MarketPosition is the qualitative label of the chosen pricing percentile.
type MarketPosition string

// Market positions, from cheapest tier to most expensive.
const (
	PositionUnknown     MarketPosition = "unknown"
	PositionBudget      MarketPosition = "budget"
	PositionCompetitive MarketPosition = "competitive"
	PositionPremium     MarketPosition = "premium"
	PositionLuxury      MarketPosition = "luxury"
)

// alternativeSpread is the percentile distance of the cheaper/pricier
// alternatives around the target percentile.
const alternativeSpread = 15.0

// PriceRange summarizes the competitor price span.
type PriceRange struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
}

// CurrentPosition locates a currently-set price inside the competitor
// distribution.
type CurrentPosition struct {
	Price         float64 `json:"price"`
	Percentile    float64 `json:"percentile"`
	MarginPercent float64 `json:"margin_percent"`
}

// Recommendation is a complete pricing recommendation. Derived and
// stateless: recomputed per request.
type Recommendation struct {
	RecommendedPrice    float64          `json:"recommended_price"`
	CostPrice           float64          `json:"cost_price"`
	MarginPercent       float64          `json:"margin_percent"`
	TargetPercentile    float64          `json:"target_percentile"`
	Confidence          Confidence       `json:"confidence"`
	MarketPosition      MarketPosition   `json:"market_position"`
	CompetitorsAnalyzed int              `json:"competitors_analyzed"`
	PriceRange          *PriceRange      `json:"price_range,omitempty"`
	Alternatives        []float64        `json:"alternatives,omitempty"`
	CurrentPosition     *CurrentPosition `json:"current_position,omitempty"`
	Statistics          *PriceStatistics `json:"statistics,omitempty"`
	Reasoning           string           `json:"reasoning"`
}

// RecommendRequest carries the inputs of a recommendation. TargetPercentile
// and CurrentPrice are optional; nil means auto-select and not-supplied.
type RecommendRequest struct {
	CostPrice           float64
	CompetitorPrices    []float64
	TargetMarginPercent float64
	TargetPercentile    *float64
	CurrentPrice        *float64
}

// Recommend produces a pricing recommendation. It is a total function: with
// no competitor data it falls back to cost-plus-margin with low confidence
// rather than failing.
func Recommend(req RecommendRequest) *Recommendation {
	minViablePrice := req.CostPrice * (1 + req.TargetMarginPercent/100)

	if len(req.CompetitorPrices) == 0 {
		return &Recommendation{
			RecommendedPrice: round2(minViablePrice),
			CostPrice:        req.CostPrice,
			MarginPercent:    req.TargetMarginPercent,
			Confidence:       ConfidenceLow,
			MarketPosition:   PositionUnknown,
			Reasoning:        "No competitor data available. Price based on target margin only.",
		}
	}

	stats, _ := ComputeStatistics(req.CompetitorPrices) // non-empty by the check above

	targetPercentile, position := choosePercentile(req.TargetPercentile, minViablePrice, stats)

	sorted := sortedCopy(req.CompetitorPrices)
	recommended := percentileOf(sorted, targetPercentile)

	// Margin floor is a hard invariant: never recommend below the minimum
	// viable price.
	if recommended < minViablePrice {
		recommended = minViablePrice
	}

	actualMargin := 0.0
	if req.CostPrice > 0 {
		actualMargin = (recommended - req.CostPrice) / req.CostPrice * 100
	}

	alternatives := []float64{
		round2(percentileOf(sorted, clampPercentile(targetPercentile-alternativeSpread))),
		round2(recommended),
		round2(percentileOf(sorted, clampPercentile(targetPercentile+alternativeSpread))),
	}

	var currentPosition *CurrentPosition
	if req.CurrentPrice != nil {
		current := *req.CurrentPrice
		atOrBelow := 0
		for _, p := range req.CompetitorPrices {
			if p <= current {
				atOrBelow++
			}
		}
		currentMargin := 0.0
		if req.CostPrice > 0 {
			currentMargin = (current - req.CostPrice) / req.CostPrice * 100
		}
		currentPosition = &CurrentPosition{
			Price:         current,
			Percentile:    float64(atOrBelow) / float64(len(req.CompetitorPrices)) * 100,
			MarginPercent: currentMargin,
		}
	}

	return &Recommendation{
		RecommendedPrice:    round2(recommended),
		CostPrice:           req.CostPrice,
		MarginPercent:       round2(actualMargin),
		TargetPercentile:    targetPercentile,
		Confidence:          confidenceFor(stats),
		MarketPosition:      position,
		CompetitorsAnalyzed: stats.SampleSize,
		PriceRange: &PriceRange{
			Min:    stats.Min,
			Max:    stats.Max,
			Median: stats.Median,
			Mean:   stats.Mean,
		},
		Alternatives:    alternatives,
		CurrentPosition: currentPosition,
		Statistics:      stats,
		Reasoning: fmt.Sprintf(
			"Based on analysis of %d competitors, recommended price at percentile %g (%s positioning) with %.1f%% margin.",
			stats.SampleSize, targetPercentile, position, actualMargin),
	}
}

// choosePercentile picks the market percentile. When the caller names one,
// only its label is derived; the value is left untouched. Otherwise the
// smallest tier whose price still meets the margin floor is auto-selected.
func choosePercentile(requested *float64, minViablePrice float64, stats *PriceStatistics) (float64, MarketPosition) {
	if requested != nil {
		p := *requested
		switch {
		case p <= 30:
			return p, PositionBudget
		case p <= 60:
			return p, PositionCompetitive
		case p <= 80:
			return p, PositionPremium
		default:
			return p, PositionLuxury
		}
	}

	switch {
	case minViablePrice <= stats.Percentiles.P25:
		return 25, PositionBudget
	case minViablePrice <= stats.Median:
		return 50, PositionCompetitive
	case minViablePrice <= stats.Percentiles.P75:
		return 75, PositionPremium
	default:
		return 90, PositionLuxury
	}
}

func confidenceFor(stats *PriceStatistics) Confidence {
	switch {
	case stats.SampleSize >= 30 && stats.CV < 0.3:
		return ConfidenceHigh
	case stats.SampleSize >= 15 && stats.CV < 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func clampPercentile(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
