package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestRecommendNoCompetitorData(t *testing.T) {
	rec := Recommend(RecommendRequest{
		CostPrice:           100,
		TargetMarginPercent: 30,
	})

	assert.Equal(t, 130.0, rec.RecommendedPrice)
	assert.Equal(t, 30.0, rec.MarginPercent)
	assert.Equal(t, ConfidenceLow, rec.Confidence)
	assert.Equal(t, PositionUnknown, rec.MarketPosition)
	assert.Equal(t, 0, rec.CompetitorsAnalyzed)
	assert.Nil(t, rec.PriceRange)
	assert.Nil(t, rec.Statistics)
	assert.Contains(t, rec.Reasoning, "No competitor data")
}

func TestRecommendAutoPercentileTiers(t *testing.T) {
	// Uniform 100..1000; p25=325, p50=550, p75=775.
	prices := make([]float64, 10)
	for i := range prices {
		prices[i] = float64((i + 1) * 100)
	}

	tests := []struct {
		name       string
		cost       float64
		margin     float64
		percentile float64
		position   MarketPosition
	}{
		{"cheap cost lands budget", 100, 30, 25, PositionBudget},
		{"mid cost lands competitive", 300, 30, 50, PositionCompetitive},
		{"high cost lands premium", 500, 30, 75, PositionPremium},
		{"very high cost lands luxury", 800, 30, 90, PositionLuxury},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Recommend(RecommendRequest{
				CostPrice:           tt.cost,
				CompetitorPrices:    prices,
				TargetMarginPercent: tt.margin,
			})
			assert.Equal(t, tt.percentile, rec.TargetPercentile)
			assert.Equal(t, tt.position, rec.MarketPosition)
		})
	}
}

func TestRecommendCallerPercentileBuckets(t *testing.T) {
	prices := []float64{100, 200, 300, 400, 500}

	tests := []struct {
		percentile float64
		position   MarketPosition
	}{
		{10, PositionBudget},
		{30, PositionBudget},
		{45, PositionCompetitive},
		{60, PositionCompetitive},
		{75, PositionPremium},
		{80, PositionPremium},
		{95, PositionLuxury},
	}

	for _, tt := range tests {
		rec := Recommend(RecommendRequest{
			CostPrice:        10,
			CompetitorPrices: prices,
			TargetPercentile: floatPtr(tt.percentile),
		})
		assert.Equal(t, tt.percentile, rec.TargetPercentile, "percentile %v", tt.percentile)
		assert.Equal(t, tt.position, rec.MarketPosition, "percentile %v", tt.percentile)
	}
}

func TestRecommendMarginFloor(t *testing.T) {
	// Competitors are all cheaper than the minimum viable price.
	rec := Recommend(RecommendRequest{
		CostPrice:           100,
		CompetitorPrices:    []float64{50, 60, 70, 80, 90},
		TargetMarginPercent: 30,
		TargetPercentile:    floatPtr(50),
	})

	assert.Equal(t, 130.0, rec.RecommendedPrice)
	assert.Equal(t, 30.0, rec.MarginPercent)
	// Alternatives keep the floored price in the middle slot.
	require.Len(t, rec.Alternatives, 3)
	assert.Equal(t, 130.0, rec.Alternatives[1])
}

func TestRecommendActualMargin(t *testing.T) {
	rec := Recommend(RecommendRequest{
		CostPrice:           100,
		CompetitorPrices:    []float64{200, 300, 400, 500, 600},
		TargetMarginPercent: 20,
		TargetPercentile:    floatPtr(50),
	})

	assert.Equal(t, 400.0, rec.RecommendedPrice)
	assert.Equal(t, 300.0, rec.MarginPercent)
}

func TestRecommendAlternativesSpread(t *testing.T) {
	prices := []float64{100, 200, 300, 400, 500}
	rec := Recommend(RecommendRequest{
		CostPrice:        10,
		CompetitorPrices: prices,
		TargetPercentile: floatPtr(50),
	})

	// p35=240, p50=300, p65=360.
	assert.Equal(t, []float64{240, 300, 360}, rec.Alternatives)
}

func TestRecommendAlternativesClampedAtBounds(t *testing.T) {
	prices := []float64{100, 200, 300, 400, 500}
	rec := Recommend(RecommendRequest{
		CostPrice:        10,
		CompetitorPrices: prices,
		TargetPercentile: floatPtr(95),
	})

	// p95+15 clamps to 100.
	require.Len(t, rec.Alternatives, 3)
	assert.Equal(t, 500.0, rec.Alternatives[2])
}

func TestRecommendCurrentPosition(t *testing.T) {
	rec := Recommend(RecommendRequest{
		CostPrice:        100,
		CompetitorPrices: []float64{100, 200, 300, 400, 500},
		CurrentPrice:     floatPtr(300),
	})

	require.NotNil(t, rec.CurrentPosition)
	assert.Equal(t, 300.0, rec.CurrentPosition.Price)
	assert.Equal(t, 60.0, rec.CurrentPosition.Percentile)
	assert.Equal(t, 200.0, rec.CurrentPosition.MarginPercent)
}

func TestRecommendConfidenceLevels(t *testing.T) {
	tight := func(n int) []float64 {
		prices := make([]float64, n)
		for i := range prices {
			prices[i] = 100 + float64(i%3)
		}
		return prices
	}
	spread := func(n int) []float64 {
		prices := make([]float64, n)
		for i := range prices {
			prices[i] = float64((i + 1) * 100)
		}
		return prices
	}

	tests := []struct {
		name       string
		prices     []float64
		confidence Confidence
	}{
		{"large tight sample", tight(30), ConfidenceHigh},
		{"medium tight sample", tight(15), ConfidenceMedium},
		{"small sample", tight(5), ConfidenceLow},
		{"large dispersed sample", spread(40), ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Recommend(RecommendRequest{CostPrice: 10, CompetitorPrices: tt.prices})
			assert.Equal(t, tt.confidence, rec.Confidence)
		})
	}
}
