package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/louder/priceagent/internal/analytics"
	"github.com/louder/priceagent/internal/fees"
	"github.com/louder/priceagent/internal/matching"
	"github.com/louder/priceagent/internal/strategy"
)

func TestPrintStrategy(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStrategy(&strategy.SearchStrategy{
		PrimarySearch:       "bocina amplificada 15",
		AlternativeSearches: []string{"bafle amplificado 15"},
		ExcludeTerms:        []string{"funda"},
	})

	out := buf.String()
	assert.Contains(t, out, "Search Strategy")
	assert.Contains(t, out, "bocina amplificada 15")
	assert.Contains(t, out, "bafle amplificado 15")
	assert.Contains(t, out, "funda")
}

func TestPrintStrategyNil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintStrategy(nil)
	assert.Empty(t, buf.String())
}

func TestPrintMatchResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintMatchResult(&matching.Result{
		TotalOffers: 3,
		Excluded: []matching.ExcludedOffer{
			{ExclusionReason: "Low token overlap (0.02) with target"},
		},
		Errors: []string{"target embedding failed: quota"},
	})

	out := buf.String()
	assert.Contains(t, out, "Offer Matching")
	assert.Contains(t, out, "Low token overlap")
	assert.Contains(t, out, "quota")
}

func TestPrintStatisticsAndRecommendation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	stats, err := analytics.ComputeStatistics([]float64{100, 200, 300})
	assert.NoError(t, err)
	p.PrintStatistics(stats)
	assert.Contains(t, buf.String(), "Price Statistics")

	buf.Reset()
	rec := analytics.Recommend(analytics.RecommendRequest{
		CostPrice:        100,
		CompetitorPrices: []float64{200, 300, 400},
	})
	p.PrintRecommendation(rec)
	assert.Contains(t, buf.String(), "Recommendation")
	assert.Contains(t, buf.String(), "Confidence")
}

func TestPrintFeeBreakdown(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	b := fees.Profit(fees.Input{SellingPrice: 1000, CostOfGoods: 400})
	p.PrintFeeBreakdown(&b)

	out := buf.String()
	assert.Contains(t, out, "Fee Breakdown")
	assert.Contains(t, out, "Net profit")
}
