// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/louder/priceagent/internal/analytics"
	"github.com/louder/priceagent/internal/fees"
	"github.com/louder/priceagent/internal/matching"
	"github.com/louder/priceagent/internal/strategy"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintStrategy outputs a human-readable summary of the search strategy.
func (p *Printer) PrintStrategy(s *strategy.SearchStrategy) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Primary:  %s\n", s.PrimarySearch))
	for _, alt := range s.AlternativeSearches {
		sb.WriteString(fmt.Sprintf("Also:     %s\n", alt))
	}
	if len(s.KeySpecs) > 0 {
		sb.WriteString(fmt.Sprintf("Specs:    %s\n", strings.Join(s.KeySpecs, ", ")))
	}
	if len(s.ExcludeTerms) > 0 {
		sb.WriteString(fmt.Sprintf("Exclude:  %s\n", strings.Join(s.ExcludeTerms, ", ")))
	}
	if s.Reasoning != "" {
		sb.WriteString(fmt.Sprintf("Why:      %s", s.Reasoning))
	}

	p.printBox("Search Strategy", sb.String())
}

// PrintMatchResult outputs a summary of a matching run: counts plus the
// first few exclusions with their reasons.
func (p *Printer) PrintMatchResult(result *matching.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total offers:   %d\n", result.TotalOffers))
	sb.WriteString(fmt.Sprintf("Comparable:     %d\n", len(result.Comparable)))
	sb.WriteString(fmt.Sprintf("Excluded:       %d\n", len(result.Excluded)))

	if len(result.Excluded) > 0 {
		sb.WriteString("\nExclusions:\n")
		count := min(len(result.Excluded), maxItemsToShow)
		for i := 0; i < count; i++ {
			ex := result.Excluded[i]
			sb.WriteString(fmt.Sprintf("  • %s\n    %s\n", ex.Title, ex.ExclusionReason))
		}
		if len(result.Excluded) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Excluded)-maxItemsToShow))
		}
	}

	if len(result.Errors) > 0 {
		sb.WriteString("\nErrors:\n")
		for _, e := range result.Errors {
			sb.WriteString(fmt.Sprintf("  ! %s\n", e))
		}
	}

	p.printBox("Offer Matching", sb.String())
}

// PrintStatistics outputs the price distribution summary.
func (p *Printer) PrintStatistics(stats *analytics.PriceStatistics) {
	if stats == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Sample:    %d (%d after outlier removal)\n", stats.SampleSize, stats.SampleSizeClean))
	sb.WriteString(fmt.Sprintf("Range:     $%.2f - $%.2f\n", stats.Min, stats.Max))
	sb.WriteString(fmt.Sprintf("Mean:      $%.2f  Median: $%.2f\n", stats.Mean, stats.Median))
	sb.WriteString(fmt.Sprintf("Std dev:   $%.2f  (CV %.2f)\n", stats.StdDev, stats.CV))
	sb.WriteString(fmt.Sprintf("Quartiles: $%.2f / $%.2f / $%.2f\n", stats.Q1, stats.Median, stats.Q3))
	sb.WriteString(fmt.Sprintf("P10-P90:   $%.2f - $%.2f", stats.Percentiles.P10, stats.Percentiles.P90))

	p.printBox("Price Statistics", sb.String())
}

// PrintRecommendation outputs the pricing recommendation.
func (p *Printer) PrintRecommendation(rec *analytics.Recommendation) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Price:      $%.2f\n", rec.RecommendedPrice))
	sb.WriteString(fmt.Sprintf("Position:   %s (percentile %g)\n", rec.MarketPosition, rec.TargetPercentile))
	sb.WriteString(fmt.Sprintf("Margin:     %.1f%%\n", rec.MarginPercent))
	sb.WriteString(fmt.Sprintf("Confidence: %s (%d competitors)\n", rec.Confidence, rec.CompetitorsAnalyzed))
	if len(rec.Alternatives) == 3 {
		sb.WriteString(fmt.Sprintf("Options:    $%.2f / $%.2f / $%.2f\n",
			rec.Alternatives[0], rec.Alternatives[1], rec.Alternatives[2]))
	}
	if rec.CurrentPosition != nil {
		sb.WriteString(fmt.Sprintf("Current:    $%.2f at percentile %.0f\n",
			rec.CurrentPosition.Price, rec.CurrentPosition.Percentile))
	}
	sb.WriteString(rec.Reasoning)

	p.printBox("Recommendation", sb.String())
}

// PrintFeeBreakdown outputs the marketplace fee decomposition.
func (p *Printer) PrintFeeBreakdown(b *fees.Breakdown) {
	if b == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Selling price:  $%.2f\n", b.SellingPrice))
	sb.WriteString(fmt.Sprintf("Commission:     -$%.2f\n", b.GrossCommission))
	sb.WriteString(fmt.Sprintf("Shipping:       -$%.2f\n", b.ShippingCost))
	sb.WriteString(fmt.Sprintf("Taxes:          -$%.2f (VAT) -$%.2f (ISR)\n", b.TaxesVAT, b.TaxesISR))
	sb.WriteString(fmt.Sprintf("Cost of goods:  -$%.2f\n", b.CostOfGoods))
	sb.WriteString(fmt.Sprintf("Net profit:     $%.2f (%.1f%% margin, %.1f%% ROI)",
		b.NetProfit, b.NetMarginPercent, b.ReturnOnInvestment))

	p.printBox("Fee Breakdown", sb.String())
}
