package analytics

import (
	"math"
	"sort"
)

// iqrFence is the multiplier on the interquartile range used to flag
// outliers.
const iqrFence = 1.5

// Percentiles is the fixed percentile table reported with every statistics
// computation. All values are over the full (pre-outlier-removal) sample.
type Percentiles struct {
	P10 float64 `json:"p10"`
	P20 float64 `json:"p20"`
	P25 float64 `json:"p25"`
	P30 float64 `json:"p30"`
	P40 float64 `json:"p40"`
	P50 float64 `json:"p50"`
	P60 float64 `json:"p60"`
	P70 float64 `json:"p70"`
	P75 float64 `json:"p75"`
	P80 float64 `json:"p80"`
	P90 float64 `json:"p90"`
}

// CleanStats carries the statistics recomputed after IQR outlier removal.
type CleanStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// PriceStatistics is the full distribution summary for a price sample.
// Derived data: recomputed fresh on every call, never cached or mutated.
type PriceStatistics struct {
	SampleSize      int         `json:"sample_size"`
	SampleSizeClean int         `json:"sample_size_clean"`
	OutliersRemoved int         `json:"outliers_removed"`
	Min             float64     `json:"min"`
	Max             float64     `json:"max"`
	Mean            float64     `json:"mean"`
	Median          float64     `json:"median"`
	StdDev          float64     `json:"std_dev"`
	Variance        float64     `json:"variance"`
	CV              float64     `json:"cv"`
	Q1              float64     `json:"q1"`
	Q3              float64     `json:"q3"`
	IQR             float64     `json:"iqr"`
	Percentiles     Percentiles `json:"percentiles"`
	CleanStats      CleanStats  `json:"clean_stats"`
}

// PercentileResult is the answer to a single percentile query, with the
// sample context around the value.
type PercentileResult struct {
	Percentile   float64 `json:"percentile"`
	Value        float64 `json:"value"`
	SampleSize   int     `json:"sample_size"`
	BelowCount   int     `json:"below_count"`
	AboveCount   int     `json:"above_count"`
	EqualCount   int     `json:"equal_count"`
	RankPosition int     `json:"rank_position"`
}

// ComputeStatistics computes the distribution summary for a price list.
// Returns an EmptyInputError for an empty list.
func ComputeStatistics(prices []float64) (*PriceStatistics, error) {
	if len(prices) == 0 {
		return nil, &EmptyInputError{Operation: "compute statistics"}
	}

	sorted := sortedCopy(prices)

	q1 := percentileOf(sorted, 25)
	q3 := percentileOf(sorted, 75)
	iqr := q3 - q1
	lowerBound := q1 - iqrFence*iqr
	upperBound := q3 + iqrFence*iqr

	var clean []float64
	for _, p := range sorted {
		if p >= lowerBound && p <= upperBound {
			clean = append(clean, p)
		}
	}
	// Degenerate fence (can only happen with pathological inputs): keep the
	// full sample rather than reporting stats over nothing.
	if len(clean) == 0 {
		clean = sorted
	}

	mean := meanOf(sorted)
	stdDev := stdDevOf(sorted, mean)

	cv := 0.0
	if mean > 0 {
		cv = stdDev / mean
	}

	cleanMean := meanOf(clean)

	return &PriceStatistics{
		SampleSize:      len(sorted),
		SampleSizeClean: len(clean),
		OutliersRemoved: len(sorted) - len(clean),
		Min:             sorted[0],
		Max:             sorted[len(sorted)-1],
		Mean:            mean,
		Median:          percentileOf(sorted, 50),
		StdDev:          stdDev,
		Variance:        stdDev * stdDev,
		CV:              cv,
		Q1:              q1,
		Q3:              q3,
		IQR:             iqr,
		Percentiles: Percentiles{
			P10: percentileOf(sorted, 10),
			P20: percentileOf(sorted, 20),
			P25: q1,
			P30: percentileOf(sorted, 30),
			P40: percentileOf(sorted, 40),
			P50: percentileOf(sorted, 50),
			P60: percentileOf(sorted, 60),
			P70: percentileOf(sorted, 70),
			P75: q3,
			P80: percentileOf(sorted, 80),
			P90: percentileOf(sorted, 90),
		},
		CleanStats: CleanStats{
			Mean:   cleanMean,
			Median: percentileOf(clean, 50),
			StdDev: stdDevOf(clean, cleanMean),
		},
	}, nil
}

// GetPercentile returns the value at the requested percentile together with
// strictly-below/above/equal counts and the 1-based rank position.
func GetPercentile(prices []float64, percentile float64) (*PercentileResult, error) {
	if percentile < 0 || percentile > 100 {
		return nil, &InvalidPercentileError{Percentile: percentile}
	}
	if len(prices) == 0 {
		return nil, &EmptyInputError{Operation: "get percentile"}
	}

	sorted := sortedCopy(prices)
	value := percentileOf(sorted, percentile)

	below, above, equal := 0, 0, 0
	for _, p := range sorted {
		switch {
		case p < value:
			below++
		case p > value:
			above++
		default:
			equal++
		}
	}

	return &PercentileResult{
		Percentile:   percentile,
		Value:        value,
		SampleSize:   len(sorted),
		BelowCount:   below,
		AboveCount:   above,
		EqualCount:   equal,
		RankPosition: below + 1,
	}, nil
}

// percentileOf computes a percentile by linear interpolation between closest
// ranks. The input must be sorted and non-empty.
func percentileOf(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

func sortedCopy(prices []float64) []float64 {
	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)
	return sorted
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDevOf computes the population standard deviation.
func stdDevOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
