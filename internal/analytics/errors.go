// Package analytics computes price-distribution statistics and pricing
// recommendations over sets of comparable competitor prices.
package analytics

import "fmt"

// EmptyInputError indicates a computation was requested over an empty price
// list. Caller-correctable: returned as a typed error so batch callers can
// continue with other items.
type EmptyInputError struct {
	Operation string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: empty price list", e.Operation)
}

// InvalidPercentileError indicates a percentile outside [0, 100].
type InvalidPercentileError struct {
	Percentile float64
}

func (e *InvalidPercentileError) Error() string {
	return fmt.Sprintf("invalid percentile %g: must be between 0 and 100", e.Percentile)
}
