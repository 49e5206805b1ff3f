package server

import (
	"errors"
	"net/http"

	"github.com/louder/priceagent/internal/analytics"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var emptyInput *analytics.EmptyInputError
	var invalidPercentile *analytics.InvalidPercentileError

	switch {
	case errors.As(err, &emptyInput), errors.As(err, &invalidPercentile):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
