package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
	}{
		{"identical vectors", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal vectors", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite vectors", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"empty vectors", nil, nil, 0.0},
		{"mismatched lengths", []float32{1, 2}, []float32{1, 2, 3}, 0.0},
		{"zero magnitude", []float32{0, 0}, []float32{1, 2}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSemanticGate(t *testing.T) {
	t.Run("high similarity passes", func(t *testing.T) {
		passes, similarity := SemanticGate([]float32{1, 1}, []float32{1, 1})
		assert.True(t, passes)
		assert.InDelta(t, 1.0, similarity, 1e-9)
	})

	t.Run("orthogonal vectors fail", func(t *testing.T) {
		passes, similarity := SemanticGate([]float32{1, 0}, []float32{0, 1})
		assert.False(t, passes)
		assert.InDelta(t, 0.0, similarity, 1e-9)
	})

	t.Run("weak but real similarity passes", func(t *testing.T) {
		// cos(theta) = 1/sqrt(10) ~ 0.316, just above the threshold.
		passes, similarity := SemanticGate([]float32{1, 0}, []float32{1, 3})
		assert.True(t, passes)
		assert.Greater(t, similarity, SemanticThreshold)
	})

	t.Run("near-orthogonal vectors fail", func(t *testing.T) {
		// cos(theta) = 1/sqrt(26) ~ 0.196, just below the threshold.
		passes, similarity := SemanticGate([]float32{1, 0}, []float32{1, 5})
		assert.False(t, passes)
		assert.Less(t, similarity, SemanticThreshold)
	})
}
