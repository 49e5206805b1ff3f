package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEssentialKeywords(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "model codes with digits",
			text:     "Audifonos Sony WH-1000XM5 Negro",
			expected: []string{"wh1000xm5"},
		},
		{
			name:     "all-upper model code",
			text:     "Bafle Amplificado VENTO Pro",
			expected: []string{"vento"},
		},
		{
			name:     "spec unit tokens are excluded",
			text:     "Bocina 8ohm 500w profesional",
			expected: nil,
		},
		{
			name:     "mixed model code and spec token",
			text:     "Subwoofer DS18 1200w",
			expected: []string{"ds18"},
		},
		{
			name:     "plain words yield nothing",
			text:     "bocina amplificada para fiesta",
			expected: nil,
		},
		{
			name:     "punctuation is stripped before matching",
			text:     "Galaxy S23+ (Nuevo)",
			expected: []string{"s23"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EssentialKeywords(tt.text))
		})
	}
}

func TestTokenOverlap(t *testing.T) {
	t.Run("identical titles", func(t *testing.T) {
		score := TokenOverlap("bocina amplificada bluetooth", "bocina amplificada bluetooth")
		assert.Equal(t, 1.0, score)
	})

	t.Run("disjoint titles", func(t *testing.T) {
		score := TokenOverlap("bocina amplificada", "funda protectora celular")
		assert.Equal(t, 0.0, score)
	})

	t.Run("partial overlap", func(t *testing.T) {
		// tokens: {bocina, amplificada} vs {bocina, pasiva}; jaccard 1/3
		score := TokenOverlap("bocina amplificada", "bocina pasiva")
		assert.InDelta(t, 1.0/3.0, score, 1e-9)
	})

	t.Run("stop words are ignored", func(t *testing.T) {
		score := TokenOverlap("bocina para fiesta", "bocina con fiesta")
		assert.Equal(t, 1.0, score)
	})

	t.Run("short tokens are ignored", func(t *testing.T) {
		// "tv" is below the 3-character floor on both sides.
		score := TokenOverlap("tv lg", "tv samsung")
		assert.Equal(t, 0.0, score)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, 0.0, TokenOverlap("", "bocina"))
		assert.Equal(t, 0.0, TokenOverlap("bocina", ""))
	})
}

func TestDigitsConsistent(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		offer    string
		expected bool
	}{
		{
			name:     "no digits in target imposes no constraint",
			target:   "bocina amplificada",
			offer:    "bocina 15 pulgadas",
			expected: true,
		},
		{
			name:     "standalone digit present in offer",
			target:   "bocina 8",
			offer:    "bocina de 8 pulgadas",
			expected: true,
		},
		{
			name:     "digit embedded in unit token still counts",
			target:   "bocina 8",
			offer:    "bocina 8ohm profesional",
			expected: true,
		},
		{
			name:     "digit missing from offer",
			target:   "bocina 8",
			offer:    "bocina de 15 pulgadas",
			expected: false,
		},
		{
			name:     "any one of several target digits suffices",
			target:   "pantalla 55 modelo 2023",
			offer:    "pantalla 55 pulgadas smart",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DigitsConsistent(tt.target, tt.offer))
		})
	}
}
