package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/louder/priceagent/internal/llm"
	"github.com/louder/priceagent/internal/marketplace"
)

// fakeLLMClient returns canned responses for adjudication and matcher tests.
type fakeLLMClient struct {
	response  string
	err       error
	embedding []float32
	embedErr  error
	calls     int
}

func (f *fakeLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.response, f.err
}

func (f *fakeLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.response, f.err
}

func (f *fakeLLMClient) GenerateJSONParts(ctx context.Context, prompt string, images []llm.Image, tier llm.ModelTier) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeLLMClient) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.embedding, f.embedErr
}

func (f *fakeLLMClient) GetModel(tier llm.ModelTier) string { return "fake-model" }

func (f *fakeLLMClient) Close() error { return nil }

func TestAdjudicateStructuredVerdict(t *testing.T) {
	client := &fakeLLMClient{
		response: `{"classification": "comparable", "confidence": 0.92, "reason": "Same product, different color"}`,
	}
	adj := NewAdjudicator(client, nil)

	verdict := adj.Adjudicate(context.Background(), Target{Description: "Bocina"}, marketplace.Offer{ID: "MLM-1", Title: "Bocina negra"})

	assert.True(t, verdict.Comparable)
	assert.False(t, verdict.Accessory)
	assert.False(t, verdict.Bundle)
	assert.Equal(t, 0.92, verdict.Confidence)
	assert.Equal(t, "Same product, different color", verdict.Reason)
	assert.Equal(t, "MLM-1", verdict.OfferID)
}

func TestAdjudicateCategoryFlags(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		comparable bool
		accessory  bool
		bundle     bool
	}{
		{"accessory", `{"classification": "accessory", "confidence": 0.9, "reason": "r"}`, false, true, false},
		{"bundle", `{"classification": "bundle", "confidence": 0.9, "reason": "r"}`, false, false, true},
		{"not comparable", `{"classification": "not_comparable", "confidence": 0.9, "reason": "r"}`, false, false, false},
		{"fenced markdown block", "```json\n{\"classification\": \"comparable\", \"confidence\": 0.8, \"reason\": \"r\"}\n```", true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj := NewAdjudicator(&fakeLLMClient{response: tt.response}, nil)
			verdict := adj.Adjudicate(context.Background(), Target{Description: "x"}, marketplace.Offer{Title: "y"})
			assert.Equal(t, tt.comparable, verdict.Comparable)
			assert.Equal(t, tt.accessory, verdict.Accessory)
			assert.Equal(t, tt.bundle, verdict.Bundle)
		})
	}
}

func TestAdjudicateConfidenceClamped(t *testing.T) {
	adj := NewAdjudicator(&fakeLLMClient{
		response: `{"classification": "comparable", "confidence": 1.7, "reason": "r"}`,
	}, nil)
	verdict := adj.Adjudicate(context.Background(), Target{}, marketplace.Offer{Title: "y"})
	assert.Equal(t, 1.0, verdict.Confidence)
}

func TestAdjudicateFallbackParse(t *testing.T) {
	t.Run("not_comparable wins over its comparable substring", func(t *testing.T) {
		adj := NewAdjudicator(&fakeLLMClient{
			response: "The verdict is not_comparable because the sizes differ",
		}, nil)
		verdict := adj.Adjudicate(context.Background(), Target{}, marketplace.Offer{Title: "y"})
		assert.False(t, verdict.Comparable)
		assert.Equal(t, fallbackParseConfidence, verdict.Confidence)
		assert.Equal(t, "fallback parse", verdict.Reason)
	})

	t.Run("plain comparable text", func(t *testing.T) {
		adj := NewAdjudicator(&fakeLLMClient{response: "these items look comparable"}, nil)
		verdict := adj.Adjudicate(context.Background(), Target{}, marketplace.Offer{Title: "y"})
		assert.True(t, verdict.Comparable)
		assert.Equal(t, fallbackParseConfidence, verdict.Confidence)
	})

	t.Run("unrecognized text is not comparable", func(t *testing.T) {
		adj := NewAdjudicator(&fakeLLMClient{response: "no idea"}, nil)
		verdict := adj.Adjudicate(context.Background(), Target{}, marketplace.Offer{Title: "y"})
		assert.False(t, verdict.Comparable)
	})
}

func TestAdjudicateHeuristicFallback(t *testing.T) {
	client := &fakeLLMClient{err: errors.New("llm unavailable")}
	adj := NewAdjudicator(client, nil)

	tests := []struct {
		name       string
		title      string
		comparable bool
		accessory  bool
		bundle     bool
	}{
		{"accessory keyword", "Funda para bocina JBL", false, true, false},
		{"bundle keyword", "Paquete bocina con microfono", false, false, true},
		{"plus-sign bundle", "Bocina + microfono inalambrico", false, false, true},
		{"plain title stays comparable", "Bocina JBL PartyBox", true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := adj.Adjudicate(context.Background(), Target{}, marketplace.Offer{Title: tt.title})
			assert.Equal(t, tt.comparable, verdict.Comparable)
			assert.Equal(t, tt.accessory, verdict.Accessory)
			assert.Equal(t, tt.bundle, verdict.Bundle)
			assert.Equal(t, heuristicFallbackConfidence, verdict.Confidence)
			assert.Equal(t, "heuristic fallback", verdict.Reason)
		})
	}
}

func TestAdjudicateImageLoaderFailuresAreTolerated(t *testing.T) {
	loader := func(ctx context.Context, url string) (llm.Image, error) {
		return llm.Image{}, errors.New("image fetch failed")
	}
	client := &fakeLLMClient{
		response: `{"classification": "comparable", "confidence": 0.8, "reason": "r"}`,
	}
	adj := NewAdjudicator(client, loader)

	target := Target{Description: "Bocina", ImageURL: "https://example.com/t.jpg"}
	offer := marketplace.Offer{Title: "Bocina", ImageURL: "https://example.com/o.jpg"}

	verdict := adj.Adjudicate(context.Background(), target, offer)
	assert.True(t, verdict.Comparable)
	assert.Equal(t, 1, client.calls)
}
