package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/louder/priceagent/internal/llm"
	"github.com/louder/priceagent/internal/marketplace"
	"github.com/louder/priceagent/internal/prompts"
)

// Fallback confidences when the LLM response cannot be parsed as JSON
// (substring scan of the raw text) or the invocation itself fails (local
// keyword heuristic).
const (
	fallbackParseConfidence     = 0.6
	heuristicFallbackConfidence = 0.5
)

// accessoryFallbackKeywords and bundleFallbackKeywords drive the local
// heuristic used when the LLM is unreachable.
var (
	accessoryFallbackKeywords = []string{
		"funda", "case", "cable", "cargador", "protector",
		"mica", "glass", "adaptador", "base", "soporte", "estuche",
	}
	bundleFallbackKeywords = []string{
		"paquete", "combo", "kit", " + ", "incluye",
	}
)

// ImageLoader fetches an image by URL for multimodal adjudication. Failures
// are tolerated: the adjudicator falls back to text-only prompts.
type ImageLoader func(ctx context.Context, url string) (llm.Image, error)

// adjudicatorVerdict is the JSON shape the LLM is instructed to return.
type adjudicatorVerdict struct {
	Classification string  `json:"classification"`
	Confidence     float64 `json:"confidence"`
	Reason         string  `json:"reason"`
}

// Adjudicator performs the final LLM-based visual/textual comparability
// judgment for candidates the rule chain could not settle. Adjudicate never
// returns an error: every failure mode degrades to a heuristic verdict.
type Adjudicator struct {
	client    llm.Client
	loadImage ImageLoader
}

// NewAdjudicator creates an adjudicator. loadImage may be nil, in which case
// prompts are text-only.
func NewAdjudicator(client llm.Client, loadImage ImageLoader) *Adjudicator {
	return &Adjudicator{client: client, loadImage: loadImage}
}

// Adjudicate classifies one candidate offer against the target using the
// multimodal classification capability.
func (a *Adjudicator) Adjudicate(ctx context.Context, target Target, offer marketplace.Offer) Classification {
	images, imageNote := a.collectImages(ctx, target, offer)

	template := prompts.MustGet("matching.json", "adjudicate-offer")
	prompt := prompts.Format(template, map[string]string{
		"Target":         target.Description,
		"ReferencePrice": fmt.Sprintf("%.2f", target.ReferencePrice),
		"OfferTitle":     offer.Title,
		"OfferPrice":     fmt.Sprintf("%.2f", offer.Price),
		"ImageNote":      imageNote,
	})

	raw, err := a.client.GenerateJSONParts(ctx, prompt, images, llm.TierLite)
	if err != nil {
		return a.heuristicFallback(target, offer)
	}

	return parseVerdict(raw, offer)
}

// collectImages loads the target and offer images when URLs and a loader are
// available. The note tells the model which inline images follow and in what
// order; it stays empty for text-only prompts.
func (a *Adjudicator) collectImages(ctx context.Context, target Target, offer marketplace.Offer) ([]llm.Image, string) {
	if a.loadImage == nil {
		return nil, ""
	}

	var images []llm.Image
	var notes []string
	if strings.HasPrefix(target.ImageURL, "http") {
		if img, err := a.loadImage(ctx, target.ImageURL); err == nil {
			images = append(images, img)
			notes = append(notes, "TARGET IMAGE (reference)")
		}
	}
	if strings.HasPrefix(offer.ImageURL, "http") {
		if img, err := a.loadImage(ctx, offer.ImageURL); err == nil {
			images = append(images, img)
			notes = append(notes, "OFFER IMAGE (candidate)")
		}
	}

	if len(notes) == 0 {
		return nil, ""
	}
	return images, "Attached images, in order: " + strings.Join(notes, ", ") + ".\n"
}

// parseVerdict turns the raw LLM response into a Classification. Structured
// parse first; substring scan of the raw text when the JSON is malformed.
func parseVerdict(raw string, offer marketplace.Offer) Classification {
	cleaned := llm.CleanJSONBlock(raw)

	var verdict adjudicatorVerdict
	if err := json.Unmarshal([]byte(cleaned), &verdict); err != nil || verdict.Classification == "" {
		return fallbackParse(cleaned, offer)
	}

	category := strings.ToLower(strings.TrimSpace(verdict.Classification))
	confidence := verdict.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	reason := verdict.Reason
	if reason == "" {
		reason = "LLM decision"
	}

	return Classification{
		OfferID:    offer.ID,
		Title:      offer.Title,
		Comparable: category == "comparable",
		Accessory:  category == "accessory",
		Bundle:     category == "bundle",
		Confidence: confidence,
		Reason:     reason,
	}
}

// fallbackParse scans the raw response for category keywords. Order matters:
// "not_comparable" contains "comparable", so the negative form is checked
// first.
func fallbackParse(raw string, offer marketplace.Offer) Classification {
	content := strings.ToLower(raw)

	var category string
	switch {
	case strings.Contains(content, "not_comparable"):
		category = "not_comparable"
	case strings.Contains(content, "accessory"):
		category = "accessory"
	case strings.Contains(content, "bundle"):
		category = "bundle"
	case strings.Contains(content, "comparable"):
		category = "comparable"
	default:
		category = "not_comparable"
	}

	return Classification{
		OfferID:    offer.ID,
		Title:      offer.Title,
		Comparable: category == "comparable",
		Accessory:  category == "accessory",
		Bundle:     category == "bundle",
		Confidence: fallbackParseConfidence,
		Reason:     "fallback parse",
	}
}

// heuristicFallback classifies purely from title keywords when the LLM
// cannot be invoked at all. This guarantees the adjudicator always produces
// a verdict.
func (a *Adjudicator) heuristicFallback(_ Target, offer marketplace.Offer) Classification {
	titleLower := strings.ToLower(offer.Title)

	accessory := containsAny(titleLower, accessoryFallbackKeywords)
	bundle := containsAny(titleLower, bundleFallbackKeywords)

	return Classification{
		OfferID:    offer.ID,
		Title:      offer.Title,
		Comparable: !accessory && !bundle,
		Accessory:  accessory,
		Bundle:     bundle,
		Confidence: heuristicFallbackConfidence,
		Reason:     "heuristic fallback",
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
