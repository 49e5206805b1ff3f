package matching

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/louder/priceagent/internal/marketplace"
)

// maxConcurrentClassifications bounds in-flight per-offer classifications to
// respect embedding/LLM rate limits.
const maxConcurrentClassifications = 5

// Embedder computes embedding vectors for free text. Implementations may
// fail; the matcher degrades gracefully by skipping the semantic gate.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Matcher runs the per-candidate classification pipeline: semantic gate,
// rule chain, then LLM adjudication. The first stage to produce a verdict
// wins.
type Matcher struct {
	embedder    Embedder
	adjudicator *Adjudicator
}

// NewMatcher creates a matcher. embedder may be nil to disable the semantic
// gate entirely; adjudicator must not be nil.
func NewMatcher(embedder Embedder, adjudicator *Adjudicator) *Matcher {
	return &Matcher{embedder: embedder, adjudicator: adjudicator}
}

// Match classifies every offer against the target and partitions the set
// into comparable and excluded offers. Offers are never mutated; the result
// preserves input order. Collaborator failures never fail the run: they are
// recorded in Result.Errors and the affected stage is skipped.
func (m *Matcher) Match(ctx context.Context, target Target, offers []marketplace.Offer) *Result {
	result := &Result{
		Target:      target.Description,
		TotalOffers: len(offers),
	}
	if len(offers) == 0 {
		result.Errors = append(result.Errors, "no offers received for matching")
		return result
	}

	// The target embedding is computed once and shared by every candidate.
	var targetVec []float32
	if m.embedder != nil {
		vec, err := m.embedder.Embed(ctx, target.Description)
		if err != nil {
			log.Printf("matching: failed to embed target, semantic gate disabled: %v", err)
			result.Errors = append(result.Errors, fmt.Sprintf("target embedding failed: %v", err))
		} else {
			targetVec = vec
		}
	}

	classifications := make([]Classification, len(offers))
	sem := semaphore.NewWeighted(maxConcurrentClassifications)
	var wg sync.WaitGroup

	for i, offer := range offers {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled: classify the rest synchronously via the
			// heuristic so every offer still gets a verdict.
			classifications[i] = m.adjudicator.heuristicFallback(target, offer)
			continue
		}

		wg.Add(1)
		go func(i int, offer marketplace.Offer) {
			defer wg.Done()
			defer sem.Release(1)
			classifications[i] = m.classifyOne(ctx, target, targetVec, offer)
		}(i, offer)
	}
	wg.Wait()

	result.Classifications = classifications
	m.partition(result, offers, classifications)

	log.Printf("matching: classified %d offers, %d comparable, %d excluded",
		len(classifications), len(result.Comparable), len(result.Excluded))

	return result
}

// classifyOne runs the staged pipeline for a single offer.
func (m *Matcher) classifyOne(ctx context.Context, target Target, targetVec []float32, offer marketplace.Offer) Classification {
	// Stage 1: semantic gate. Skipped when the target embedding is missing
	// or the offer embedding fails; infrastructure trouble must not reject
	// a candidate.
	if len(targetVec) > 0 {
		offerVec, err := m.embedder.Embed(ctx, offer.Title)
		if err == nil {
			if passes, similarity := SemanticGate(targetVec, offerVec); !passes {
				return Classification{
					OfferID:    offer.ID,
					Title:      offer.Title,
					Comparable: false,
					Confidence: semanticGateConfidence,
					Reason:     fmt.Sprintf("Semantic mismatch: similarity %.2f < %.2f", similarity, SemanticThreshold),
				}
			}
		}
	}

	// Stage 2: rule chain.
	if verdict := ClassifyByRules(target, offer); verdict != nil {
		return *verdict
	}

	// Stage 3: LLM adjudication.
	return m.adjudicator.Adjudicate(ctx, target, offer)
}

// partition splits offers into comparable and excluded sets using the
// classification computed for the same index. Index-based pairing sidesteps
// the duplicate-title ambiguity of matching by title.
func (m *Matcher) partition(result *Result, offers []marketplace.Offer, classifications []Classification) {
	for i, offer := range offers {
		c := classifications[i]
		if c.Comparable {
			result.Comparable = append(result.Comparable, offer)
		} else {
			result.Excluded = append(result.Excluded, ExcludedOffer{
				Offer:           offer,
				ExclusionReason: c.Reason,
			})
		}
	}
}

// ComparablePrices extracts the positive prices of the comparable offers,
// ready for the statistics engine.
func (r *Result) ComparablePrices() []float64 {
	prices := make([]float64, 0, len(r.Comparable))
	for _, offer := range r.Comparable {
		if offer.Price > 0 {
			prices = append(prices, offer.Price)
		}
	}
	return prices
}
