package matching

import (
	"fmt"
	"strings"

	"github.com/louder/priceagent/internal/marketplace"
	"github.com/louder/priceagent/internal/specs"
)

// Price-ratio sanity bounds relative to the target's reference price.
// Below the lower bound an offer is almost certainly an accessory or spare
// part; above the upper bound it is a large bundle or a different product.
const (
	priceRatioLowerBound = 0.4
	priceRatioUpperBound = 3.5
)

// tokenOverlapFloor is the minimum Jaccard overlap for a candidate to keep
// any lexical claim of being the same product. Deliberately permissive: the
// semantic gate and LLM carry the real similarity judgment.
const tokenOverlapFloor = 0.05

// bundleKeywords mark a title as describing a multi-item listing. The strict
// subset is what actually triggers a rejection; "par"/"duo"/"set" are too
// common in single-item titles to act on.
var (
	bundleKeywords       = []string{"kit", "pack", "lote", "set", "juego", "par", "duo"}
	strictBundleKeywords = []string{"kit", "lote", "pack", "juego"}
)

// rule is one predicate in the classifier chain. A nil verdict means the
// rule did not fire and the next rule runs.
type rule struct {
	name  string
	check func(c *ruleContext) *Classification
}

type ruleContext struct {
	target Target
	offer  marketplace.Offer
}

// ruleChain is evaluated in order with short-circuit on the first verdict.
// The order encodes decreasing certainty of rejection and is part of the
// contract: reordering changes which reason and confidence an ambiguous
// title receives.
var ruleChain = []rule{
	{"spec-conflict", checkSpecConflict},
	{"token-overlap", checkTokenOverlap},
	{"digit-consistency", checkDigitConsistency},
	{"essential-keywords", checkEssentialKeywords},
	{"price-ratio", checkPriceRatio},
	{"bundle-keywords", checkBundleKeywords},
}

// ClassifyByRules runs the rule chain for one candidate. It returns nil when
// no rule fires, meaning the candidate must go to LLM adjudication.
func ClassifyByRules(target Target, offer marketplace.Offer) *Classification {
	c := &ruleContext{target: target, offer: offer}
	for _, r := range ruleChain {
		if verdict := r.check(c); verdict != nil {
			return verdict
		}
	}
	return nil
}

// checkSpecConflict rejects when target and offer both state values for a
// specification category and the value sets are disjoint. Categories where
// only one side has data are skipped: an unstated spec is no opinion, not a
// disagreement.
func checkSpecConflict(c *ruleContext) *Classification {
	targetSpecs := specs.Extract(c.target.Description)
	offerSpecs := specs.Extract(c.offer.Title)

	for _, category := range specs.Categories {
		tValues := targetSpecs[category]
		if len(tValues) == 0 {
			continue
		}
		oValues := offerSpecs[category]
		if len(oValues) == 0 {
			continue
		}
		if !tValues.Intersects(oValues) {
			return c.reject(0.99, fmt.Sprintf(
				"Spec mismatch (%s): target %v vs offer %v",
				category, tValues.Sorted(), oValues.Sorted()))
		}
	}
	return nil
}

func checkTokenOverlap(c *ruleContext) *Classification {
	score := TokenOverlap(c.target.Description, c.offer.Title)
	if score < tokenOverlapFloor {
		return c.reject(0.90, fmt.Sprintf(
			"Low token overlap (%.2f) with target", score))
	}
	return nil
}

func checkDigitConsistency(c *ruleContext) *Classification {
	if !DigitsConsistent(c.target.Description, c.offer.Title) {
		return c.reject(0.95, fmt.Sprintf(
			"Digit mismatch: target numbers %v not found in offer",
			StandaloneDigits(c.target.Description)))
	}
	return nil
}

func checkEssentialKeywords(c *ruleContext) *Classification {
	keywords := EssentialKeywords(c.target.Description)
	if len(keywords) == 0 {
		return nil
	}

	titleLower := strings.ToLower(c.offer.Title)
	for _, kw := range keywords {
		if strings.Contains(titleLower, kw) {
			return nil
		}
	}
	return c.reject(0.98, fmt.Sprintf(
		"Keyword mismatch: essential terms %v missing from offer", keywords))
}

func checkPriceRatio(c *ruleContext) *Classification {
	if c.target.ReferencePrice <= 0 || c.offer.Price <= 0 {
		return nil
	}

	ratio := c.offer.Price / c.target.ReferencePrice
	if ratio < priceRatioLowerBound {
		verdict := c.reject(0.95, fmt.Sprintf(
			"Price sanity: $%.2f is too low vs reference $%.2f (ratio %.2f)",
			c.offer.Price, c.target.ReferencePrice, ratio))
		verdict.Accessory = true
		return verdict
	}
	if ratio > priceRatioUpperBound {
		verdict := c.reject(0.95, fmt.Sprintf(
			"Price sanity: $%.2f is too high vs reference $%.2f (ratio %.2f)",
			c.offer.Price, c.target.ReferencePrice, ratio))
		verdict.Bundle = true
		return verdict
	}
	return nil
}

func checkBundleKeywords(c *ruleContext) *Classification {
	targetLower := strings.ToLower(c.target.Description)
	for _, kw := range bundleKeywords {
		if strings.Contains(targetLower, kw) {
			// Target itself is a bundle; offers being bundles is expected.
			return nil
		}
	}

	titleLower := strings.ToLower(c.offer.Title)
	for _, kw := range strictBundleKeywords {
		if strings.Contains(titleLower, kw) {
			verdict := c.reject(0.90, "Bundle mismatch: offer is a kit/pack but target is not")
			verdict.Bundle = true
			return verdict
		}
	}
	return nil
}

func (c *ruleContext) reject(confidence float64, reason string) *Classification {
	return &Classification{
		OfferID:    c.offer.ID,
		Title:      c.offer.Title,
		Comparable: false,
		Confidence: confidence,
		Reason:     reason,
	}
}
