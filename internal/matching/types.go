// Package matching decides, for each scraped candidate offer, whether it is
// truly comparable to a target product. Candidates flow through an ordered
// pipeline: semantic similarity gate, rule-based classifier, and finally an
// LLM adjudicator for anything the cheap checks could not settle.
package matching

import "github.com/louder/priceagent/internal/marketplace"

// Target describes the product candidates are compared against. It is
// immutable for the duration of one matching run.
type Target struct {
	Description    string  `json:"description"`
	ImageURL       string  `json:"image_url,omitempty"`
	ReferencePrice float64 `json:"reference_price,omitempty"`
}

// Classification is the verdict for one (target, offer) pair. Created once
// per offer per run and never mutated afterwards.
type Classification struct {
	OfferID    string  `json:"offer_id"`
	Title      string  `json:"title"`
	Comparable bool    `json:"is_comparable"`
	Accessory  bool    `json:"is_accessory"`
	Bundle     bool    `json:"is_bundle"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// ExcludedOffer is a non-comparable offer annotated with the reason its
// classification gave for excluding it.
type ExcludedOffer struct {
	marketplace.Offer
	ExclusionReason string `json:"exclusion_reason"`
}

// Result aggregates one matching run.
type Result struct {
	Target          string                    `json:"target"`
	TotalOffers     int                       `json:"total_offers"`
	Classifications []Classification          `json:"classifications"`
	Comparable      []marketplace.Offer       `json:"comparable_offers"`
	Excluded        []ExcludedOffer           `json:"excluded_offers"`
	Dropped         []marketplace.DroppedOffer `json:"dropped_offers,omitempty"`
	Errors          []string                  `json:"errors,omitempty"`
}
