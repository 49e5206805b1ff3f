// Package marketplace provides the offer ingress boundary: fetching and
// parsing listing-search pages and normalizing raw scraper output into
// typed offer records.
package marketplace

// Offer is a single marketplace listing candidate. Offers are treated as
// immutable inputs by the rest of the system.
type Offer struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency,omitempty"`
	ImageURL     string  `json:"image_url,omitempty"`
	Permalink    string  `json:"permalink,omitempty"`
	Condition    string  `json:"condition,omitempty"`
	SoldQuantity int     `json:"sold_quantity,omitempty"`
}

// DroppedOffer records a raw entry that could not be normalized into an
// Offer, together with the reason it was dropped.
type DroppedOffer struct {
	Raw    map[string]any `json:"raw"`
	Reason string         `json:"reason"`
}
