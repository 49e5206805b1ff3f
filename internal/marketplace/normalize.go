package marketplace

import (
	"fmt"
	"strconv"
	"strings"
)

// Normalize converts raw scraper entries into typed offers. Entries that
// cannot be normalized are not fatal: they are returned separately with a
// reason so callers can surface them as diagnostics.
func Normalize(raw []map[string]any) ([]Offer, []DroppedOffer) {
	offers := make([]Offer, 0, len(raw))
	var dropped []DroppedOffer

	for _, entry := range raw {
		offer, err := normalizeOne(entry)
		if err != nil {
			dropped = append(dropped, DroppedOffer{Raw: entry, Reason: err.Error()})
			continue
		}
		offers = append(offers, offer)
	}

	return offers, dropped
}

func normalizeOne(entry map[string]any) (Offer, error) {
	if entry == nil {
		return Offer{}, fmt.Errorf("nil entry")
	}

	title := stringField(entry, "title")
	if strings.TrimSpace(title) == "" {
		return Offer{}, fmt.Errorf("missing title")
	}

	price, ok := priceField(entry)
	if !ok {
		return Offer{}, fmt.Errorf("missing or unparseable price")
	}

	return Offer{
		ID:           firstString(entry, "id", "item_id"),
		Title:        title,
		Price:        price,
		Currency:     stringField(entry, "currency"),
		ImageURL:     firstString(entry, "image_url", "thumbnail"),
		Permalink:    stringField(entry, "permalink"),
		Condition:    stringField(entry, "condition"),
		SoldQuantity: intField(entry, "sold_quantity"),
	}, nil
}

func stringField(entry map[string]any, key string) string {
	if v, ok := entry[key].(string); ok {
		return v
	}
	return ""
}

func firstString(entry map[string]any, keys ...string) string {
	for _, key := range keys {
		if v := stringField(entry, key); v != "" {
			return v
		}
	}
	return ""
}

func intField(entry map[string]any, key string) int {
	switch v := entry[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// priceField accepts the numeric shapes different scraper backends produce:
// float64 (JSON numbers), int, or a string like "1,299.00".
func priceField(entry map[string]any) (float64, bool) {
	switch v := entry["price"].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		cleaned = strings.TrimPrefix(cleaned, "$")
		price, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return price, true
	}
	return 0, false
}
