// Package specs extracts categorized numeric specifications from free-text
// product titles (sizes, wattage, capacity, storage, voltage, impedance).
package specs

import (
	"regexp"
	"sort"
	"strings"
)

// Category identifies a specification category.
type Category string

// Specification categories recognized by the extractor.
const (
	CategorySize      Category = "size"
	CategoryPower     Category = "power"
	CategoryCapacity  Category = "capacity"
	CategoryStorage   Category = "storage"
	CategoryVoltage   Category = "voltage"
	CategoryWeight    Category = "weight"
	CategoryImpedance Category = "impedance"
)

// Categories lists every category in a stable order. Extract always returns
// an entry for each of them, even when the text mentions none.
var Categories = []Category{
	CategorySize,
	CategoryPower,
	CategoryCapacity,
	CategoryStorage,
	CategoryVoltage,
	CategoryWeight,
	CategoryImpedance,
}

// Values is a set of extracted numeric values for one category. Values are
// kept as the raw matched substring: spec equality is exact-string match,
// not numeric tolerance ("8" and "8.0" are different values).
type Values map[string]bool

// Set maps every category to its extracted values. Categories absent from
// the text map to an empty (non-nil) Values set.
type Set map[Category]Values

// patterns are applied against the lower-cased text. A category may have
// more than one pattern; all matches are unioned into its value set.
var patterns = map[Category][]*regexp.Regexp{
	// Explicit units (8", 15 in, 12 pulgadas) plus the implicit audio form
	// where a bare 1-2 digit number follows a speaker noun ("Bocina 8").
	CategorySize: {
		regexp.MustCompile(`\b(\d{1,2}(?:\.\d)?)\s?(?:"|in|pulg|pulgadas)\b`),
		regexp.MustCompile(`\b(?:bocina|bafle|subwoofer|parlante|woofer|medio|driver)\s+(\d{1,2})\b`),
	},
	CategoryPower: {
		regexp.MustCompile(`\b(\d{2,5})\s?(?:w|watts|watt)\b`),
	},
	CategoryCapacity: {
		regexp.MustCompile(`\b(\d{1,3})\s?(?:l|lt|litros|liter)\b`),
	},
	CategoryStorage: {
		regexp.MustCompile(`\b(\d{1,4})\s?(?:gb|tb|gigas)\b`),
	},
	CategoryVoltage: {
		regexp.MustCompile(`\b(\d{1,3})\s?(?:v|volts|volt)\b`),
	},
	CategoryImpedance: {
		regexp.MustCompile(`\b(\d{1,2})\s?(?:ohm|ohms|Ω)\b`),
	},
	// No reliable title pattern for weight; the category exists so callers
	// can record values obtained elsewhere (e.g. listing attributes).
	CategoryWeight: {},
}

// Extract parses free text into a specification set. Matching is
// case-insensitive and anchored on word boundaries. Every category key is
// always present in the result, possibly with an empty value set.
func Extract(text string) Set {
	lower := strings.ToLower(text)

	set := make(Set, len(Categories))
	for _, cat := range Categories {
		values := Values{}
		for _, re := range patterns[cat] {
			for _, m := range re.FindAllStringSubmatch(lower, -1) {
				values[m[1]] = true
			}
		}
		set[cat] = values
	}
	return set
}

// Intersects reports whether the two value sets share at least one value.
func (v Values) Intersects(other Values) bool {
	for value := range v {
		if other[value] {
			return true
		}
	}
	return false
}

// Sorted returns the values in lexicographic order, for stable reason strings.
func (v Values) Sorted() []string {
	out := make([]string, 0, len(v))
	for value := range v {
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}
