package matching

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	nonAlnumRe        = regexp.MustCompile(`[^a-zA-Z0-9]`)
	specUnitTokenRe   = regexp.MustCompile(`^\d+(?:ohm|w|v|kw|hp|kg|g|lb|oz|ml|l|m|cm|mm|in|ft|gb|tb|hz|khz|mah)$`)
	overlapTokenRe    = regexp.MustCompile(`\b[a-z0-9]{3,}\b`)
	standaloneDigitRe = regexp.MustCompile(`\b\d+\b`)
	digitRunRe        = regexp.MustCompile(`\d+`)
)

// stopWords is a fixed Spanish/English mix removed before token overlap.
var stopWords = map[string]bool{
	"para": true, "con": true, "los": true, "las": true,
	"una": true, "uno": true, "del": true, "por": true, "que": true,
	"for": true, "with": true, "the": true, "and": true,
}

// EssentialKeywords extracts model-like alphanumeric tokens ("xm5", "s23",
// "g502"). Pure spec tokens like "8ohm" or "500w" are left out; those are
// handled by the spec extractor, not keyword matching.
func EssentialKeywords(text string) []string {
	var keywords []string
	for _, token := range strings.Fields(text) {
		clean := nonAlnumRe.ReplaceAllString(token, "")
		if len(clean) < 2 {
			continue
		}
		if specUnitTokenRe.MatchString(strings.ToLower(clean)) {
			continue
		}
		if hasDigit(clean) || (isAllUpper(clean) && len(clean) >= 3) {
			keywords = append(keywords, strings.ToLower(clean))
		}
	}
	return keywords
}

// TokenOverlap computes Jaccard similarity of significant tokens: lower-cased
// alphanumeric runs of length >= 3 with stop words removed. Returns 0 when
// either side yields no tokens.
func TokenOverlap(a, b string) float64 {
	setA := overlapTokens(a)
	setB := overlapTokens(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// DigitsConsistent checks that when the target title carries standalone
// numbers ("Bocina 8"), the offer mentions at least one of them anywhere,
// embedded in a unit token or not. A target without standalone numbers
// imposes no constraint.
func DigitsConsistent(target, offer string) bool {
	targetDigits := standaloneDigitRe.FindAllString(target, -1)
	if len(targetDigits) == 0 {
		return true
	}

	offerDigits := map[string]bool{}
	for _, d := range digitRunRe.FindAllString(offer, -1) {
		offerDigits[d] = true
	}

	for _, d := range targetDigits {
		if offerDigits[d] {
			return true
		}
	}
	return false
}

// StandaloneDigits returns the word-bounded digit runs of a text, for use in
// rejection reason strings.
func StandaloneDigits(text string) []string {
	return standaloneDigitRe.FindAllString(text, -1)
}

func overlapTokens(text string) map[string]bool {
	tokens := map[string]bool{}
	for _, token := range overlapTokenRe.FindAllString(strings.ToLower(text), -1) {
		if !stopWords[token] {
			tokens[token] = true
		}
	}
	return tokens
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// isAllUpper reports whether the token contains at least one letter and
// every letter is upper case (model codes like "XM5", "PRO").
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}
