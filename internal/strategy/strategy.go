// Package strategy derives marketplace search terms for a pivot product.
// The seller rebrands imported goods, so competitor search must target the
// product category and key specifications rather than any brand name.
package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/louder/priceagent/internal/llm"
	"github.com/louder/priceagent/internal/matching"
	"github.com/louder/priceagent/internal/prompts"
	"github.com/louder/priceagent/internal/schemas"
	"github.com/louder/priceagent/internal/specs"
)

// searchTermsSchema validates the LLM response shape before it is trusted.
const searchTermsSchema = `{
  "type": "object",
  "required": ["primary_search"],
  "properties": {
    "primary_search": {"type": "string", "minLength": 1},
    "alternative_searches": {"type": "array", "items": {"type": "string"}},
    "key_specs": {"type": "array", "items": {"type": "string"}},
    "exclude_terms": {"type": "array", "items": {"type": "string"}},
    "reasoning": {"type": "string"}
  }
}`

// SearchStrategy is the search plan for finding comparable listings.
type SearchStrategy struct {
	PrimarySearch       string   `json:"primary_search"`
	AlternativeSearches []string `json:"alternative_searches,omitempty"`
	KeySpecs            []string `json:"key_specs,omitempty"`
	ExcludeTerms        []string `json:"exclude_terms,omitempty"`
	Reasoning           string   `json:"reasoning,omitempty"`
}

// Terms returns the primary search followed by the alternatives, deduplicated.
func (s *SearchStrategy) Terms() []string {
	seen := map[string]bool{}
	var terms []string
	for _, term := range append([]string{s.PrimarySearch}, s.AlternativeSearches...) {
		term = strings.TrimSpace(term)
		if term == "" || seen[strings.ToLower(term)] {
			continue
		}
		seen[strings.ToLower(term)] = true
		terms = append(terms, term)
	}
	return terms
}

// GenerateError wraps a failure to obtain a strategy from the LLM. Callers
// normally recover with Fallback.
type GenerateError struct {
	Message string
	Cause   error
}

func (e *GenerateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("strategy error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("strategy error: %s", e.Message)
}

func (e *GenerateError) Unwrap() error {
	return e.Cause
}

// Generate asks the LLM for search terms describing the target product. The
// response is schema-validated; malformed output is an error so the caller
// can decide between retrying and the keyword fallback.
func Generate(ctx context.Context, client llm.Client, productDescription string) (*SearchStrategy, error) {
	template := prompts.MustGet("strategy.json", "search-terms")
	prompt := prompts.Format(template, map[string]string{
		"Product": productDescription,
	})

	raw, err := client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &GenerateError{Message: "LLM generation failed", Cause: err}
	}

	cleaned := llm.CleanJSONBlock(raw)

	if err := schemas.Validate(searchTermsSchema, cleaned); err != nil {
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			return nil, &GenerateError{Message: "response failed schema validation", Cause: ve}
		}
		return nil, &GenerateError{Message: "response is not valid JSON", Cause: err}
	}

	var strategy SearchStrategy
	if err := json.Unmarshal([]byte(cleaned), &strategy); err != nil {
		return nil, &GenerateError{Message: "failed to unmarshal response", Cause: err}
	}
	return &strategy, nil
}

// Fallback builds a search strategy without the LLM: significant title
// tokens plus whatever specs the extractor finds. Good enough to keep a run
// alive when the LLM is unreachable.
func Fallback(productDescription string) *SearchStrategy {
	var significant []string
	for _, token := range strings.Fields(strings.ToLower(productDescription)) {
		if len(token) >= 3 && len(significant) < 4 {
			significant = append(significant, token)
		}
	}

	var keySpecs []string
	extracted := specs.Extract(productDescription)
	for _, cat := range specs.Categories {
		for _, value := range extracted[cat].Sorted() {
			keySpecs = append(keySpecs, fmt.Sprintf("%s %s", value, cat))
		}
	}

	primary := strings.Join(significant, " ")
	if primary == "" {
		primary = strings.TrimSpace(productDescription)
	}

	strat := &SearchStrategy{
		PrimarySearch: primary,
		KeySpecs:      keySpecs,
		Reasoning:     "keyword fallback: built from title tokens and extracted specs",
	}
	if kw := matching.EssentialKeywords(productDescription); len(kw) > 0 {
		strat.AlternativeSearches = []string{strings.Join(kw, " ")}
	}
	return strat
}
