// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock strips the wrappers LLMs put around JSON responses:
// markdown code fences, conversational preamble, and trailing chatter.
// LLMs often add these even when instructed not to. Text with no
// recognizable JSON payload is returned unchanged so callers can still run
// keyword fallbacks over it.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	// Handle ```json ... ``` blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		return text
	}

	// Handle generic ``` ... ``` blocks
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			// If first line looks like a language identifier (no spaces, short), skip it
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		return text
	}

	// No fences: look for a bare JSON payload surrounded by prose
	if payload := extractJSONPayload(text); payload != "" {
		return payload
	}
	return text
}

// extractJSONPayload finds the first JSON object or array embedded in text,
// whichever starts earlier. Returns "" when neither is present and balanced.
func extractJSONPayload(text string) string {
	objIdx := strings.Index(text, "{")
	arrIdx := strings.Index(text, "[")

	switch {
	case objIdx < 0 && arrIdx < 0:
		return ""
	case arrIdx < 0 || (objIdx >= 0 && objIdx < arrIdx):
		return extractJSONObject(text[objIdx:])
	default:
		return extractJSONArray(text[arrIdx:])
	}
}

// extractJSONObject returns the balanced JSON object at the start of text,
// or "" when text does not begin with one.
func extractJSONObject(text string) string {
	return extractBalanced(text, '{', '}')
}

// extractJSONArray returns the balanced JSON array at the start of text,
// or "" when text does not begin with one.
func extractJSONArray(text string) string {
	return extractBalanced(text, '[', ']')
}

// extractBalanced scans for the closing delimiter matching text[0].
// Delimiters inside string literals do not count toward nesting.
func extractBalanced(text string, open, closing byte) string {
	if len(text) == 0 || text[0] != open {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}

		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case open:
			if !inString {
				depth++
			}
		case closing:
			if !inString {
				depth--
				if depth == 0 {
					return text[:i+1]
				}
			}
		}
	}

	// Unbalanced input
	return ""
}
