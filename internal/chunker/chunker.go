// Package chunker splits an oversized document into refinement units small
// enough for one LLM call each, while preserving paragraph and sentence
// integrity. Each unit then becomes one step of the summarization chain,
// so continuity across unit boundaries is carried by the running summary
// rather than by overlapping text.
package chunker

import (
	"strings"
	"unicode"
)

// Split breaks text into pieces each no longer than maxChars unicode code
// points. Splits are attempted (in order of preference) at:
//  1. Paragraph boundaries (\n\n or \r\n\r\n)
//  2. Sentence-ending punctuation (. ! ?)
//  3. Whitespace (word boundary)
//  4. Hard cut at maxChars if no suitable boundary is found
//
// If text fits entirely within maxChars, a single-element slice is returned.
// If maxChars ≤ 0 it is treated as unlimited (returns the whole text).
func Split(text string, maxChars int) []string {
	if maxChars <= 0 || len([]rune(text)) <= maxChars {
		return []string{text}
	}

	var units []string
	remaining := text

	for len([]rune(remaining)) > maxChars {
		cut := findSplit(remaining, maxChars)
		unit := strings.TrimSpace(remaining[:cut])
		if unit != "" {
			units = append(units, unit)
		}
		remaining = strings.TrimSpace(remaining[cut:])
	}

	if strings.TrimSpace(remaining) != "" {
		units = append(units, strings.TrimSpace(remaining))
	}

	return units
}

// findSplit returns the byte index within text at which to split, aiming for
// at most maxChars runes. It searches backwards from maxChars for the best
// boundary.
func findSplit(text string, maxChars int) int {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return len(text)
	}

	candidate := runes[:maxChars]

	// 1. Paragraph boundary — search backwards in the candidate prefix.
	prefix := string(candidate)
	if idx := strings.LastIndex(prefix, "\r\n\r\n"); idx > 0 {
		return idx + 4 // include the blank line in the consumed part
	}
	if idx := strings.LastIndex(prefix, "\n\n"); idx > 0 {
		return idx + 2
	}

	// 2. Sentence-ending punctuation followed by a space.
	for i := len(candidate) - 1; i > 0; i-- {
		r := candidate[i]
		if (r == '.' || r == '!' || r == '?') && i+1 < len(candidate) && unicode.IsSpace(candidate[i+1]) {
			return len(string(candidate[:i+1]))
		}
	}

	// 3. Whitespace word boundary.
	for i := len(candidate) - 1; i > 0; i-- {
		if unicode.IsSpace(candidate[i]) {
			return len(string(candidate[:i]))
		}
	}

	// 4. Hard cut.
	return len(prefix)
}
