// Package validator checks that a summary produced by an LLM backend is
// usable before it becomes the running summary for the rest of a chain.
package validator

import (
	"fmt"
	"strings"

	"github.com/valpere/perekaz/internal/detector"
)

// minValidationLength is the minimum rune count required to attempt language
// detection. Shorter texts produce unreliable results and are accepted
// without validation.
const minValidationLength = 20

// Validator checks that a summary is non-empty and written in the expected
// language. The underlying language detector is expensive to build; reuse
// the instance.
type Validator struct {
	det *detector.Detector
}

// New creates a Validator backed by the lingua-go language detector.
func New() *Validator {
	return &Validator{det: detector.New()}
}

// IsValid returns true when summary is non-empty and appears to be written
// in expectedLang (an ISO 639-1 code; empty skips the language check).
//
// Short texts (fewer than minValidationLength runes) and texts whose
// language cannot be determined pass without error. When the detected
// language differs from expectedLang the returned error names both codes.
func (v *Validator) IsValid(summary, expectedLang string) (bool, error) {
	text := strings.TrimSpace(summary)
	if text == "" {
		return false, fmt.Errorf("summary is empty")
	}

	if expectedLang == "" {
		return true, nil
	}

	// Detector is unreliable for very short texts; skip validation.
	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		// Ambiguous language — cannot validate, pass through.
		return true, nil
	}

	if !strings.EqualFold(detected, expectedLang) {
		return false, fmt.Errorf("expected %s but detected %s", expectedLang, detected)
	}

	return true, nil
}
