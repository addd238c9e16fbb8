package chunker

import (
	"strings"
	"testing"
)

func TestSplit_FitsInOneUnit(t *testing.T) {
	text := "Short document."
	units := Split(text, 100)
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0] != text {
		t.Errorf("expected %q, got %q", text, units[0])
	}
}

func TestSplit_UnlimitedWhenMaxZero(t *testing.T) {
	text := strings.Repeat("word ", 1000)
	units := Split(text, 0)
	if len(units) != 1 {
		t.Errorf("expected 1 unit for maxChars=0, got %d", len(units))
	}
}

func TestSplit_ParagraphBoundaryPreferred(t *testing.T) {
	text := "First paragraph with some content.\n\nSecond paragraph with more content."
	units := Split(text, 50)

	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d: %q", len(units), units)
	}
	if units[0] != "First paragraph with some content." {
		t.Errorf("expected split at paragraph boundary, got %q", units[0])
	}
	if units[1] != "Second paragraph with more content." {
		t.Errorf("unexpected second unit %q", units[1])
	}
}

func TestSplit_SentenceBoundary(t *testing.T) {
	text := "One sentence here. Another sentence follows right after without a paragraph break."
	units := Split(text, 40)

	if len(units) < 2 {
		t.Fatalf("expected at least 2 units, got %d", len(units))
	}
	if units[0] != "One sentence here." {
		t.Errorf("expected split after sentence, got %q", units[0])
	}
}

func TestSplit_WordBoundaryFallback(t *testing.T) {
	text := "no sentence punctuation just many words repeated over and over again"
	units := Split(text, 30)

	for i, u := range units {
		if len([]rune(u)) > 30 {
			t.Errorf("unit %d exceeds max length: %q", i, u)
		}
		if strings.HasPrefix(u, " ") || strings.HasSuffix(u, " ") {
			t.Errorf("unit %d not trimmed: %q", i, u)
		}
	}
	if joined := strings.Join(units, " "); joined != text {
		t.Errorf("expected units to reassemble into original, got %q", joined)
	}
}

func TestSplit_HardCutWithoutBoundaries(t *testing.T) {
	text := strings.Repeat("x", 95)
	units := Split(text, 30)

	var total int
	for i, u := range units {
		if len([]rune(u)) > 30 {
			t.Errorf("unit %d exceeds max length: %d runes", i, len([]rune(u)))
		}
		total += len(u)
	}
	if total != 95 {
		t.Errorf("expected all content preserved, got %d of 95 chars", total)
	}
}

func TestSplit_MultibyteRunes(t *testing.T) {
	text := strings.Repeat("славетний край ", 20)
	units := Split(text, 40)

	for i, u := range units {
		if len([]rune(u)) > 40 {
			t.Errorf("unit %d exceeds 40 runes: %d", i, len([]rune(u)))
		}
	}
	if len(units) < 2 {
		t.Errorf("expected multiple units, got %d", len(units))
	}
}
