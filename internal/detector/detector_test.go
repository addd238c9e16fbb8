package detector

import (
	"strings"
	"testing"
)

func TestDetector_Detect_Empty(t *testing.T) {
	d := New()

	if _, ok := d.Detect(""); ok {
		t.Error("expected detection to fail on empty text")
	}
}

func TestDetector_DetectISO_English(t *testing.T) {
	d := New()

	code, ok := d.DetectISO("The quick brown fox jumps over the lazy dog near the riverbank every single morning.")
	if !ok {
		t.Fatal("expected successful detection")
	}
	if !strings.EqualFold(code, "en") {
		t.Errorf("expected en, got %q", code)
	}
}

func TestDetector_DetectISO_Ukrainian(t *testing.T) {
	d := New()

	code, ok := d.DetectISO("Швидка бура лисиця перестрибує через ледачого собаку біля річки щоранку.")
	if !ok {
		t.Fatal("expected successful detection")
	}
	if !strings.EqualFold(code, "uk") {
		t.Errorf("expected uk, got %q", code)
	}
}

func TestDetector_DetectName(t *testing.T) {
	d := New()

	name, ok := d.DetectName("The committee approved the proposal after a lengthy debate about the annual budget.")
	if !ok {
		t.Fatal("expected successful detection")
	}
	if name != "English" {
		t.Errorf("expected English, got %q", name)
	}
}
