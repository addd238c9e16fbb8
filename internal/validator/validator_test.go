package validator

import "testing"

func TestValidator_IsValid_Empty(t *testing.T) {
	v := New()

	ok, err := v.IsValid("", "en")
	if ok {
		t.Error("expected empty summary to be invalid")
	}
	if err == nil {
		t.Error("expected error for empty summary")
	}
}

func TestValidator_IsValid_WhitespaceOnly(t *testing.T) {
	v := New()

	ok, _ := v.IsValid("  \n\t ", "")
	if ok {
		t.Error("expected whitespace-only summary to be invalid")
	}
}

func TestValidator_IsValid_NoExpectedLanguage(t *testing.T) {
	v := New()

	ok, err := v.IsValid("Any language is fine here.", "")
	if !ok || err != nil {
		t.Errorf("expected pass without language check, got ok=%v err=%v", ok, err)
	}
}

func TestValidator_IsValid_ShortTextSkipsDetection(t *testing.T) {
	v := New()

	ok, err := v.IsValid("Дуже коротко.", "en")
	if !ok || err != nil {
		t.Errorf("expected short text to pass, got ok=%v err=%v", ok, err)
	}
}

func TestValidator_IsValid_MatchingLanguage(t *testing.T) {
	v := New()

	ok, err := v.IsValid("The committee approved the annual budget after a lengthy debate on spending priorities.", "en")
	if !ok || err != nil {
		t.Errorf("expected matching language to pass, got ok=%v err=%v", ok, err)
	}
}

func TestValidator_IsValid_WrongLanguage(t *testing.T) {
	v := New()

	ok, err := v.IsValid("Комітет ухвалив річний бюджет після тривалого обговорення пріоритетів видатків.", "en")
	if ok {
		t.Error("expected mismatched language to fail")
	}
	if err == nil {
		t.Error("expected error naming both language codes")
	}
}
