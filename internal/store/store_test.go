package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/valpere/perekaz/internal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "perekaz_test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDocHash_OrderSensitive(t *testing.T) {
	a := DocHash([]string{"one", "two"})
	b := DocHash([]string{"two", "one"})
	if a == b {
		t.Error("expected different hashes for reordered documents")
	}
}

func TestDocHash_NormalizationAndWhitespace(t *testing.T) {
	a := DocHash([]string{"  hello  "})
	b := DocHash([]string{"hello"})
	if a != b {
		t.Error("expected surrounding whitespace to be ignored")
	}

	// NFC vs NFD of "é" must hash identically.
	if DocHash([]string{"café"}) != DocHash([]string{"café"}) {
		t.Error("expected NFC normalization to unify equivalent forms")
	}
}

func TestDocHash_SeparatorPreventsCollision(t *testing.T) {
	if DocHash([]string{"ab", "c"}) == DocHash([]string{"a", "bc"}) {
		t.Error("expected separator to keep document boundaries distinct")
	}
}

func TestStore_SaveRequestAndSteps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	req := internal.SummaryRequest{
		ID:            "req-1",
		DocumentCount: 3,
		DocHash:       DocHash([]string{"a", "b", "c"}),
		Language:      "en",
		Timestamp:     time.Now(),
	}
	if err := s.SaveRequest(ctx, req); err != nil {
		t.Fatalf("failed to save request: %v", err)
	}

	for i, phase := range []string{"initial", "refine", "refine"} {
		if err := s.SaveStep(ctx, req.ID, i, phase, "summary after step"); err != nil {
			t.Fatalf("failed to save step %d: %v", i, err)
		}
	}

	steps, err := s.ListSteps(ctx, req.ID)
	if err != nil {
		t.Fatalf("failed to list steps: %v", err)
	}
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(steps))
	}
	if steps[0].Phase != "initial" {
		t.Errorf("expected first step phase initial, got %q", steps[0].Phase)
	}
	for i, step := range steps {
		if step.StepIdx != i {
			t.Errorf("expected step order %d, got %d", i, step.StepIdx)
		}
	}
}

func TestStore_MemoryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hash := DocHash([]string{"doc one", "doc two"})
	if err := s.SaveToMemory(ctx, hash, 2, "en", "ollama", "the final summary"); err != nil {
		t.Fatalf("failed to save to memory: %v", err)
	}

	got, found, err := s.GetCachedSummary(ctx, hash, "en", "ollama")
	if err != nil {
		t.Fatalf("failed to get cached summary: %v", err)
	}
	if !found {
		t.Fatal("expected cache hit")
	}
	if got != "the final summary" {
		t.Errorf("expected cached text, got %q", got)
	}

	// Different backend or language must miss.
	if _, found, _ := s.GetCachedSummary(ctx, hash, "en", "gemini"); found {
		t.Error("expected miss for different backend")
	}
	if _, found, _ := s.GetCachedSummary(ctx, hash, "uk", "ollama"); found {
		t.Error("expected miss for different language")
	}
}

func TestStore_MemoryUsageCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hash := DocHash([]string{"doc"})
	if err := s.SaveToMemory(ctx, hash, 1, "en", "ollama", "text"); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, _, err := s.GetCachedSummary(ctx, hash, "en", "ollama"); err != nil {
			t.Fatalf("lookup %d failed: %v", i, err)
		}
	}

	entries, err := s.ListMemory(ctx)
	if err != nil {
		t.Fatalf("failed to list memory: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].UsageCount != 4 { // 1 initial + 3 hits
		t.Errorf("expected usage count 4, got %d", entries[0].UsageCount)
	}
}

func TestStore_InvalidateAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hash := DocHash([]string{"doc"})
	if err := s.SaveToMemory(ctx, hash, 1, "en", "ollama", "text"); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	entries, _ := s.ListMemory(ctx)
	if err := s.InvalidateMemory(ctx, entries[0].ID); err != nil {
		t.Fatalf("failed to invalidate: %v", err)
	}

	if _, found, _ := s.GetCachedSummary(ctx, hash, "en", "ollama"); found {
		t.Error("expected invalidated entry to miss")
	}

	if err := s.DeleteMemory(ctx, entries[0].ID); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	entries, _ = s.ListMemory(ctx)
	if len(entries) != 0 {
		t.Errorf("expected empty memory after delete, got %d entries", len(entries))
	}
}

func TestStore_ClearAndStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.SaveToMemory(ctx, DocHash([]string{"a"}), 1, "en", "ollama", "one")
	_ = s.SaveToMemory(ctx, DocHash([]string{"b"}), 1, "en", "ollama", "two")

	entries, _ := s.ListMemory(ctx)
	_ = s.InvalidateMemory(ctx, entries[0].ID)

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if stats.TotalEntries != 2 {
		t.Errorf("expected 2 total entries, got %d", stats.TotalEntries)
	}
	if stats.ActiveEntries != 1 || stats.InvalidEntries != 1 {
		t.Errorf("expected 1 active / 1 invalid, got %d / %d", stats.ActiveEntries, stats.InvalidEntries)
	}

	n, err := s.ClearMemory(ctx)
	if err != nil {
		t.Fatalf("failed to clear: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 cleared entries, got %d", n)
	}
}

func TestStore_CheckpointLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hash := DocHash([]string{"a", "b", "c"})
	id, err := s.CreateCheckpoint(ctx, hash, 3)
	if err != nil {
		t.Fatalf("failed to create checkpoint: %v", err)
	}

	cp, err := s.GetCheckpoint(ctx, id)
	if err != nil {
		t.Fatalf("failed to get checkpoint: %v", err)
	}
	if cp.NextIndex != 0 || cp.Summary != "" {
		t.Errorf("expected fresh checkpoint, got index=%d summary=%q", cp.NextIndex, cp.Summary)
	}
	if cp.Status != "in_progress" {
		t.Errorf("expected in_progress status, got %q", cp.Status)
	}

	if err := s.UpdateCheckpoint(ctx, id, 2, "summary after two docs"); err != nil {
		t.Fatalf("failed to update checkpoint: %v", err)
	}

	cp, err = s.GetCheckpoint(ctx, id)
	if err != nil {
		t.Fatalf("failed to reload checkpoint: %v", err)
	}
	if cp.NextIndex != 2 {
		t.Errorf("expected next index 2, got %d", cp.NextIndex)
	}
	if cp.Summary != "summary after two docs" {
		t.Errorf("unexpected summary %q", cp.Summary)
	}
	if cp.DocHash != hash {
		t.Errorf("expected doc hash preserved")
	}

	if err := s.CompleteCheckpoint(ctx, id); err != nil {
		t.Fatalf("failed to complete checkpoint: %v", err)
	}
	cp, _ = s.GetCheckpoint(ctx, id)
	if cp.Status != "completed" {
		t.Errorf("expected completed status, got %q", cp.Status)
	}
}

func TestStore_CheckpointNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetCheckpoint(context.Background(), "run_missing"); err == nil {
		t.Error("expected error for missing checkpoint")
	}
}

func TestStore_FocusTerms(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AddFocusTerm(ctx, "Kyiv", "capital, keep transliteration"); err != nil {
		t.Fatalf("failed to add focus term: %v", err)
	}
	if err := s.AddFocusTerm(ctx, "GDP", ""); err != nil {
		t.Fatalf("failed to add focus term: %v", err)
	}

	terms, err := s.ListFocusTerms(ctx)
	if err != nil {
		t.Fatalf("failed to list focus terms: %v", err)
	}
	if len(terms) != 2 {
		t.Fatalf("expected 2 terms, got %d", len(terms))
	}
	if terms[0].Term != "Kyiv" {
		t.Errorf("expected insertion order, got %q first", terms[0].Term)
	}

	if err := s.DeleteFocusTerm(ctx, terms[0].ID); err != nil {
		t.Fatalf("failed to delete focus term: %v", err)
	}
	terms, _ = s.ListFocusTerms(ctx)
	if len(terms) != 1 || terms[0].Term != "GDP" {
		t.Errorf("expected only GDP to remain, got %v", terms)
	}
}
