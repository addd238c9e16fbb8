// Package store persists summarization results in SQLite: a content-addressed
// summary memory that lets identical document sets skip the model entirely,
// a per-step audit of intermediate summaries, run checkpoints that allow an
// interrupted chain to resume from its last completed step, and user-managed
// focus terms injected into prompts.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/perekaz/internal"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS summary_requests (
		id TEXT PRIMARY KEY,
		doc_hash TEXT NOT NULL,
		doc_count INTEGER NOT NULL,
		language TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- summary_steps records every intermediate summary in step order,
	-- one row per completed link of a chain.
	CREATE TABLE IF NOT EXISTS summary_steps (
		request_id TEXT NOT NULL,
		step_idx INTEGER NOT NULL,
		phase TEXT NOT NULL,
		summary_text TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (request_id, step_idx),
		FOREIGN KEY (request_id) REFERENCES summary_requests(id)
	);

	CREATE TABLE IF NOT EXISTS summary_memory (
		id TEXT PRIMARY KEY,
		doc_hash TEXT NOT NULL,
		doc_count INTEGER NOT NULL,
		language TEXT,
		service_used TEXT,
		final_text TEXT NOT NULL,
		usage_count INTEGER DEFAULT 1,
		invalidated BOOLEAN DEFAULT FALSE,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(doc_hash, language, service_used)
	);

	-- run_checkpoints tracks in-progress chains for resume support.
	CREATE TABLE IF NOT EXISTS run_checkpoints (
		id TEXT PRIMARY KEY,
		doc_hash TEXT NOT NULL,
		doc_count INTEGER NOT NULL,
		next_index INTEGER NOT NULL DEFAULT 0,
		summary_text TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'in_progress',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS focus_terms (
		id TEXT PRIMARY KEY,
		term TEXT NOT NULL,
		note TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(term)
	);

	CREATE INDEX IF NOT EXISTS idx_memory_lookup ON summary_memory(doc_hash, language);
	CREATE INDEX IF NOT EXISTS idx_steps_request ON summary_steps(request_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DocHash returns the content-addressed key for an ordered document set:
// sha256 over the NFC-normalized documents joined with a NUL separator, so
// both document content and order contribute to the key.
func DocHash(documents []string) string {
	h := sha256.New()
	for i, doc := range documents {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(normalizeText(doc)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Store) SaveRequest(ctx context.Context, req internal.SummaryRequest) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO summary_requests (id, doc_hash, doc_count, language, created_at) VALUES (?, ?, ?, ?, ?)`,
		req.ID, req.DocHash, req.DocumentCount, req.Language, req.Timestamp)
	return err
}

// SaveStep records one intermediate summary for a request.
func (s *Store) SaveStep(ctx context.Context, requestID string, stepIdx int, phase, summaryText string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO summary_steps (request_id, step_idx, phase, summary_text) VALUES (?, ?, ?, ?)`,
		requestID, stepIdx, phase, summaryText)
	return err
}

// StepRecord is a row from the summary_steps table.
type StepRecord struct {
	StepIdx     int
	Phase       string
	SummaryText string
}

// ListSteps returns all recorded steps for a request in step order.
func (s *Store) ListSteps(ctx context.Context, requestID string) ([]StepRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT step_idx, phase, summary_text FROM summary_steps WHERE request_id = ? ORDER BY step_idx ASC`,
		requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []StepRecord
	for rows.Next() {
		var r StepRecord
		if err := rows.Scan(&r.StepIdx, &r.Phase, &r.SummaryText); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// GetCachedSummary returns a previously stored final summary for the same
// document set, language, and backend, bumping its usage counters.
func (s *Store) GetCachedSummary(ctx context.Context, docHash, language, serviceUsed string) (string, bool, error) {
	var finalText string
	var invalidated bool

	err := s.db.QueryRowContext(ctx,
		`SELECT final_text, invalidated FROM summary_memory WHERE doc_hash = ? AND language = ? AND service_used = ?`,
		docHash, language, serviceUsed).Scan(&finalText, &invalidated)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if invalidated {
		return "", false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE summary_memory SET usage_count = usage_count + 1, last_used = ? WHERE doc_hash = ? AND language = ? AND service_used = ?`,
		time.Now(), docHash, language, serviceUsed)

	return finalText, true, err
}

func (s *Store) SaveToMemory(ctx context.Context, docHash string, docCount int, language, serviceUsed, finalText string) error {
	id := fmt.Sprintf("mem_%d", time.Now().UnixNano())
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO summary_memory (id, doc_hash, doc_count, language, service_used, final_text, usage_count, invalidated, last_used, created_at) VALUES (?, ?, ?, ?, ?, ?, 1, FALSE, ?, ?)`,
		id, docHash, docCount, language, serviceUsed, finalText, time.Now(), time.Now())
	return err
}

// MemoryEntry is a row from the summary_memory table.
type MemoryEntry struct {
	ID          string
	DocHash     string
	DocCount    int
	Language    string
	ServiceUsed string
	FinalText   string
	UsageCount  int
	Invalidated bool
	LastUsed    time.Time
}

// ListMemory returns all summary memory entries ordered by most recently used.
func (s *Store) ListMemory(ctx context.Context) ([]MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc_hash, doc_count, language, service_used, final_text, usage_count, invalidated, last_used FROM summary_memory ORDER BY last_used DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MemoryEntry
	for rows.Next() {
		var e MemoryEntry
		if err := rows.Scan(&e.ID, &e.DocHash, &e.DocCount, &e.Language, &e.ServiceUsed, &e.FinalText, &e.UsageCount, &e.Invalidated, &e.LastUsed); err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

func (s *Store) InvalidateMemory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE summary_memory SET invalidated = TRUE WHERE id = ?`, id)
	return err
}

// DeleteMemory permanently removes a summary memory entry by ID.
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM summary_memory WHERE id = ?`, id)
	return err
}

// ClearMemory removes all summary memory entries.
func (s *Store) ClearMemory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM summary_memory`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CacheStats summarises summary memory usage.
type CacheStats struct {
	TotalEntries   int
	ActiveEntries  int
	InvalidEntries int
	TotalUsage     int
}

// Stats returns summary statistics for the summary memory.
func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN NOT invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(usage_count), 0)
		FROM summary_memory`).Scan(
		&stats.TotalEntries,
		&stats.ActiveEntries,
		&stats.InvalidEntries,
		&stats.TotalUsage,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Checkpoint is an in-progress chain's resume record: the next unconsumed
// document index and the running summary as of the last completed step.
type Checkpoint struct {
	ID        string
	DocHash   string
	DocCount  int
	NextIndex int
	Summary   string
	Status    string
	CreatedAt time.Time
}

// CreateCheckpoint creates a new checkpoint record and returns its ID.
func (s *Store) CreateCheckpoint(ctx context.Context, docHash string, docCount int) (string, error) {
	id := fmt.Sprintf("run_%d", time.Now().UnixNano())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_checkpoints (id, doc_hash, doc_count) VALUES (?, ?, ?)`,
		id, docHash, docCount)
	return id, err
}

// UpdateCheckpoint records the position after a completed step.
func (s *Store) UpdateCheckpoint(ctx context.Context, checkpointID string, nextIndex int, summary string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE run_checkpoints SET next_index = ?, summary_text = ?, updated_at = ? WHERE id = ?`,
		nextIndex, summary, time.Now(), checkpointID)
	return err
}

// GetCheckpoint retrieves a checkpoint by ID.
func (s *Store) GetCheckpoint(ctx context.Context, checkpointID string) (*Checkpoint, error) {
	var cp Checkpoint
	err := s.db.QueryRowContext(ctx,
		`SELECT id, doc_hash, doc_count, next_index, summary_text, status, created_at FROM run_checkpoints WHERE id = ?`,
		checkpointID).Scan(&cp.ID, &cp.DocHash, &cp.DocCount, &cp.NextIndex, &cp.Summary, &cp.Status, &cp.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("checkpoint not found: %s", checkpointID)
	}
	return &cp, err
}

// CompleteCheckpoint marks a checkpoint as completed.
func (s *Store) CompleteCheckpoint(ctx context.Context, checkpointID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE run_checkpoints SET status = 'completed', updated_at = ? WHERE id = ?`,
		time.Now(), checkpointID)
	return err
}

// FocusTerm is a user-managed key term that summaries must preserve.
type FocusTerm struct {
	ID   string
	Term string
	Note string
}

// AddFocusTerm adds or replaces a focus term.
func (s *Store) AddFocusTerm(ctx context.Context, term, note string) error {
	id := fmt.Sprintf("ft_%d", time.Now().UnixNano())
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO focus_terms (id, term, note) VALUES (?, ?, ?)`,
		id, normalizeText(term), note)
	return err
}

// ListFocusTerms returns all focus terms in insertion order.
func (s *Store) ListFocusTerms(ctx context.Context) ([]FocusTerm, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, term, COALESCE(note, '') FROM focus_terms ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []FocusTerm
	for rows.Next() {
		var ft FocusTerm
		if err := rows.Scan(&ft.ID, &ft.Term, &ft.Note); err != nil {
			return nil, err
		}
		results = append(results, ft)
	}
	return results, rows.Err()
}

// DeleteFocusTerm removes a focus term by ID.
func (s *Store) DeleteFocusTerm(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM focus_terms WHERE id = ?`, id)
	return err
}

// normalizeText trims whitespace and applies Unicode NFC normalization
// for consistent cache key comparison.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
