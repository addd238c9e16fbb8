// Package summarizer contains the LLM backends that produce and refine
// summaries. Each backend implements the same two-operation Service
// interface: an initial summary of a single document, and a refinement
// that folds one more document into an existing summary.
package summarizer

import (
	"context"
	"time"
)

// ServiceConfig carries per-run settings shared by all backends.
type ServiceConfig struct {
	APIKey   string        `mapstructure:"api_key" json:"api_key"`
	Model    string        `mapstructure:"model" json:"model"`
	BaseURL  string        `mapstructure:"base_url" json:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout" json:"timeout"`
	Language string        `mapstructure:"language" json:"language"`
	MaxWords int           `mapstructure:"max_words" json:"max_words"`
}

// Request is the input for one summarization step. ExistingSummary is empty
// for the initial pass and holds the running summary for refine passes.
type Request struct {
	Text            string   `json:"text"`
	ExistingSummary string   `json:"existing_summary,omitempty"`
	Language        string   `json:"language,omitempty"`
	Focus           []string `json:"focus,omitempty"`
	MaxWords        int      `json:"max_words,omitempty"`
}

// ServiceResult is the outcome of one backend call.
type ServiceResult struct {
	ServiceName string            `json:"service_name"`
	Summary     string            `json:"summary"`
	Latency     time.Duration     `json:"latency"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// Service is an LLM summarization backend.
type Service interface {
	Name() string

	// Summarize produces an initial summary of req.Text.
	Summarize(ctx context.Context, cfg ServiceConfig, req Request) (*ServiceResult, error)

	// Refine produces a new summary incorporating req.Text into
	// req.ExistingSummary. The result replaces the existing summary.
	Refine(ctx context.Context, cfg ServiceConfig, req Request) (*ServiceResult, error)

	// IsAvailable reports whether the backend is reachable and configured.
	IsAvailable(ctx context.Context) error
}
