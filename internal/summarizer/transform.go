package summarizer

import (
	"context"
	"fmt"
	"strings"
)

// Transform binds a Service and its per-run settings to the two-operation
// contract the refinement chain consumes. It applies the configured per-call
// timeout at each step (the chain's only suspension point) and treats an
// empty cleaned response as a failed step rather than letting a blank
// summary poison the rest of the chain.
type Transform struct {
	service Service
	cfg     ServiceConfig
	focus   []string
}

// NewTransform creates a Transform. focus terms, language, and word budget
// come from cfg and are injected into every prompt.
func NewTransform(service Service, cfg ServiceConfig, focus []string) *Transform {
	return &Transform{service: service, cfg: cfg, focus: focus}
}

// Summarize implements refine.Transform.
func (t *Transform) Summarize(ctx context.Context, text string) (string, error) {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	result, err := t.service.Summarize(ctx, t.cfg, t.request(text, ""))
	return t.extract(result, err)
}

// Refine implements refine.Transform.
func (t *Transform) Refine(ctx context.Context, summary, doc string) (string, error) {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	result, err := t.service.Refine(ctx, t.cfg, t.request(doc, summary))
	return t.extract(result, err)
}

func (t *Transform) request(text, existing string) Request {
	return Request{
		Text:            text,
		ExistingSummary: existing,
		Language:        t.cfg.Language,
		Focus:           t.focus,
		MaxWords:        t.cfg.MaxWords,
	}
}

func (t *Transform) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.cfg.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, t.cfg.Timeout)
}

func (t *Transform) extract(result *ServiceResult, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(result.Summary) == "" {
		return "", fmt.Errorf("empty summary from %s", result.ServiceName)
	}
	return result.Summary, nil
}
