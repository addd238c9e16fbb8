// Package refine drives an ordered set of documents through a sequential
// summarization chain: the first document seeds the running summary, every
// later document is folded into it by a refine call, and the last summary
// produced is the result. Steps are strictly ordered because each one
// depends on the previous step's output; the chain itself never runs
// transform calls in parallel.
package refine

import (
	"context"
	"errors"
	"fmt"
)

// Phase identifies which kind of transform call a step issued.
type Phase int

const (
	// PhaseInitial is the first step: a plain summary of document 0.
	PhaseInitial Phase = iota
	// PhaseRefining folds one more document into the running summary.
	PhaseRefining
	// PhaseDone is terminal; no further transform calls are made.
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhaseRefining:
		return "refine"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Transform is the text-transform collaborator backing each step. Both calls
// are potentially long-latency (a model round trip) and fallible; the chain
// treats them as opaque text-in/text-out functions.
type Transform interface {
	// Summarize produces a summary of a single document with no prior state.
	Summarize(ctx context.Context, text string) (string, error)

	// Refine produces a new summary that incorporates doc while preserving
	// the information in summary. The result replaces the running summary.
	Refine(ctx context.Context, summary, doc string) (string, error)
}

// ErrNoDocuments is returned when the chain is given zero documents:
// without a first document there is no defined initial summary.
var ErrNoDocuments = errors.New("refine: no documents to summarize")

// StepError reports a transform failure at a specific position in the chain.
// Steps after the failing one are never issued.
type StepError struct {
	Index int
	Phase Phase
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("refine: step %d (%s): %v", e.Index, e.Phase, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Step is one completed link of the chain. Index is the position of the
// document consumed; Summary is the running summary after that document
// was folded in.
type Step struct {
	Index   int
	Phase   Phase
	Summary string
}

// state is the per-run iteration state. contents is never mutated after the
// run starts; index is the next unconsumed document position in
// [0, len(contents)]; summary is defined iff index >= 1. The run is terminal
// iff index == len(contents). One state instance belongs to exactly one run.
type state struct {
	contents []string
	index    int
	summary  string
}

func (s *state) phase() Phase {
	switch {
	case s.index == 0:
		return PhaseInitial
	case s.index < len(s.contents):
		return PhaseRefining
	default:
		return PhaseDone
	}
}

// Option customizes a Chain.
type Option func(*Chain)

// WithStepObserver registers a callback invoked after every completed step,
// in step order, from the goroutine executing the run. Hosts use it to
// checkpoint (index, summary) between steps.
func WithStepObserver(fn func(Step)) Option {
	return func(c *Chain) {
		c.onStep = fn
	}
}

// Chain folds documents into a single running summary using a Transform.
// A Chain is stateless between runs and safe to reuse for independent,
// concurrent runs over different document sets.
type Chain struct {
	transform Transform
	onStep    func(Step)
}

// New creates a Chain backed by the given transform.
func New(t Transform, opts ...Option) *Chain {
	c := &Chain{transform: t}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// step consumes exactly one document and replaces the running summary.
func (c *Chain) step(ctx context.Context, st *state) (Step, error) {
	phase := st.phase()

	var (
		next string
		err  error
	)
	switch phase {
	case PhaseInitial:
		next, err = c.transform.Summarize(ctx, st.contents[0])
	case PhaseRefining:
		next, err = c.transform.Refine(ctx, st.summary, st.contents[st.index])
	case PhaseDone:
		return Step{}, errors.New("refine: step called on terminal state")
	}
	if err != nil {
		return Step{}, &StepError{Index: st.index, Phase: phase, Err: err}
	}

	st.summary = next
	st.index++
	return Step{Index: st.index - 1, Phase: phase, Summary: next}, nil
}

// fold runs the state machine to completion. Cancellation is honored between
// steps: once ctx is done no further transform call is issued.
func (c *Chain) fold(ctx context.Context, st *state, emit func(Step) error) (string, error) {
	for st.phase() != PhaseDone {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		step, err := c.step(ctx, st)
		if err != nil {
			return "", err
		}
		if c.onStep != nil {
			c.onStep(step)
		}
		if emit != nil {
			if err := emit(step); err != nil {
				return "", err
			}
		}
	}
	return st.summary, nil
}

// Run folds documents left to right and returns the final summary. Exactly
// len(documents) transform calls are made: one Summarize for the first
// document and one Refine per remaining document, in supply order.
func (c *Chain) Run(ctx context.Context, documents []string) (string, error) {
	return c.Resume(ctx, documents, 0, "")
}

// Resume continues a fold whose first index documents were already combined
// into summary, as recorded by an earlier run's step observer. Resume with
// index 0 and an empty summary is equivalent to Run. The document set must
// be the same one the recorded position came from; verifying that is the
// caller's responsibility.
func (c *Chain) Resume(ctx context.Context, documents []string, index int, summary string) (string, error) {
	if len(documents) == 0 {
		return "", ErrNoDocuments
	}
	if index < 0 || index > len(documents) {
		return "", fmt.Errorf("refine: resume index %d out of range [0, %d]", index, len(documents))
	}
	if index > 0 && summary == "" {
		return "", fmt.Errorf("refine: resume index %d requires a prior summary", index)
	}
	if index == 0 {
		summary = ""
	}

	st := &state{contents: documents, index: index, summary: summary}
	return c.fold(ctx, st, nil)
}

// Stream starts the fold in a goroutine and returns a channel that carries
// every completed step in strict order, one per document, the last of which
// holds the final summary. The channel is closed when the run terminates,
// whether it completed or failed; the returned wait function then reports
// the run's error. Call wait exactly once, after the channel is drained.
func (c *Chain) Stream(ctx context.Context, documents []string) (<-chan Step, func() error) {
	steps := make(chan Step)
	errc := make(chan error, 1)

	go func() {
		defer close(steps)

		if len(documents) == 0 {
			errc <- ErrNoDocuments
			return
		}

		st := &state{contents: documents}
		_, err := c.fold(ctx, st, func(step Step) error {
			select {
			case steps <- step:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		errc <- err
	}()

	return steps, func() error { return <-errc }
}
