// Package orchestrator runs several independent refinement chains
// concurrently, one per input document set. Steps inside a chain stay
// strictly sequential; only whole chains run in parallel, and a failed
// chain never affects the others.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/valpere/perekaz/internal/refine"
)

type Config struct {
	Timeout time.Duration // per chain; 0 disables the deadline
}

// Run is one independent document set to fold.
type Run struct {
	ID        string
	Documents []string
}

// RunResult is the outcome of one chain.
type RunResult struct {
	ID      string
	Summary string
	Steps   int
	Latency time.Duration
	Err     error
}

type Result struct {
	Results   []RunResult
	Succeeded int
	Failed    int
}

type Orchestrator struct {
	transform refine.Transform
	config    Config
}

func New(transform refine.Transform, config Config) *Orchestrator {
	return &Orchestrator{
		transform: transform,
		config:    config,
	}
}

// Execute folds every run concurrently and returns the outcomes in input
// order. The shared transform may be called from several goroutines at once
// (one call in flight per chain); backends must tolerate that.
func (o *Orchestrator) Execute(ctx context.Context, runs []Run) *Result {
	result := &Result{
		Results: make([]RunResult, len(runs)),
	}

	var wg sync.WaitGroup
	for i, run := range runs {
		wg.Add(1)
		go func(index int, run Run) {
			defer wg.Done()

			runCtx := ctx
			cancel := context.CancelFunc(func() {})
			if o.config.Timeout > 0 {
				runCtx, cancel = context.WithTimeout(ctx, o.config.Timeout)
			}
			defer cancel()

			var steps int
			chain := refine.New(o.transform, refine.WithStepObserver(func(refine.Step) {
				steps++
			}))

			start := time.Now()
			summary, err := chain.Run(runCtx, run.Documents)
			result.Results[index] = RunResult{
				ID:      run.ID,
				Summary: summary,
				Steps:   steps,
				Latency: time.Since(start),
				Err:     err,
			}
		}(i, run)
	}
	wg.Wait()

	for _, r := range result.Results {
		if r.Err != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}

	return result
}
