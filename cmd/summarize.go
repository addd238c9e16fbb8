/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/valpere/perekaz/internal"
	"github.com/valpere/perekaz/internal/detector"
	"github.com/valpere/perekaz/internal/orchestrator"
	"github.com/valpere/perekaz/internal/refine"
	"github.com/valpere/perekaz/internal/store"
	"github.com/valpere/perekaz/internal/summarizer"
	"github.com/valpere/perekaz/internal/validator"
)

var (
	summarizeService   string
	summarizeModel     string
	summarizeBaseURL   string
	summarizeAPIKey    string
	summarizeLang      string
	summarizeMaxWords  int
	summarizeMaxChunk  int
	summarizeSeparator string
	summarizeTimeout   time.Duration
	summarizeDB        string
	summarizeNoCache   bool
	summarizeCheckpnt  bool
	summarizeResume    string
	summarizeOutput    string
	summarizeStream    bool
	summarizeEach      bool
	summarizeFocus     []string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [files...]",
	Short: "Fold documents into one summary, one refinement step at a time",
	Long: `Summarize folds an ordered set of documents into a single summary.
The first document seeds the summary; every later document is folded into it
with a refine call, so the final text covers the whole set.

Documents are read from the given files, directories (.txt/.md in name
order), or stdin ("-"). Markdown is converted to plain text first.

Examples:
  perekaz summarize notes/*.md
  cat report.txt | perekaz summarize - --stream
  perekaz summarize docs/ --service openrouter --lang Ukrainian
  perekaz summarize docs/ --checkpoint            # record resume points
  perekaz summarize docs/ --resume run_1755945600 # continue after a failure
  perekaz summarize a.txt b.txt --each            # one summary per input`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringVarP(&summarizeService, "service", "s", "", "Backend: ollama, openrouter, gemini (default ollama)")
	summarizeCmd.Flags().StringVarP(&summarizeModel, "model", "m", "", "Model name (backend default if empty)")
	summarizeCmd.Flags().StringVar(&summarizeBaseURL, "base-url", "", "Backend base URL override")
	summarizeCmd.Flags().StringVar(&summarizeAPIKey, "api-key", "", "API key (or PEREKAZ_API_KEY)")
	summarizeCmd.Flags().StringVarP(&summarizeLang, "lang", "l", "auto", "Summary language name, or 'auto' to match the documents")
	summarizeCmd.Flags().IntVar(&summarizeMaxWords, "max-words", 0, "Soft word budget for the summary (0 = none)")
	summarizeCmd.Flags().IntVar(&summarizeMaxChunk, "max-chunk", 0, "Split documents longer than this many characters (0 = off)")
	summarizeCmd.Flags().StringVar(&summarizeSeparator, "separator", "", "Split each input into documents on this separator")
	summarizeCmd.Flags().DurationVar(&summarizeTimeout, "timeout", 2*time.Minute, "Timeout per model call")
	summarizeCmd.Flags().StringVar(&summarizeDB, "db", "", "SQLite database path (default ./data/perekaz.db)")
	summarizeCmd.Flags().BoolVar(&summarizeNoCache, "no-cache", false, "Skip the summary memory for this run")
	summarizeCmd.Flags().BoolVar(&summarizeCheckpnt, "checkpoint", false, "Record resume points after every step")
	summarizeCmd.Flags().StringVar(&summarizeResume, "resume", "", "Resume an interrupted run by checkpoint ID")
	summarizeCmd.Flags().StringVarP(&summarizeOutput, "output", "o", "", "Output file (default stdout)")
	summarizeCmd.Flags().BoolVar(&summarizeStream, "stream", false, "Print every intermediate summary to stderr")
	summarizeCmd.Flags().BoolVar(&summarizeEach, "each", false, "Summarize every input independently, in parallel")
	summarizeCmd.Flags().StringSliceVar(&summarizeFocus, "focus", nil, "Key terms the summary must preserve (repeatable)")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serviceName := setting(summarizeService, "service")
	if serviceName == "" {
		serviceName = "ollama"
	}

	docs, err := loadDocuments(args, summarizeSeparator, summarizeMaxChunk)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents to summarize")
	}

	// Language: a name goes into the prompt; the ISO code (known only when
	// auto-detected) additionally gates the output language check.
	langName := summarizeLang
	langISO := ""
	if langName == "auto" || langName == "" {
		det := detector.New()
		name, ok := det.DetectName(docs[0])
		if !ok {
			return fmt.Errorf("could not detect document language; pass --lang explicitly")
		}
		langName = name
		langISO, _ = det.DetectISO(docs[0])
	}

	dbPath := setting(summarizeDB, "db")
	if dbPath == "" {
		dbPath = "./data/perekaz.db"
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	hash := store.DocHash(docs)

	if !summarizeNoCache && summarizeResume == "" && !summarizeEach {
		if cached, ok, err := db.GetCachedSummary(ctx, hash, langName, serviceName); err != nil {
			return err
		} else if ok {
			fmt.Fprintln(os.Stderr, "(from summary memory)")
			return writeOutput(summarizeOutput, cached)
		}
	}

	focus := append([]string{}, summarizeFocus...)
	stored, err := db.ListFocusTerms(ctx)
	if err != nil {
		return err
	}
	for _, ft := range stored {
		focus = append(focus, ft.Term)
	}

	svc, err := buildService(serviceName,
		setting(summarizeAPIKey, "api_key"),
		setting(summarizeBaseURL, "base_url"),
		setting(summarizeModel, "model"))
	if err != nil {
		return err
	}

	cfg := summarizer.ServiceConfig{
		Timeout:  summarizeTimeout,
		Language: langName,
		MaxWords: summarizeMaxWords,
	}
	transform := summarizer.NewTransform(svc, cfg, focus)

	if summarizeEach {
		return runEach(ctx, db, transform, args, langName, serviceName)
	}

	reqID := uuid.New().String()
	if err := db.SaveRequest(ctx, internal.SummaryRequest{
		ID:            reqID,
		DocHash:       hash,
		DocumentCount: len(docs),
		Language:      langName,
		Timestamp:     time.Now(),
	}); err != nil {
		return err
	}

	checkpointID := ""
	startIndex := 0
	startSummary := ""
	if summarizeResume != "" {
		cp, err := db.GetCheckpoint(ctx, summarizeResume)
		if err != nil {
			return err
		}
		if cp.Status == "completed" {
			return fmt.Errorf("checkpoint %s already completed", cp.ID)
		}
		if cp.DocHash != hash || cp.DocCount != len(docs) {
			return fmt.Errorf("checkpoint %s was recorded for a different document set", cp.ID)
		}
		checkpointID = cp.ID
		startIndex = cp.NextIndex
		startSummary = cp.Summary
		fmt.Fprintf(os.Stderr, "resuming %s from step %d/%d\n", cp.ID, startIndex+1, len(docs))
	} else if summarizeCheckpnt {
		checkpointID, err = db.CreateCheckpoint(ctx, hash, len(docs))
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "checkpoint %s\n", checkpointID)
	}

	chain := refine.New(transform, refine.WithStepObserver(func(step refine.Step) {
		fmt.Fprintf(os.Stderr, "step %d/%d (%s) done\n", step.Index+1, len(docs), step.Phase)
		if summarizeStream {
			fmt.Fprintf(os.Stderr, "%s\n\n", step.Summary)
		}
		if err := db.SaveStep(ctx, reqID, step.Index, step.Phase.String(), step.Summary); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record step %d: %v\n", step.Index, err)
		}
		if checkpointID != "" {
			if err := db.UpdateCheckpoint(ctx, checkpointID, step.Index+1, step.Summary); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to update checkpoint: %v\n", err)
			}
		}
	}))

	var final string
	if summarizeResume != "" {
		final, err = chain.Resume(ctx, docs, startIndex, startSummary)
	} else {
		steps, wait := chain.Stream(ctx, docs)
		for step := range steps {
			final = step.Summary
		}
		err = wait()
	}
	if err != nil {
		var stepErr *refine.StepError
		if errors.As(err, &stepErr) && checkpointID != "" {
			return fmt.Errorf("%w (resume with --resume %s)", err, checkpointID)
		}
		return err
	}

	if checkpointID != "" {
		if err := db.CompleteCheckpoint(ctx, checkpointID); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to complete checkpoint: %v\n", err)
		}
	}

	if ok, verr := validator.New().IsValid(final, langISO); !ok {
		fmt.Fprintf(os.Stderr, "Warning: summary failed validation: %v\n", verr)
	}

	if !summarizeNoCache {
		if err := db.SaveToMemory(ctx, hash, len(docs), langName, serviceName, final); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save to summary memory: %v\n", err)
		}
	}

	return writeOutput(summarizeOutput, final)
}

// runEach folds every input path as its own chain, all chains in parallel.
func runEach(ctx context.Context, db *store.Store, transform refine.Transform, paths []string, langName, serviceName string) error {
	runs := make([]orchestrator.Run, 0, len(paths))
	for _, path := range paths {
		docs, err := loadDocuments([]string{path}, summarizeSeparator, summarizeMaxChunk)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return fmt.Errorf("no documents in %s", path)
		}
		runs = append(runs, orchestrator.Run{ID: path, Documents: docs})
	}

	orch := orchestrator.New(transform, orchestrator.Config{})
	result := orch.Execute(ctx, runs)

	for i, r := range result.Results {
		fmt.Printf("=== %s ===\n", r.ID)
		if r.Err != nil {
			fmt.Printf("Error: %v\n\n", r.Err)
			continue
		}
		fmt.Printf("%s\n\n", r.Summary)
		fmt.Fprintf(os.Stderr, "%s: %d steps in %v\n", r.ID, r.Steps, r.Latency.Round(time.Millisecond))

		if !summarizeNoCache {
			hash := store.DocHash(runs[i].Documents)
			if err := db.SaveToMemory(ctx, hash, len(runs[i].Documents), langName, serviceName, r.Summary); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save to summary memory: %v\n", err)
			}
		}
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", result.Failed, len(runs))
	}
	return nil
}
