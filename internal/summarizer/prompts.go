package summarizer

import (
	"fmt"
	"strings"
)

// buildInitialPrompt constructs the prompt for the first step of a chain:
// a concise summary of a single document with no prior state.
func buildInitialPrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString("You are an expert summarizer. Write a concise summary of the following document.\n")
	sb.WriteString("Only respond with the summary, nothing else. No explanations, no quotes, no preamble.")

	writeConstraints(&sb, req)

	sb.WriteString("\n\nDOCUMENT:\n")
	sb.WriteString(req.Text)
	return sb.String()
}

// buildRefinePrompt constructs the prompt for a refine step: produce a new
// summary that folds the new document into the existing one. The model's
// output replaces the running summary, so the prompt insists that nothing
// from the existing summary may be silently dropped.
func buildRefinePrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString("You are an expert summarizer maintaining a running summary of a document collection.\n")
	sb.WriteString("You will receive the CURRENT SUMMARY and one NEW DOCUMENT.\n")
	sb.WriteString("Rewrite the summary so that it also covers the new document while preserving every fact already present.\n")
	sb.WriteString("If the new document adds nothing, return the current summary unchanged.\n")
	sb.WriteString("Only respond with the updated summary, nothing else. No explanations, no quotes, no preamble.")

	writeConstraints(&sb, req)

	sb.WriteString("\n\nCURRENT SUMMARY:\n")
	sb.WriteString(req.ExistingSummary)
	sb.WriteString("\n\nNEW DOCUMENT:\n")
	sb.WriteString(req.Text)
	return sb.String()
}

// writeConstraints appends the optional language, length, and focus-term
// requirements shared by both prompts.
func writeConstraints(sb *strings.Builder, req Request) {
	if req.Language != "" {
		fmt.Fprintf(sb, "\nWrite the summary in %s.", req.Language)
	}
	if req.MaxWords > 0 {
		fmt.Fprintf(sb, "\nKeep the summary under %d words.", req.MaxWords)
	}
	if len(req.Focus) > 0 {
		sb.WriteString("\n\nKEY TERMS (always preserve these exactly if they appear):\n")
		for _, term := range req.Focus {
			fmt.Fprintf(sb, "  - %s\n", term)
		}
	}
}
