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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/valpere/perekaz/internal/chunker"
	"github.com/valpere/perekaz/internal/markdown"
	"github.com/valpere/perekaz/internal/summarizer"
)

// buildService constructs the summarization backend from CLI parameters.
func buildService(name, apiKey, baseURL, model string) (summarizer.Service, error) {
	switch name {
	case "ollama":
		return summarizer.NewOllamaService(baseURL, model), nil
	case "openrouter":
		return summarizer.NewOpenRouterService(apiKey, baseURL, model), nil
	case "gemini":
		return summarizer.NewGeminiService(apiKey, baseURL, model), nil
	default:
		return nil, fmt.Errorf("unknown service: %s", name)
	}
}

// setting returns the flag value when set, otherwise the value bound to key
// in the config file or PEREKAZ_* environment.
func setting(flagValue, key string) string {
	if flagValue != "" {
		return flagValue
	}
	return viper.GetString(key)
}

// loadDocuments reads the ordered document set from the given paths: plain
// files, directories (their .txt/.md files in name order), or "-" for stdin.
// Markdown files are converted to plain text. A non-empty separator splits
// each source into multiple documents; maxChunk > 0 additionally splits
// oversized documents into refinement units.
func loadDocuments(paths []string, separator string, maxChunk int) ([]string, error) {
	var docs []string

	for _, path := range paths {
		if path == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return nil, fmt.Errorf("failed to read stdin: %w", err)
			}
			docs = append(docs, splitSource(string(data), separator, maxChunk)...)
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if info.IsDir() {
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
			}
			var names []string
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				switch strings.ToLower(filepath.Ext(e.Name())) {
				case ".txt", ".md", ".markdown":
					names = append(names, e.Name())
				}
			}
			sort.Strings(names)
			for _, name := range names {
				text, err := readDocumentFile(filepath.Join(path, name))
				if err != nil {
					return nil, err
				}
				docs = append(docs, splitSource(text, separator, maxChunk)...)
			}
			continue
		}

		text, err := readDocumentFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, splitSource(text, separator, maxChunk)...)
	}

	// Drop documents that are empty after trimming; a blank document has
	// nothing to fold into the summary.
	var filtered []string
	for _, doc := range docs {
		if strings.TrimSpace(doc) != "" {
			filtered = append(filtered, strings.TrimSpace(doc))
		}
	}
	return filtered, nil
}

func readDocumentFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return markdown.ToPlainText(data), nil
	default:
		return string(data), nil
	}
}

func splitSource(text, separator string, maxChunk int) []string {
	parts := []string{text}
	if separator != "" {
		parts = strings.Split(text, separator)
	}

	var out []string
	for _, part := range parts {
		out = append(out, chunker.Split(part, maxChunk)...)
	}
	return out
}

// writeOutput writes the final summary to outputFile, or stdout when empty.
func writeOutput(outputFile, text string) error {
	if outputFile == "" {
		fmt.Println(text)
		return nil
	}
	if dir := filepath.Dir(outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputFile, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
