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
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/perekaz/internal/store"
)

var focusDBPath string

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Manage focus terms",
	Long: `Add, list, and delete focus terms.

Focus terms are injected into every summarization prompt so the summary
keeps mentioning them — useful for proper nouns, product names, and
domain-specific vocabulary that a model might otherwise drop.`,
}

var focusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all focus terms",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(focusDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		terms, err := db.ListFocusTerms(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list focus terms: %w", err)
		}

		if len(terms) == 0 {
			fmt.Println("No focus terms.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTERM\tNOTE")
		for _, t := range terms {
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Term, t.Note)
		}
		return w.Flush()
	},
}

var focusAddNote string

var focusAddCmd = &cobra.Command{
	Use:   "add <term>",
	Short: "Add or update a focus term",
	Long: `Add a focus term that every summary must preserve.

Example:
  perekaz focus add "Kyiv" --note "city, not the region"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(focusDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.AddFocusTerm(context.Background(), args[0], focusAddNote); err != nil {
			return fmt.Errorf("failed to add focus term: %w", err)
		}
		fmt.Printf("Added focus term: %q\n", args[0])
		return nil
	},
}

var focusDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a focus term by ID",
	Long: `Delete a focus term by its ID (shown in "perekaz focus list").

Example:
  perekaz focus delete ft_1234567890123456789`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(focusDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.DeleteFocusTerm(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete focus term: %w", err)
		}
		fmt.Printf("Deleted focus term: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(focusCmd)

	focusCmd.PersistentFlags().StringVar(&focusDBPath, "db", "./data/perekaz.db", "Database path")

	focusCmd.AddCommand(focusListCmd)
	focusCmd.AddCommand(focusAddCmd)
	focusCmd.AddCommand(focusDeleteCmd)
}
