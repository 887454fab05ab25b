package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/quotesite/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs and published documents",
	Long: `History prints the most recent runs and the documents they published from
the history database, as YAML or JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("output")
		if format != "yaml" && format != "json" {
			return fmt.Errorf("unknown output format %q: use yaml or json", format)
		}

		store, err := history.Open(cfg.RepoPath(cfg.Data.StateDir))
		if err != nil {
			return err
		}
		defer store.Close()

		snap, err := store.Snapshot(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return snap.Write(os.Stdout, format)
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs and documents")
	historyCmd.Flags().StringP("output", "o", "yaml", "output format: yaml or json")
	rootCmd.AddCommand(historyCmd)
}
