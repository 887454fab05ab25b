package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/quotesite/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Publish today's quote, vocabulary quiz and poem",
	Long: `Run performs the daily publication: it recovers and pulls the working tree,
selects a quote that has never been published, builds vocabulary lessons and
quizzes for its focus words, adds a poem with an optional recitation, writes
the post and the index, posts to the channel when enabled, and commits and
pushes the result.

An exhausted quote pool is reported and is not an error.`,
	RunE: runDaily,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaily(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	rep, err := a.runner.Run(ctx)
	printReport(rep)
	return err
}

func printReport(rep pipeline.Report) {
	fmt.Printf("Run %s (%s): %s\n", rep.RunID, rep.Command, rep.Status)
	if rep.Quote != nil {
		fmt.Printf("  quote:  %s\n", rep.Quote.AuthorName())
	}
	if rep.Poem != nil {
		fmt.Printf("  poem:   %s\n", rep.Poem.Title)
	}
	for _, d := range rep.Documents {
		fmt.Printf("  %-6s %s\n", d.Kind, d.Path)
	}
	if rep.Index != nil {
		fmt.Printf("  index  %s\n", rep.Index.Path)
	}
}
