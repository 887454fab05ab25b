package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/quotesite/internal/runlock"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Regenerate the index page from the posts directory",
	Long: `Index lists the posts directory, newest first by the date in each filename,
and writes the index page from the index template. Nothing is committed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lock, err := runlock.Acquire(cfg.RepoPath(cfg.Data.StateDir))
		if err != nil {
			return err
		}
		defer lock.Release()

		pub, err := newPublisher()
		if err != nil {
			return err
		}
		entries, err := pub.ListPosts()
		if err != nil {
			return err
		}
		doc, err := pub.RegenerateIndex()
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d posts)\n", doc.Path, len(entries))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
