package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/quotesite/internal/publish"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write starter templates into the site repository",
	Long: `Init writes the starter post and index templates and a .gitignore for the
run state into the repository directory. Existing files are left untouched.

Commit the created files before the first run: every run resets the working
tree and removes untracked files, except for the state directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := publish.InitSite(cfg.Git.RepoDir)
		for _, p := range created {
			fmt.Printf("Created %s\n", p)
		}
		if err != nil {
			return err
		}
		if len(created) == 0 {
			fmt.Println("Nothing to do: all starter files exist")
			return nil
		}
		if !cfg.Git.Disabled {
			fmt.Println("Commit these files before the first run; untracked files are removed when a run starts")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
