package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/quotesite/internal/archive"
	"github.com/pdiddy/quotesite/internal/channel"
)

var importCmd = &cobra.Command{
	Use:   "import [result.json]",
	Short: "Republish a channel archive as historical documents",
	Long: `Import reads a Telegram Desktop export (result.json) and publishes every
quote, poem and media message as a historical document. With --updates the
recent channel posts are read from the Bot API instead. Messages that were
imported before are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().Bool("updates", false, "read recent channel posts from the Bot API")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	updates, _ := cmd.Flags().GetBool("updates")
	if updates == (len(args) == 1) {
		return fmt.Errorf("provide either an export file or --updates")
	}

	var (
		src        channel.Source
		channelURL = cfg.Site.ChannelURL
	)
	if updates {
		bot, err := channel.NewBot(cfg.Telegram, channel.DefaultBotFactory)
		if err != nil {
			return fmt.Errorf("connecting to telegram: %w", err)
		}
		src = channel.NewUpdatesSource(bot, cfg.Telegram.ChannelID)
	} else {
		exp, err := archive.Load(args[0])
		if err != nil {
			return err
		}
		if channelURL == "" {
			channelURL = exp.ChannelURL()
		}
		fmt.Fprintf(os.Stderr, "Archive %q: %d messages\n", exp.Name, len(exp.Messages))
		src = archive.NewExportSource(args[0])
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	rep, err := a.runner.Import(ctx, src, channelURL)
	printReport(rep)
	return err
}
