package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/quotesite/internal/schedule"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daily publication on a schedule",
	Long: `Serve stays in the foreground and runs the daily publication on the
configured cron expression (six fields, seconds first; default "0 0 8 * * *").
It stops on SIGINT or SIGTERM after any in-flight run finishes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if expr, _ := cmd.Flags().GetString("cron"); expr != "" {
			cfg.Schedule.Cron = expr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, os.Stdout)
		if err != nil {
			return err
		}
		defer a.Close()

		sched, err := schedule.New(cfg.Schedule.Cron, func(ctx context.Context) error {
			rep, err := a.runner.Run(ctx)
			printReport(rep)
			return err
		}, log)
		if err != nil {
			return err
		}
		return sched.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("cron", "", "cron expression overriding schedule.cron")
	rootCmd.AddCommand(serveCmd)
}
