// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the quotesite CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/quotesite/internal/logger"
	"github.com/pdiddy/quotesite/internal/secrets"
	"github.com/pdiddy/quotesite/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the effective configuration, built in PersistentPreRunE.
	cfg types.Config

	// log is the structured logger for the invocation.
	log = logger.Nop()
)

// rootCmd is the base command for the quotesite CLI.
var rootCmd = &cobra.Command{
	Use:   "quotesite",
	Short: "Publish quotes, vocabulary quizzes and poems as a static site",
	Long: `quotesite turns channel posts into a static content site kept in a git
working tree. The daily run publishes an unused quote with vocabulary quizzes
and a poem, regenerates the index, and pushes the result. Archive imports
republish a channel export as historical documents.

Configuration is read from quotesite.yaml (current directory or
~/.config/quotesite/) and QUOTESITE_* environment variables. Credentials are
read from files in .secrets/.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, os.Stderr)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}

		c, err := loadConfig(s)
		if err != nil {
			return err
		}
		cfg = c

		l, err := logger.New(cfg.LogMode)
		if err != nil {
			return err
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./quotesite.yaml or ~/.config/quotesite/quotesite.yaml)")
	pf.String("secrets-dir", ".secrets/", "directory of secret files")
	pf.String("repo", "", "site repository working tree (default \".\")")
	pf.String("format", "", "output format: html or markdown (default html)")
	pf.String("log-mode", "", "log mode: development or production")
	pf.Bool("no-git", false, "publish locally without git synchronization")

	cobra.CheckErr(bindFlags(viper.GetViper(), pf))
}

// flagKeys maps persistent flags to the settings they override.
var flagKeys = [][2]string{
	{"repo", "git.repo_dir"},
	{"format", "site.format"},
	{"log-mode", "log_mode"},
	{"no-git", "git.disabled"},
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var errs []error
	for _, fk := range flagKeys {
		if err := v.BindPFlag(fk[1], fs.Lookup(fk[0])); err != nil {
			errs = append(errs, fmt.Errorf("binding --%s: %w", fk[0], err))
		}
	}
	return errors.Join(errs...)
}

func bindEnv(v *viper.Viper) error {
	for _, k := range envKeys {
		if err := v.BindEnv(k); err != nil {
			return fmt.Errorf("binding %s: %w", k, err)
		}
	}
	return nil
}

// envKeys are the settings that may come from QUOTESITE_* variables.
var envKeys = []string{
	"log_mode",
	"git.repo_dir", "git.remote", "git.branch", "git.disabled",
	"site.format", "site.channel_url",
	"telegram.token", "telegram.channel_id", "telegram.post", "telegram.proxy",
	"speech.backend", "speech.command", "speech.image", "speech.lang",
	"pages.repo", "pages.token",
	"schedule.cron",
	"data.state_dir",
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("quotesite")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "quotesite"))
		}
	}

	viper.SetEnvPrefix("QUOTESITE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	cobra.CheckErr(bindEnv(viper.GetViper()))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
