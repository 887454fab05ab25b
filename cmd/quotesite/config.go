package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/quotesite/internal/secrets"
	"github.com/pdiddy/quotesite/pkg/types"
)

// loadConfig decodes viper settings into a Config, fills credentials from
// secret files and applies defaults.
func loadConfig(s map[string]string) (types.Config, error) {
	var c types.Config
	if err := viper.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding configuration: %w", err)
	}
	secrets.Apply(&c, s)
	return c.WithDefaults(), nil
}

const redacted = "[REDACTED]"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Config prints the configuration after defaults, environment variables and
secret files have been applied. Credentials are redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := cfg
		if shown.Telegram.Token != "" {
			shown.Telegram.Token = redacted
		}
		if shown.Pages.Token != "" {
			shown.Pages.Token = redacted
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(shown); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "configuration problems:\n%v\n", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
