// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file is one secret: the filename is the key name and the trimmed
// file contents are the value.
//
// Recognized keys: telegram-bot-token, github-token.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/quotesite/pkg/types"
)

// Key names of recognized secret files.
const (
	KeyTelegramBotToken = "telegram-bot-token"
	KeyGitHubToken      = "github-token"
)

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is an empty map. Unreadable files are
// reported on warn and skipped.
func Load(dir string, warn io.Writer) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// Apply fills empty credential fields of cfg from secrets. Values already
// set by the config file, environment or flags win.
func Apply(cfg *types.Config, secrets map[string]string) {
	if cfg.Telegram.Token == "" {
		cfg.Telegram.Token = secrets[KeyTelegramBotToken]
	}
	if cfg.Pages.Token == "" {
		cfg.Pages.Token = secrets[KeyGitHubToken]
	}
}
