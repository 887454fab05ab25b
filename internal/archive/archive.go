// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive reads Telegram Desktop channel exports (result.json).
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pdiddy/quotesite/pkg/types"
)

// Export is the top level of a result.json file.
type Export struct {
	Name     string             `json:"name"`
	Type     string             `json:"type"`
	ID       int64              `json:"id"`
	Messages []types.RawMessage `json:"messages"`
}

// ExportSource supplies the messages of one export file.
type ExportSource struct {
	path string
}

// NewExportSource returns a source reading path.
func NewExportSource(path string) *ExportSource {
	return &ExportSource{path: path}
}

// Load reads and decodes an export file.
func Load(path string) (*Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	var exp Export
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("parsing export %s: %w", path, err)
	}
	return &exp, nil
}

// Messages returns the exported messages ordered by ID.
func (s *ExportSource) Messages(ctx context.Context) ([]types.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	exp, err := Load(s.path)
	if err != nil {
		return nil, err
	}
	msgs := exp.Messages
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].ID < msgs[j].ID })
	return msgs, nil
}

// ChannelURL returns the public link prefix of a private channel export,
// e.g. "https://t.me/c/1234567890". Exported IDs of channels may carry the
// -100 prefix of the Bot API form, which t.me links omit.
func (e *Export) ChannelURL() string {
	id := e.ID
	if id < 0 {
		id = -id
		if id > 1_000_000_000_000 {
			id -= 1_000_000_000_000
		}
	}
	if id == 0 {
		return ""
	}
	return fmt.Sprintf("https://t.me/c/%d", id)
}

// MessageURL joins a channel URL and message id. An empty base yields "".
func MessageURL(base string, id int64) string {
	if base == "" || id == 0 {
		return ""
	}
	return fmt.Sprintf("%s/%d", base, id)
}
