// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// Snapshot is the exported view of recent history.
type Snapshot struct {
	Runs      []Run      `json:"runs" yaml:"runs"`
	Documents []Document `json:"documents" yaml:"documents"`
}

// Snapshot returns up to limit recent runs and documents.
func (s *Store) Snapshot(ctx context.Context, limit int) (Snapshot, error) {
	runs, err := s.RecentRuns(ctx, limit)
	if err != nil {
		return Snapshot{}, err
	}
	docs, err := s.RecentDocuments(ctx, limit)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Runs: runs, Documents: docs}, nil
}

// Write encodes snap to w as "yaml" or "json".
func (snap Snapshot) Write(w io.Writer, format string) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}
