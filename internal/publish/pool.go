// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/quotesite/pkg/types"
)

// LoadPool reads the newline-delimited quote pool, skipping blank lines.
func LoadPool(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening quote pool: %w", err)
	}
	defer f.Close()

	var pool []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			pool = append(pool, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading quote pool: %w", err)
	}
	return pool, nil
}

// LoadPoems reads the poem bank, a JSON array of {title, author, lines}.
// A missing bank is empty.
func LoadPoems(path string) ([]types.PoemRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading poem bank: %w", err)
	}
	var poems []types.PoemRecord
	if err := json.Unmarshal(data, &poems); err != nil {
		return nil, fmt.Errorf("parsing poem bank: %w", err)
	}
	for i := range poems {
		if strings.TrimSpace(poems[i].Title) == "" {
			poems[i].Title = "Untitled"
		}
	}
	return poems, nil
}
