// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
)

// ErrNoContent reports that every candidate quote has already been used.
var ErrNoContent = errors.New("no content available")

// LedgerIOError reports a failure reading or writing the used-quotes ledger.
type LedgerIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *LedgerIOError) Error() string {
	return fmt.Sprintf("ledger %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LedgerIOError) Unwrap() error { return e.Err }

// Ledger is the append-only set of quotes already published. It is
// persisted as a JSON array of the raw quote strings.
type Ledger struct {
	path   string
	quotes []string
	set    map[string]bool
}

// LoadLedger reads the ledger at path. A missing file is an empty ledger.
func LoadLedger(path string) (*Ledger, error) {
	l := &Ledger{path: path, set: make(map[string]bool)}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return l, nil
		}
		return nil, &LedgerIOError{Op: "read", Path: path, Err: err}
	}
	var quotes []string
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, &LedgerIOError{Op: "parse", Path: path, Err: err}
	}
	for _, q := range quotes {
		l.add(q)
	}
	return l, nil
}

// Len returns the number of recorded quotes.
func (l *Ledger) Len() int { return len(l.quotes) }

// Contains reports whether quote has been published.
func (l *Ledger) Contains(quote string) bool { return l.set[quote] }

// Filter returns the pool entries not yet in the ledger, in pool order.
func (l *Ledger) Filter(pool []string) []string {
	var out []string
	for _, q := range pool {
		if !l.set[q] {
			out = append(out, q)
		}
	}
	return out
}

// Append records quote. Recording an existing quote is a no-op.
func (l *Ledger) Append(quote string) {
	l.add(quote)
}

func (l *Ledger) add(q string) {
	if l.set[q] {
		return
	}
	l.set[q] = true
	l.quotes = append(l.quotes, q)
}

// Save writes the ledger atomically: the JSON is written to a temporary
// file in the same directory, synced, then renamed over the old file.
func (l *Ledger) Save() error {
	data, err := json.MarshalIndent(l.quotes, "", "  ")
	if err != nil {
		return &LedgerIOError{Op: "encode", Path: l.path, Err: err}
	}
	if l.quotes == nil {
		data = []byte("[]")
	}
	if err := writeFileAtomic(l.path, data); err != nil {
		return &LedgerIOError{Op: "write", Path: l.path, Err: err}
	}
	return nil
}

// SelectQuote picks a candidate from pool that is absent from the ledger.
func SelectQuote(pool []string, l *Ledger, rng *rand.Rand) (string, error) {
	candidates := l.Filter(pool)
	switch len(candidates) {
	case 0:
		return "", ErrNoContent
	case 1:
		return candidates[0], nil
	}
	if rng == nil {
		return candidates[rand.IntN(len(candidates))], nil
	}
	return candidates[rng.IntN(len(candidates))], nil
}

// writeFileAtomic replaces path with data via a temp file and rename.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
