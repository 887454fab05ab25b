// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLedgerMissingFile(t *testing.T) {
	l, err := LoadLedger(filepath.Join(t.TempDir(), "used.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Contains("anything"))
}

func TestLoadLedgerCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "used.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadLedger(path)
	var lerr *LedgerIOError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "parse", lerr.Op)
}

func TestLedgerSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "used.json")
	l, err := LoadLedger(path)
	require.NoError(t, err)

	l.Append("first")
	l.Append("second")
	l.Append("first")
	require.NoError(t, l.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []string{"first", "second"}, got)

	reloaded, err := LoadLedger(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())
	assert.True(t, reloaded.Contains("second"))

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files must not survive a save")
}

func TestEmptyLedgerSavesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "used.json")
	l, err := LoadLedger(path)
	require.NoError(t, err)
	require.NoError(t, l.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestSelectQuoteSingleRemainingCandidate(t *testing.T) {
	pool := []string{"one", "two", "three", "four", "five"}
	l, err := LoadLedger(filepath.Join(t.TempDir(), "used.json"))
	require.NoError(t, err)
	for _, q := range []string{"one", "two", "four", "five"} {
		l.Append(q)
	}

	for i := 0; i < 10; i++ {
		got, err := SelectQuote(pool, l, rand.New(rand.NewPCG(uint64(i), 7)))
		require.NoError(t, err)
		assert.Equal(t, "three", got)
	}
	got, err := SelectQuote(pool, l, nil)
	require.NoError(t, err)
	assert.Equal(t, "three", got)
}

func TestSelectQuoteExhausted(t *testing.T) {
	l, err := LoadLedger(filepath.Join(t.TempDir(), "used.json"))
	require.NoError(t, err)
	l.Append("only")

	_, err = SelectQuote([]string{"only"}, l, nil)
	assert.ErrorIs(t, err, ErrNoContent)

	_, err = SelectQuote(nil, l, nil)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestSelectAndRecordNeverRepeats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "used.json")
	pool := []string{"a", "b", "c", "d"}
	rng := rand.New(rand.NewPCG(1, 2))
	seen := make(map[string]bool)

	for range pool {
		// Reload each time to model separate runs.
		l, err := LoadLedger(path)
		require.NoError(t, err)
		q, err := SelectQuote(pool, l, rng)
		require.NoError(t, err)
		l.Append(q)
		require.NoError(t, l.Save())
		assert.False(t, seen[q], "quote %q selected twice", q)
		seen[q] = true
	}

	l, err := LoadLedger(path)
	require.NoError(t, err)
	_, err = SelectQuote(pool, l, rng)
	assert.ErrorIs(t, err, ErrNoContent)
	assert.Equal(t, len(pool), l.Len())
}

func TestLoadPool(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.txt")
	require.NoError(t, os.WriteFile(path, []byte("\"A\" — X\n\n  \n\"B\" — Y\n"), 0o644))

	pool, err := LoadPool(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"\"A\" — X", "\"B\" — Y"}, pool)
}

func TestLoadPoems(t *testing.T) {
	dir := t.TempDir()
	poems, err := LoadPoems(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, poems)

	path := filepath.Join(dir, "poems.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title":"","author":"A","lines":["x"]},{"title":"Ozymandias","author":"Percy Bysshe Shelley","lines":["I met a traveller"]}]`), 0o644))
	poems, err = LoadPoems(path)
	require.NoError(t, err)
	require.Len(t, poems, 2)
	assert.Equal(t, "Untitled", poems[0].Title)
	assert.Equal(t, "Ozymandias", poems[1].Title)
}
