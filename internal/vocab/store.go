// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vocab loads the vocabulary store, resolves focus words against it
// and builds multiple-choice quizzes from its definitions.
package vocab

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pdiddy/quotesite/pkg/types"
)

// Store maps canonical words to vocabulary entries. It is read-only after
// loading.
type Store struct {
	entries map[string]types.VocabularyEntry
}

// NewStore builds a store from a word → entry map. Keys are canonicalized;
// entries with an empty definition are dropped.
func NewStore(entries map[string]types.VocabularyEntry) *Store {
	s := &Store{entries: make(map[string]types.VocabularyEntry, len(entries))}
	for word, e := range entries {
		key := Canonical(word)
		def := strings.TrimSpace(e.Definition)
		if key == "" || def == "" {
			continue
		}
		s.entries[key] = types.VocabularyEntry{Definition: def}
	}
	return s
}

// LoadStore reads a vocabulary file. JSON is the default; files ending in
// .yaml or .yml are decoded as YAML.
func LoadStore(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary %s: %w", path, err)
	}
	var raw map[string]types.VocabularyEntry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing vocabulary %s: %w", path, err)
	}
	return NewStore(raw), nil
}

// Len returns the number of words in the store.
func (s *Store) Len() int {
	return len(s.entries)
}

// Lookup returns the entry for an exact canonical key.
func (s *Store) Lookup(key string) (types.VocabularyEntry, bool) {
	e, ok := s.entries[key]
	return e, ok
}

// Definitions returns the distinct definitions in the store, sorted so
// that a seeded random source always sees the same order.
func (s *Store) Definitions() []string {
	seen := make(map[string]bool, len(s.entries))
	defs := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		if !seen[e.Definition] {
			seen[e.Definition] = true
			defs = append(defs, e.Definition)
		}
	}
	sort.Strings(defs)
	return defs
}

// Canonical returns the lookup key for word: bold-marker remnants and
// surrounding whitespace removed, lowercased.
func Canonical(word string) string {
	w := strings.TrimSpace(strings.Trim(strings.TrimSpace(word), "*"))
	return cases.Lower(language.Und).String(w)
}

// Resolve finds the entry for word, tolerating simple inflections. The exact
// canonical form is tried first; then each variant from Candidates is looked
// up independently and the first hit wins.
func (s *Store) Resolve(word string) (*types.VocabularyEntry, bool) {
	key := Canonical(word)
	if key == "" {
		return nil, false
	}
	if e, ok := s.entries[key]; ok {
		return &e, true
	}
	for _, c := range Candidates(key) {
		if e, ok := s.entries[c]; ok {
			return &e, true
		}
	}
	return nil, false
}

// Candidates returns the inflection variants tried for a canonical word, in
// order: -s, -es, -ing, -ed, ies→y, ing→e. A stem left with a doubled final
// consonant ("runn", "stopp") is followed by its undoubled form.
func Candidates(key string) []string {
	var out []string
	add := func(c string) {
		if c != "" && c != key {
			out = append(out, c)
		}
	}
	addStem := func(stem string) {
		add(stem)
		if undoubled, ok := undouble(stem); ok {
			add(undoubled)
		}
	}

	if stem, ok := strings.CutSuffix(key, "s"); ok {
		add(stem)
	}
	if stem, ok := strings.CutSuffix(key, "es"); ok {
		add(stem)
	}
	if stem, ok := strings.CutSuffix(key, "ing"); ok {
		addStem(stem)
	}
	if stem, ok := strings.CutSuffix(key, "ed"); ok {
		addStem(stem)
	}
	if stem, ok := strings.CutSuffix(key, "ies"); ok {
		add(stem + "y")
	}
	if stem, ok := strings.CutSuffix(key, "ing"); ok {
		add(stem + "e")
	}
	return out
}

// undouble drops the last letter of a stem ending in a doubled consonant.
func undouble(stem string) (string, bool) {
	n := len(stem)
	if n < 3 {
		return "", false
	}
	last := stem[n-1]
	if last != stem[n-2] || strings.IndexByte("aeiou", last) >= 0 || last < 'a' || last > 'z' {
		return "", false
	}
	return stem[:n-1], true
}
