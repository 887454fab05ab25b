// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vocab

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/pdiddy/quotesite/internal/logger"
	"github.com/pdiddy/quotesite/pkg/types"
)

const distractorCount = types.QuizOptionCount - 1

// ErrInsufficientData reports a store with fewer than four distinct
// definitions for a quiz.
var ErrInsufficientData = errors.New("insufficient vocabulary data")

// InsufficientDataError carries the counts behind ErrInsufficientData.
type InsufficientDataError struct {
	Word        string
	Distractors int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("quiz for %q: need %d distinct distractor definitions, store has %d",
		e.Word, distractorCount, e.Distractors)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// GenerateQuiz builds a four-option quiz for word. Three distractors are
// drawn uniformly without replacement from the store's other distinct
// definitions, the correct definition is appended, and the options are
// shuffled. A nil rng uses the process-wide source.
func GenerateQuiz(word, correct string, store *Store, rng *rand.Rand) (types.QuizRecord, error) {
	var pool []string
	for _, d := range store.Definitions() {
		if d != correct {
			pool = append(pool, d)
		}
	}
	if len(pool) < distractorCount {
		return types.QuizRecord{}, &InsufficientDataError{Word: word, Distractors: len(pool)}
	}

	perm := permutation(rng, len(pool))
	var options [types.QuizOptionCount]string
	for i := 0; i < distractorCount; i++ {
		options[i] = pool[perm[i]]
	}
	options[distractorCount] = correct

	shuffle(rng, len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	q := types.QuizRecord{Word: word, CorrectDefinition: correct, Options: options}
	for i, o := range options {
		if o == correct {
			q.CorrectIndex = i
			break
		}
	}
	return q, nil
}

func permutation(rng *rand.Rand, n int) []int {
	if rng == nil {
		return rand.Perm(n)
	}
	return rng.Perm(n)
}

func shuffle(rng *rand.Rand, n int, swap func(i, j int)) {
	if rng == nil {
		rand.Shuffle(n, swap)
		return
	}
	rng.Shuffle(n, swap)
}

// Lessons resolves each focus word and builds its vocabulary section.
// Words missing from the store are skipped; a store too small for a quiz
// yields a section without one.
func Lessons(words []string, store *Store, rng *rand.Rand, log *logger.Logger) []types.VocabularySection {
	var sections []types.VocabularySection
	for _, w := range words {
		entry, ok := store.Resolve(w)
		if !ok {
			log.Debug("no vocabulary entry", "word", w)
			continue
		}
		section := types.VocabularySection{Word: w, Entry: *entry}
		quiz, err := GenerateQuiz(w, entry.Definition, store, rng)
		switch {
		case err == nil:
			section.Quiz = &quiz
		case errors.Is(err, ErrInsufficientData):
			log.Warn("quiz omitted", "word", w, "error", err)
		default:
			log.Error("quiz generation failed", "word", w, "error", err)
		}
		sections = append(sections, section)
	}
	return sections
}
