// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"regexp"
	"strings"
	"time"
)

// UnknownAuthor is the author recorded when no attribution can be parsed.
const UnknownAuthor = "Unknown"

// ContentKind is the result of classifying a message.
type ContentKind int

const (
	Unclassified ContentKind = iota
	ContentQuote
	ContentPoem
	ContentMedia
)

func (k ContentKind) String() string {
	switch k {
	case ContentQuote:
		return "quote"
	case ContentPoem:
		return "poem"
	case ContentMedia:
		return "media"
	default:
		return "unclassified"
	}
}

// markdownLinkPattern matches an embedded [label](url) link.
var markdownLinkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)

// SplitLink splits s into a display name and URL when it contains an
// embedded [label](url) link. Otherwise it returns s unchanged and an
// empty URL.
func SplitLink(s string) (name, url string) {
	m := markdownLinkPattern.FindStringSubmatch(s)
	if m == nil {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

// QuoteRecord is a quote extracted from a message or selected from the pool.
type QuoteRecord struct {
	// RawQuote is the quote text, possibly containing **bold** markers.
	RawQuote string `json:"quote" yaml:"quote"`

	// Author is the attribution. It may itself be a [name](url) link.
	Author string `json:"author" yaml:"author"`

	// FocusWords are the bold-marked words in order of appearance.
	FocusWords []string `json:"focus_words,omitempty" yaml:"focus_words,omitempty"`

	Date time.Time `json:"date" yaml:"date"`
}

// AuthorName returns the author without any embedded link markup.
func (q QuoteRecord) AuthorName() string {
	name, _ := SplitLink(q.Author)
	if name == "" {
		return UnknownAuthor
	}
	return name
}

// AuthorURL returns the URL of an embedded author link, if any.
func (q QuoteRecord) AuthorURL() string {
	_, url := SplitLink(q.Author)
	return url
}

// HasKnownAuthor reports whether an attribution was found.
func (q QuoteRecord) HasKnownAuthor() bool {
	return q.AuthorName() != UnknownAuthor
}

// VocabularyEntry is one word of the vocabulary store.
type VocabularyEntry struct {
	Definition string `json:"definition" yaml:"definition"`
}

// QuizOptionCount is the number of options in every quiz.
const QuizOptionCount = 4

var quizLetters = [QuizOptionCount]string{"A", "B", "C", "D"}

// QuizRecord is a multiple-choice question about a focus word.
type QuizRecord struct {
	Word              string                  `json:"word" yaml:"word"`
	CorrectDefinition string                  `json:"correct_definition" yaml:"correct_definition"`
	Options           [QuizOptionCount]string `json:"options" yaml:"options"`
	CorrectIndex      int                     `json:"correct_index" yaml:"correct_index"`
}

// Letter returns the option letter (A-D) for index i.
func Letter(i int) string {
	if i < 0 || i >= QuizOptionCount {
		return "?"
	}
	return quizLetters[i]
}

// Answer returns the letter and text of the correct option, e.g. "B) swift".
func (q QuizRecord) Answer() string {
	return Letter(q.CorrectIndex) + ") " + q.Options[q.CorrectIndex]
}

// VocabularySection is the lesson built for one resolved focus word. Quiz is
// nil when the store is too small to build one.
type VocabularySection struct {
	Word  string          `json:"word" yaml:"word"`
	Entry VocabularyEntry `json:"entry" yaml:"entry"`
	Quiz  *QuizRecord     `json:"quiz,omitempty" yaml:"quiz,omitempty"`
}

// PoemRecord is a poem extracted from a message or drawn from the poem bank.
type PoemRecord struct {
	Title  string   `json:"title" yaml:"title"`
	Author string   `json:"author" yaml:"author"`
	Lines  []string `json:"lines" yaml:"lines"`

	// AudioRef is the site-relative path of the recitation, when generated.
	AudioRef string `json:"audio_ref,omitempty" yaml:"audio_ref,omitempty"`
}

// AuthorName returns the poem author without link markup.
func (p PoemRecord) AuthorName() string {
	name, _ := SplitLink(p.Author)
	return name
}

// AuthorURL returns the URL of an embedded author link, if any.
func (p PoemRecord) AuthorURL() string {
	_, url := SplitLink(p.Author)
	return url
}

// DocumentKind identifies the kind of a published document.
type DocumentKind string

const (
	DocumentPost  DocumentKind = "post"
	DocumentQuote DocumentKind = "quote"
	DocumentPoem  DocumentKind = "poem"
	DocumentMedia DocumentKind = "media"
	DocumentIndex DocumentKind = "index"
)

// PublishedDocument describes a rendered file written to the site.
type PublishedDocument struct {
	Kind     DocumentKind `json:"kind" yaml:"kind"`
	Path     string       `json:"path" yaml:"path"`
	Filename string       `json:"filename" yaml:"filename"`
	Date     time.Time    `json:"date" yaml:"date"`
}
