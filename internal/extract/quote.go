// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract parses classified message text into quote and poem
// records. Structural mismatches are reported as a false ok value, never as
// errors: heterogeneous source formatting makes a miss the common case.
package extract

import (
	"regexp"
	"strings"

	"github.com/pdiddy/quotesite/pkg/types"
)

// quotePattern matches the first quoted span followed by a dash-class
// separator and an attribution running to the end of the line. The body is
// lazy so the first closing quote that precedes a dash wins.
var quotePattern = regexp.MustCompile(`["“](.+?)["”]\s*[—–-][ \t]*([^\n]*)`)

// boldPattern matches **bold** spans.
var boldPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)

// linkPattern matches an embedded [label](url) link.
var linkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)

// ExtractQuote finds the quote and attribution in normalized message text.
// ok is false when the text has no quoted-attribution structure or the
// quoted body is empty.
func ExtractQuote(text string) (rec *types.QuoteRecord, ok bool) {
	m := quotePattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	body := strings.TrimSpace(m[1])
	if body == "" {
		return nil, false
	}
	author := cleanAuthor(m[2])
	return &types.QuoteRecord{
		RawQuote:   body,
		Author:     author,
		FocusWords: vocabularySpans(text, author),
	}, true
}

// headings are bold post titles that never name a vocabulary word.
var headings = []string{"quote of the day", "daily quote", "poem of the day", "vocabulary focus", "word of the day"}

// vocabularySpans returns the bold spans of text that can be vocabulary:
// labels ending in a colon, post headings and the author's own name are
// dropped.
func vocabularySpans(text, author string) []string {
	name := author
	if m := linkPattern.FindStringSubmatch(author); m != nil {
		name = strings.Trim(m[1], "*_ \t")
	}
	var words []string
	for _, w := range FocusWords(text) {
		if strings.HasSuffix(w, ":") || isHeading(w) || strings.EqualFold(w, name) {
			continue
		}
		words = append(words, w)
	}
	return words
}

func isHeading(w string) bool {
	w = strings.ToLower(w)
	for _, h := range headings {
		if strings.Contains(w, h) {
			return true
		}
	}
	return false
}

// FocusWords returns the **bold** spans of text in order of appearance,
// duplicates included and case preserved. Records carry a filtered subset.
func FocusWords(text string) []string {
	matches := boldPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	words := make([]string, 0, len(matches))
	for _, m := range matches {
		if w := strings.TrimSpace(m[1]); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// ParsePoolEntry builds a record from one line of the quote pool. Lines with
// a quoted attribution are parsed like messages; otherwise the text after
// the last em dash is the author. Lines with no dash keep the whole line as
// the quote.
func ParsePoolEntry(line string) (types.QuoteRecord, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return types.QuoteRecord{}, false
	}
	if rec, ok := ExtractQuote(line); ok {
		return *rec, true
	}

	quote, author := line, ""
	if i := strings.LastIndex(line, "—"); i >= 0 {
		quote = strings.TrimSpace(line[:i])
		author = line[i+len("—"):]
	}
	quote = strings.Trim(quote, "\"“” ")
	if quote == "" {
		return types.QuoteRecord{}, false
	}
	author = cleanAuthor(author)
	return types.QuoteRecord{
		RawQuote:   quote,
		Author:     author,
		FocusWords: vocabularySpans(quote, author),
	}, true
}

// cleanAuthor trims the attribution, keeps an embedded link as the whole
// author and falls back to UnknownAuthor.
func cleanAuthor(s string) string {
	s = strings.TrimSpace(s)
	if m := linkPattern.FindStringSubmatch(s); m != nil {
		return "[" + strings.TrimSpace(m[1]) + "](" + strings.TrimSpace(m[2]) + ")"
	}
	s = strings.Trim(s, "*_ \t")
	if s == "" {
		return types.UnknownAuthor
	}
	return s
}
