// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"

	"github.com/pdiddy/quotesite/pkg/types"
)

// poemHeaderPattern matches everything up to and including the first line
// containing the poem marker.
var poemHeaderPattern = regexp.MustCompile(`(?s)^.*?Poem of the Day[^\n]*(\n|$)`)

// byLinePattern matches an attribution line such as "by Robert Frost".
var byLinePattern = regexp.MustCompile(`(?i)^\s*[*_]*by\s+(.+?)[*_]*\s*$`)

// Untitled is the title given to poems with no text after the marker.
const Untitled = "Untitled"

// ExtractPoem splits normalized poem text into title, author and body.
//
// The first non-empty line after the marker is the title. When the next
// line reads "by <author>" it is consumed as the author; otherwise the
// author is Unknown and that line starts the body. The title is never
// repeated in the body.
func ExtractPoem(text string) types.PoemRecord {
	rest := poemHeaderPattern.ReplaceAllString(text, "")

	lines := strings.Split(strings.TrimSpace(rest), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) == 0 {
		return types.PoemRecord{Title: Untitled, Author: types.UnknownAuthor}
	}

	rec := types.PoemRecord{
		Title:  stripEmphasis(lines[0]),
		Author: types.UnknownAuthor,
	}
	if rec.Title == "" {
		rec.Title = Untitled
	}
	lines = lines[1:]

	if len(lines) > 0 {
		if m := byLinePattern.FindStringSubmatch(lines[0]); m != nil {
			rec.Author = cleanAuthor(m[1])
			lines = lines[1:]
		}
	}
	rec.Lines = trimBody(lines)
	return rec
}

// stripEmphasis removes surrounding markdown emphasis from a heading line.
func stripEmphasis(s string) string {
	s = strings.TrimSpace(s)
	for _, marker := range []string{"**", "_"} {
		if len(s) > 2*len(marker) && strings.HasPrefix(s, marker) && strings.HasSuffix(s, marker) {
			s = strings.TrimSpace(s[len(marker) : len(s)-len(marker)])
		}
	}
	return s
}

// trimBody drops leading and trailing blank lines and trailing spaces.
func trimBody(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, strings.TrimRight(l, " \t\r"))
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}
