// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package channel

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/pdiddy/quotesite/pkg/types"
)

var (
	boldMarker = regexp.MustCompile(`\*\*(.+?)\*\*`)
	anyTag     = regexp.MustCompile(`<[^>]+>`)
)

// StripTags removes HTML tags and unescapes entities.
func StripTags(s string) string {
	return html.UnescapeString(anyTag.ReplaceAllString(s, ""))
}

func bold(s string) string {
	return boldMarker.ReplaceAllString(html.EscapeString(s), "<b>$1</b>")
}

// QuoteMessage formats the daily quote with its vocabulary quizzes as
// Telegram HTML. Answers are hidden behind spoilers.
func QuoteMessage(q types.QuoteRecord, sections []types.VocabularySection, authorURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Quote of the Day</b>\n\n%s", bold(q.RawQuote))
	if q.HasKnownAuthor() {
		fmt.Fprintf(&b, "\n\n— <b>%s</b>", html.EscapeString(q.AuthorName()))
	}
	for _, v := range sections {
		word := html.EscapeString(v.Word)
		fmt.Fprintf(&b, "\n\n<b>Vocabulary Focus:</b> <i>%s</i>\n%s", word, html.EscapeString(v.Entry.Definition))
		if v.Quiz == nil {
			continue
		}
		fmt.Fprintf(&b, "\n\n<b>Quiz:</b> What does <i>%s</i> mean?\n", word)
		for i, o := range v.Quiz.Options {
			fmt.Fprintf(&b, "%s) %s\n", types.Letter(i), html.EscapeString(o))
		}
		fmt.Fprintf(&b, "\nAnswer: <tg-spoiler>%s</tg-spoiler>", html.EscapeString(v.Quiz.Answer()))
	}
	if authorURL != "" && q.HasKnownAuthor() {
		fmt.Fprintf(&b, "\nLearn about the author: %s", html.EscapeString(authorURL))
	}
	return b.String()
}

// poemPreviewLines is how many lines of a poem the audio caption shows.
const poemPreviewLines = 4

// PoemCaption formats the caption of a poem recitation.
func PoemCaption(p types.PoemRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Poem of the Day</b>\n\n<b>%s</b>", html.EscapeString(p.Title))
	if name := p.AuthorName(); name != "" {
		fmt.Fprintf(&b, "\nby %s", html.EscapeString(name))
	}
	lines := p.Lines
	if len(lines) > poemPreviewLines {
		lines = lines[:poemPreviewLines]
	}
	b.WriteString("\n\n")
	for i, l := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(html.EscapeString(l))
	}
	if len(p.Lines) > poemPreviewLines {
		b.WriteString("\n[...]")
	}
	return b.String()
}

// PoemPerformer is the audio performer for p.
func PoemPerformer(p types.PoemRecord) string {
	if name := p.AuthorName(); name != "" {
		return name
	}
	return types.UnknownAuthor
}
