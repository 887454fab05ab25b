// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/quotesite/pkg/types"
)

type htmlRenderer struct{}

var htmlBoldPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)

func (htmlRenderer) Ext() string { return "html" }

func (r htmlRenderer) RenderPage(p Page, tmpl string) (string, []string) {
	historical := ""
	if p.Historical {
		historical = r.historicalNote(p)
	}
	return Fill(tmpl, []Substitution{
		{TokenDate, p.Date.Format(humanDateLayout)},
		{TokenYear, strconv.Itoa(p.Date.Year())},
		{TokenHistorical, historical},
		{TokenQuoteSection, r.quoteSection(p)},
		{TokenVocabSection, r.vocabSection(p)},
		{TokenPoemSection, r.poemSection(p)},
	})
}

// emphasize escapes s and turns **bold** spans into <strong>.
func emphasize(s string) string {
	return htmlBoldPattern.ReplaceAllString(html.EscapeString(s), "<strong>$1</strong>")
}

func link(name, url string) string {
	if url == "" {
		return html.EscapeString(name)
	}
	return fmt.Sprintf(`<a href="%s" target="_blank">%s</a>`, html.EscapeString(url), html.EscapeString(name))
}

func (htmlRenderer) historicalNote(p Page) string {
	var b strings.Builder
	b.WriteString("<div class=\"historical-note\">\n")
	fmt.Fprintf(&b, "    <p>🔍 Archived from Telegram on %s</p>\n", p.ArchivedOn.Format(dateLayout))
	if p.SourceURL != "" {
		fmt.Fprintf(&b, "    <p><a href=\"%s\">View original</a></p>\n", html.EscapeString(p.SourceURL))
	}
	b.WriteString("</div>")
	return b.String()
}

func (htmlRenderer) quoteSection(p Page) string {
	if p.Quote == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("<section class=\"quote-section\">\n")
	b.WriteString("    <h2>Quote of the Day</h2>\n")
	fmt.Fprintf(&b, "    <blockquote>&#34;%s&#34;</blockquote>\n", emphasize(p.Quote.RawQuote))
	fmt.Fprintf(&b, "    <p class=\"author\">— %s</p>\n", link(p.Quote.AuthorName(), p.AuthorURL))
	b.WriteString("</section>")
	return b.String()
}

func (htmlRenderer) vocabSection(p Page) string {
	if p.Quote == nil {
		return ""
	}
	var b strings.Builder
	if len(p.Quote.FocusWords) == 0 {
		b.WriteString("<section class=\"quiz-box\">\n")
		fmt.Fprintf(&b, "    <h3>%s</h3>\n", reflectionHeading)
		fmt.Fprintf(&b, "    <p>%s</p>\n", html.EscapeString(reflectionText))
		fmt.Fprintf(&b, "    <p>%s</p>\n", html.EscapeString(reflectionPrompt))
		b.WriteString("</section>")
		return b.String()
	}
	for i, v := range p.Vocabulary {
		if i > 0 {
			b.WriteString("\n")
		}
		word := html.EscapeString(v.Word)
		b.WriteString("<section class=\"quiz-box\">\n")
		fmt.Fprintf(&b, "    <h3>Vocabulary Focus: %s</h3>\n", word)
		fmt.Fprintf(&b, "    <p><strong>Definition:</strong> %s</p>\n", html.EscapeString(v.Entry.Definition))
		if q := v.Quiz; q != nil {
			b.WriteString("    <div class=\"quiz\">\n")
			fmt.Fprintf(&b, "        <p><strong>Quiz:</strong> What does <em>%s</em> mean?</p>\n", word)
			b.WriteString("        <ol type=\"A\">\n")
			for _, o := range q.Options {
				fmt.Fprintf(&b, "            <li>%s</li>\n", html.EscapeString(o))
			}
			b.WriteString("        </ol>\n")
			fmt.Fprintf(&b, "        <div class=\"answer\">\n            <strong>Answer:</strong> <span class=\"spoiler\">%s</span>\n        </div>\n",
				html.EscapeString(q.Answer()))
			b.WriteString("    </div>\n")
		}
		b.WriteString("</section>")
	}
	return b.String()
}

func (htmlRenderer) poemSection(p Page) string {
	if p.Poem == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("<section class=\"poem-box\">\n")
	fmt.Fprintf(&b, "    <h3>Poem of the Day: %s</h3>\n", html.EscapeString(p.Poem.Title))
	if name := p.Poem.AuthorName(); name != "" && name != types.UnknownAuthor {
		fmt.Fprintf(&b, "    <p class=\"author\">by %s</p>\n", link(name, p.PoemAuthorURL))
	}
	b.WriteString("    <div class=\"poem-text\">")
	for _, line := range p.Poem.Lines {
		fmt.Fprintf(&b, "<p>%s</p>", emphasize(line))
	}
	b.WriteString("</div>\n")
	if p.AudioHref != "" {
		b.WriteString("    <audio controls>\n")
		fmt.Fprintf(&b, "        <source src=\"%s\" type=\"audio/mpeg\">\n", html.EscapeString(p.AudioHref))
		b.WriteString("        Your browser does not support the audio element.\n")
		b.WriteString("    </audio>\n")
	}
	b.WriteString("</section>")
	return b.String()
}

func (htmlRenderer) RenderMedia(m MediaPage) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n    <meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "    <title>%s</title>\n</head>\n<body>\n", html.EscapeString(headline(mediaTitle(m), 50)))
	fmt.Fprintf(&b, "<p class=\"date\">%s</p>\n", m.Date.Format(humanDateLayout))
	if m.Text != "" {
		fmt.Fprintf(&b, "<p>%s</p>\n", emphasize(m.Text))
	}
	msg := m.Message
	if m.MediaKind() == "video" {
		fmt.Fprintf(&b, "<p><a href=\"%s\">Video: %s</a></p>\n", html.EscapeString(msg.File), html.EscapeString(msg.FileName))
		fmt.Fprintf(&b, "<p>Duration: %d seconds</p>\n", msg.DurationSeconds)
	} else {
		fmt.Fprintf(&b, "<img src=\"%s\" alt=\"Photo\">\n", html.EscapeString(msg.Photo))
	}
	fmt.Fprintf(&b, "<p>Resolution: %dx%d</p>\n", msg.Width, msg.Height)
	if m.SourceURL != "" {
		fmt.Fprintf(&b, "<p><a href=\"%s\">View original</a></p>\n", html.EscapeString(m.SourceURL))
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func (htmlRenderer) IndexEntry(href, label string) string {
	return fmt.Sprintf(`<li><a href="%s">%s</a></li>`, html.EscapeString(href), html.EscapeString(label))
}

func mediaTitle(m MediaPage) string {
	if m.Text != "" {
		return m.Text
	}
	return "Media Content"
}
