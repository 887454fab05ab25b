// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"fmt"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/quotesite/pkg/types"
)

type markdownRenderer struct{}

// frontMatter is the YAML header of markdown documents.
type frontMatter struct {
	Title    string `yaml:"title"`
	Date     string `yaml:"date"`
	Kind     string `yaml:"kind"`
	Author   string `yaml:"author,omitempty"`
	Archived string `yaml:"archived,omitempty"`
	Source   string `yaml:"source,omitempty"`
	Media    string `yaml:"media,omitempty"`
}

func (markdownRenderer) Ext() string { return "md" }

func writeFrontMatter(b *strings.Builder, fm frontMatter) {
	data, err := yaml.Marshal(fm)
	if err != nil {
		// frontMatter holds only strings; Marshal cannot fail.
		panic(err)
	}
	b.WriteString("---\n")
	b.Write(data)
	b.WriteString("---\n\n")
}

func mdLink(name, url string) string {
	if url == "" {
		return name
	}
	return fmt.Sprintf("[%s](%s)", name, url)
}

// RenderPage ignores tmpl; markdown documents carry their metadata in
// front matter instead.
func (markdownRenderer) RenderPage(p Page, _ string) (string, []string) {
	fm := frontMatter{Date: p.Date.Format(dateLayout)}
	switch {
	case p.Quote != nil:
		fm.Kind = string(types.DocumentQuote)
		fm.Title = headline(stripBold(p.Quote.RawQuote), 50)
		fm.Author = p.Quote.AuthorName()
	case p.Poem != nil:
		fm.Kind = string(types.DocumentPoem)
		fm.Title = p.Poem.Title
		fm.Author = p.Poem.AuthorName()
	}
	if p.Historical {
		fm.Archived = p.ArchivedOn.Format(dateLayout)
		fm.Source = p.SourceURL
	}

	var b strings.Builder
	writeFrontMatter(&b, fm)
	if p.Historical {
		fmt.Fprintf(&b, "*🔍 Archived from Telegram on %s*\n\n", fm.Archived)
	}
	if q := p.Quote; q != nil {
		b.WriteString("## Quote of the Day\n\n")
		fmt.Fprintf(&b, "> \"%s\" — %s\n\n", q.RawQuote, mdLink(q.AuthorName(), p.AuthorURL))
		writeMarkdownVocabulary(&b, q, p.Vocabulary)
	}
	if poem := p.Poem; poem != nil {
		fmt.Fprintf(&b, "## Poem of the Day: %s\n\n", poem.Title)
		if name := poem.AuthorName(); name != "" && name != types.UnknownAuthor {
			fmt.Fprintf(&b, "*by %s*\n\n", mdLink(name, p.PoemAuthorURL))
		}
		for _, line := range poem.Lines {
			if line == "" {
				b.WriteString("\n")
				continue
			}
			b.WriteString(line + "  \n")
		}
		b.WriteString("\n")
		if p.AudioHref != "" {
			fmt.Fprintf(&b, "[Listen](%s)\n\n", p.AudioHref)
		}
	}
	if p.SourceURL != "" {
		fmt.Fprintf(&b, "[View original](%s)\n", p.SourceURL)
	}
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

func writeMarkdownVocabulary(b *strings.Builder, q *types.QuoteRecord, sections []types.VocabularySection) {
	if len(q.FocusWords) == 0 {
		fmt.Fprintf(b, "## %s\n\n%s %s\n\n", reflectionHeading, reflectionText, reflectionPrompt)
		return
	}
	for _, v := range sections {
		fmt.Fprintf(b, "## Vocabulary Focus: %s\n\n", v.Word)
		fmt.Fprintf(b, "**Definition:** %s\n\n", v.Entry.Definition)
		quiz := v.Quiz
		if quiz == nil {
			continue
		}
		fmt.Fprintf(b, "**Quiz:** What does *%s* mean?\n\n", v.Word)
		for i, o := range quiz.Options {
			fmt.Fprintf(b, "%s) %s\n", types.Letter(i), o)
		}
		fmt.Fprintf(b, "\n<details><summary>Answer</summary>%s</details>\n\n", quiz.Answer())
	}
}

func (markdownRenderer) RenderMedia(m MediaPage) string {
	msg := m.Message
	fm := frontMatter{
		Title:  headline(mediaTitle(m), 50),
		Date:   m.Date.Format(dateLayout),
		Kind:   string(types.DocumentMedia),
		Source: m.SourceURL,
		Media:  m.MediaKind(),
	}
	var b strings.Builder
	writeFrontMatter(&b, fm)
	if m.Text != "" {
		b.WriteString(m.Text + "\n\n")
	}
	if m.MediaKind() == "video" {
		fmt.Fprintf(&b, "**Video:** [%s](%s)\n\n", msg.FileName, msg.File)
		fmt.Fprintf(&b, "**Duration:** %d seconds\n\n", msg.DurationSeconds)
	} else {
		fmt.Fprintf(&b, "![Photo](%s)\n\n", msg.Photo)
	}
	fmt.Fprintf(&b, "**Resolution:** %dx%d\n", msg.Width, msg.Height)
	return b.String()
}

func (markdownRenderer) IndexEntry(href, label string) string {
	return fmt.Sprintf("- [%s](%s)", label, href)
}

func stripBold(s string) string {
	return strings.ReplaceAll(s, "**", "")
}

// archivedOn returns t, or now when t is zero.
func archivedOn(t time.Time, now func() time.Time) time.Time {
	if t.IsZero() {
		return now()
	}
	return t
}
