// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"fmt"
	"time"

	"github.com/pdiddy/quotesite/pkg/types"
)

// Page is everything rendered into one post, quote or poem document.
type Page struct {
	Date time.Time

	Quote      *types.QuoteRecord
	AuthorURL  string
	Vocabulary []types.VocabularySection

	Poem          *types.PoemRecord
	PoemAuthorURL string

	// AudioHref is the audio path relative to the page.
	AudioHref string

	// Historical marks a page imported from the message archive.
	Historical bool
	ArchivedOn time.Time
	SourceURL  string
}

// MediaPage describes an imported video or photo message.
type MediaPage struct {
	Date      time.Time
	Message   types.RawMessage
	Text      string
	SourceURL string
}

// MediaKind returns "video" for file attachments and "photo" otherwise.
func (m MediaPage) MediaKind() string {
	if m.Message.File != "" {
		return "video"
	}
	return "photo"
}

// Renderer turns pages into documents of one output format.
type Renderer interface {
	// Ext is the document file extension.
	Ext() string

	// RenderPage renders p. tmpl is the post template; formats that do not
	// use templates ignore it. missing lists absent placeholder tokens.
	RenderPage(p Page, tmpl string) (doc string, missing []string)

	// RenderMedia renders an imported media message.
	RenderMedia(m MediaPage) string

	// IndexEntry renders one index list item linking to href.
	IndexEntry(href, label string) string
}

// NewRenderer returns the renderer for format.
func NewRenderer(format types.OutputFormat) (Renderer, error) {
	switch format {
	case types.FormatHTML, "":
		return htmlRenderer{}, nil
	case types.FormatMarkdown:
		return markdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// headline returns the first n runes of s followed by an ellipsis when s
// is longer.
func headline(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

const (
	humanDateLayout   = "January 02, 2006"
	reflectionHeading = "Vocabulary Reflection"
	reflectionText    = "Today's quote doesn't contain specific vocabulary focus words."
	reflectionPrompt  = "Reflect on the meaning and message of the quote itself."
)
