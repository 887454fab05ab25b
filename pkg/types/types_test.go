// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageTextUnmarshal(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		segmented bool
		plain     string
		segments  []Segment
	}{
		{name: "string", input: `"hello"`, plain: "hello"},
		{name: "null", input: `null`},
		{
			name:      "mixed array",
			input:     `["Be ", {"type": "bold", "text": "bold"}, {"type": "text_link", "text": "me", "href": "https://x.org"}]`,
			segmented: true,
			segments: []Segment{
				{Kind: SegmentPlain, Text: "Be "},
				{Kind: SegmentBold, Text: "bold"},
				{Kind: SegmentTextLink, Text: "me", Href: "https://x.org"},
			},
		},
		{
			name:      "unknown kind and odd text",
			input:     `[{"type": "hashtag", "text": "#daily"}, {"text": 42}, 7]`,
			segmented: true,
			segments: []Segment{
				{Kind: "hashtag", Text: "#daily"},
				{Kind: SegmentPlain, Text: "42"},
				{Kind: SegmentPlain, Text: "7"},
			},
		},
		{name: "object degrades to raw text", input: `{"a": 1}`, plain: `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got MessageText
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.segmented, got.IsSegmented())
			assert.Equal(t, tt.plain, got.Plain)
			assert.Equal(t, tt.segments, got.Segments)
		})
	}
}

func TestRawMessageDecodesExportDates(t *testing.T) {
	var msgs []RawMessage
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id": 1, "type": "message", "date": "2023-11-05T09:30:00", "text": "hi", "photo": "photos/1.jpg"},
		{"id": 2, "type": "service", "date": "not a date", "text": ""}
	]`), &msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, time.Date(2023, 11, 5, 9, 30, 0, 0, time.UTC), msgs[0].Date)
	assert.True(t, msgs[0].HasAttachment())
	assert.True(t, msgs[1].Date.IsZero())
	assert.False(t, msgs[1].HasAttachment())
}

func TestQuoteRecordAuthorLink(t *testing.T) {
	q := QuoteRecord{RawQuote: "x", Author: "[Oscar Wilde](https://en.wikipedia.org/wiki/Oscar_Wilde)"}
	assert.Equal(t, "Oscar Wilde", q.AuthorName())
	assert.Equal(t, "https://en.wikipedia.org/wiki/Oscar_Wilde", q.AuthorURL())
	assert.True(t, q.HasKnownAuthor())

	assert.False(t, QuoteRecord{RawQuote: "x"}.HasKnownAuthor())
	assert.Equal(t, "C) c", QuizRecord{Options: [4]string{"a", "b", "c", "d"}, CorrectIndex: 2}.Answer())
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	c := Config{Site: SiteConfig{Format: FormatMarkdown}}.WithDefaults()
	assert.Equal(t, "index.md", c.Site.IndexFile)
	assert.Equal(t, "index_template.md", c.Site.IndexTemplate)
	assert.Equal(t, "post_template.html", c.Site.PostTemplate)
	assert.Equal(t, SpeechNone, c.Speech.Backend)
	assert.Equal(t, "posts/x", c.RepoPath("posts/x"))
	assert.Equal(t, "/abs/x", c.RepoPath("/abs/x"))
	require.NoError(t, c.Validate())

	bad := Config{
		Site:     SiteConfig{Format: "pdf"},
		Speech:   SpeechConfig{Backend: SpeechCommand},
		Telegram: TelegramConfig{Post: true},
	}.WithDefaults()
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "site.format")
	assert.Contains(t, err.Error(), "speech.command")
	assert.Contains(t, err.Error(), "telegram.post")
}
