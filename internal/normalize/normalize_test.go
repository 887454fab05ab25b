// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"encoding/json"
	"testing"

	"github.com/pdiddy/quotesite/pkg/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		text types.MessageText
		want string
	}{
		{"plain trimmed", types.PlainText("  Quote of the Day \n"), "Quote of the Day"},
		{"empty plain", types.PlainText(""), ""},
		{"empty segments", types.SegmentList(), ""},
		{
			"text link",
			types.SegmentList(
				types.Segment{Kind: types.SegmentPlain, Text: "\"Stay hungry.\" — "},
				types.Segment{Kind: types.SegmentTextLink, Text: "Steve Jobs", Href: "https://example.com/jobs"},
			),
			"\"Stay hungry.\" — [Steve Jobs](https://example.com/jobs)",
		},
		{
			"bold and italic",
			types.SegmentList(
				types.Segment{Kind: types.SegmentPlain, Text: "An "},
				types.Segment{Kind: types.SegmentBold, Text: "ephemeral"},
				types.Segment{Kind: types.SegmentPlain, Text: " and "},
				types.Segment{Kind: types.SegmentItalic, Text: "fleeting"},
				types.Segment{Kind: types.SegmentPlain, Text: " joy"},
			),
			"An **ephemeral** and _fleeting_ joy",
		},
		{
			"bold with trailing space keeps space outside markers",
			types.SegmentList(
				types.Segment{Kind: types.SegmentBold, Text: "brave "},
				types.Segment{Kind: types.SegmentPlain, Text: "heart"},
			),
			"**brave** heart",
		},
		{
			"whitespace-only bold is not wrapped",
			types.SegmentList(
				types.Segment{Kind: types.SegmentPlain, Text: "a"},
				types.Segment{Kind: types.SegmentBold, Text: " "},
				types.Segment{Kind: types.SegmentPlain, Text: "b"},
			),
			"a b",
		},
		{
			"unknown kind renders bare text",
			types.SegmentList(
				types.Segment{Kind: "hashtag", Text: "#daily"},
				types.Segment{Kind: types.SegmentLink, Text: " https://t.me/x"},
			),
			"#daily https://t.me/x",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.text)
			if got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeDecodedExportText(t *testing.T) {
	raw := `["📖 Quote of the Day\n\n\"Be ", {"type": "bold", "text": "bold"}, ".\" — ",
		{"type": "text_link", "text": "Someone", "href": "https://w.org/S"}, 42, {"type": "custom", "text": {"nested": true}}]`

	var text types.MessageText
	if err := json.Unmarshal([]byte(raw), &text); err != nil {
		t.Fatal(err)
	}
	got := Normalize(text)
	want := "📖 Quote of the Day\n\n\"Be **bold**.\" — [Someone](https://w.org/S)42{\"nested\": true}"
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	text := types.SegmentList(
		types.Segment{Kind: types.SegmentBold, Text: "x"},
		types.Segment{Kind: types.SegmentTextLink, Text: "y", Href: "z"},
	)
	first := Normalize(text)
	for i := 0; i < 5; i++ {
		if got := Normalize(text); got != first {
			t.Fatalf("run %d: %q != %q", i, got, first)
		}
	}
}
