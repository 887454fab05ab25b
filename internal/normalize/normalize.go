// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize flattens rich message text into a single marked-up
// string. Links render as [label](href), bold as **text** and italic as
// _text_; every other segment renders its bare text.
package normalize

import (
	"strings"

	"github.com/pdiddy/quotesite/pkg/types"
)

// style wraps a segment's text for kinds that carry emphasis.
type style struct {
	open, close string
}

var styles = map[types.SegmentKind]style{
	types.SegmentBold:   {"**", "**"},
	types.SegmentItalic: {"_", "_"},
}

// Normalize returns the plain/marked-up form of text. It is a pure function
// of its input and never panics; no segment is dropped.
func Normalize(text types.MessageText) string {
	if !text.IsSegmented() {
		return strings.TrimSpace(text.Plain)
	}
	var b strings.Builder
	for _, seg := range text.Segments {
		b.WriteString(Segment(seg))
	}
	return strings.TrimSpace(b.String())
}

// Segment renders a single segment.
func Segment(seg types.Segment) string {
	if seg.Kind == types.SegmentTextLink || (seg.Href != "" && seg.Kind != types.SegmentPlain) {
		return "[" + seg.Text + "](" + seg.Href + ")"
	}
	st, ok := styles[seg.Kind]
	if !ok || strings.TrimSpace(seg.Text) == "" {
		return seg.Text
	}
	// Keep surrounding whitespace outside the markers so "**word **" never
	// appears; markdown would not treat it as emphasis.
	lead := seg.Text[:len(seg.Text)-len(strings.TrimLeft(seg.Text, " \t\n"))]
	trail := seg.Text[len(strings.TrimRight(seg.Text, " \t\n")):]
	core := strings.TrimSpace(seg.Text)
	return lead + st.open + core + st.close + trail
}
