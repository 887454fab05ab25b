// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify decides whether a message is a quote, a poem, a media
// post, or none of these. Quote markers take priority: a message matching
// both quote and poem markers is a quote.
package classify

import (
	"regexp"
	"strings"

	"github.com/pdiddy/quotesite/internal/normalize"
	"github.com/pdiddy/quotesite/pkg/types"
)

// QuoteMarkers are substrings that identify a quote post.
var QuoteMarkers = []string{
	"Daily Quote",
	"Quote of the Day",
	"📖",
	"Vocabulary Focus:",
}

// PoemMarker identifies a poem post. Any case-insensitive "poem" also counts.
const PoemMarker = "Poem of the Day"

// attributionPattern matches quoted text followed by a dash and an attribution.
var attributionPattern = regexp.MustCompile(`["“][^"“”\n]+["”]\s*[—–]\s*\S`)

// Classify returns the content kind of msg.
func Classify(msg types.RawMessage) types.ContentKind {
	return ClassifyText(msg.Type, normalize.Normalize(msg.Text), msg.HasAttachment())
}

// ClassifyText classifies already-normalized text.
func ClassifyText(msgType, text string, hasAttachment bool) types.ContentKind {
	if msgType != types.MessageTypeMessage {
		return types.Unclassified
	}
	switch {
	case IsQuote(text):
		return types.ContentQuote
	case IsPoem(text):
		return types.ContentPoem
	case hasAttachment:
		return types.ContentMedia
	default:
		return types.Unclassified
	}
}

// IsQuote reports whether text carries a quote marker or a quoted
// attribution.
func IsQuote(text string) bool {
	for _, m := range QuoteMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return attributionPattern.MatchString(text)
}

// IsPoem reports whether text carries a poem marker.
func IsPoem(text string) bool {
	return strings.Contains(text, PoemMarker) || strings.Contains(strings.ToLower(text), "poem")
}
