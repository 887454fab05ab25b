// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MessageTypeMessage is the message type carried by ordinary channel posts.
// Service events (pins, joins, title changes) carry other types.
const MessageTypeMessage = "message"

// exportTimeLayout is the timestamp layout used by Telegram Desktop exports.
const exportTimeLayout = "2006-01-02T15:04:05"

// SegmentKind identifies how a text segment is formatted.
type SegmentKind string

const (
	SegmentPlain    SegmentKind = "plain"
	SegmentBold     SegmentKind = "bold"
	SegmentItalic   SegmentKind = "italic"
	SegmentTextLink SegmentKind = "text_link"
	SegmentLink     SegmentKind = "link"
)

// Segment is one typed span of rich message text. Unknown kinds are kept
// verbatim so that normalization can still fall back to the bare text.
type Segment struct {
	Kind SegmentKind `json:"type" yaml:"type"`
	Text string      `json:"text" yaml:"text"`
	Href string      `json:"href,omitempty" yaml:"href,omitempty"`
}

// MessageText is the text of a message: either a single plain string or an
// ordered list of segments. Exactly one of the two forms is meaningful,
// selected by IsSegmented.
type MessageText struct {
	Plain     string
	Segments  []Segment
	segmented bool
}

// PlainText returns a MessageText holding a single plain string.
func PlainText(s string) MessageText {
	return MessageText{Plain: s}
}

// SegmentList returns a MessageText holding the given segments.
func SegmentList(segs ...Segment) MessageText {
	return MessageText{Segments: segs, segmented: true}
}

// IsSegmented reports whether the text is a segment list.
func (t MessageText) IsSegmented() bool {
	return t.segmented
}

// UnmarshalJSON accepts a JSON string, or an array whose items are strings
// or {type, text, href} objects. Any other shape degrades to its raw JSON
// text so that no content is lost.
func (t *MessageText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = MessageText{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding message text: %w", err)
		}
		*t = PlainText(s)
		return nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decoding message segments: %w", err)
		}
		segs := make([]Segment, 0, len(items))
		for _, item := range items {
			segs = append(segs, decodeSegment(item))
		}
		*t = SegmentList(segs...)
		return nil
	default:
		*t = PlainText(string(data))
		return nil
	}
}

// MarshalJSON writes the text back in the export shape it was read from.
func (t MessageText) MarshalJSON() ([]byte, error) {
	if !t.segmented {
		return json.Marshal(t.Plain)
	}
	return json.Marshal(t.Segments)
}

func decodeSegment(raw json.RawMessage) Segment {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var obj struct {
			Type string          `json:"type"`
			Text json.RawMessage `json:"text"`
			Href string          `json:"href"`
		}
		if err := json.Unmarshal(raw, &obj); err == nil {
			kind := SegmentKind(obj.Type)
			if kind == "" {
				kind = SegmentPlain
			}
			return Segment{Kind: kind, Text: rawString(obj.Text), Href: obj.Href}
		}
	}
	return Segment{Kind: SegmentPlain, Text: rawString(raw)}
}

// rawString converts a JSON value to text: strings are unquoted, null is
// empty, anything else is kept as its JSON source.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// RawMessage is a message as supplied by the message source. The core only
// depends on the ID, type, date, text and the optional attachment fields.
type RawMessage struct {
	ID     int64       `json:"id"`
	Type   string      `json:"type"`
	Date   time.Time   `json:"-"`
	Text   MessageText `json:"text"`
	FromID string      `json:"from_id,omitempty"`

	// Attachment fields, present on media messages.
	File            string `json:"file,omitempty"`
	FileName        string `json:"file_name,omitempty"`
	MimeType        string `json:"mime_type,omitempty"`
	Photo           string `json:"photo,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	Width           int    `json:"width,omitempty"`
	Height          int    `json:"height,omitempty"`
}

// HasAttachment reports whether the message carries a file or photo.
func (m RawMessage) HasAttachment() bool {
	return m.File != "" || m.Photo != ""
}

// UnmarshalJSON decodes a Telegram export message. An unparsable date is
// left as the zero time rather than failing the whole message.
func (m *RawMessage) UnmarshalJSON(data []byte) error {
	type alias RawMessage
	var aux struct {
		alias
		Date string `json:"date"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = RawMessage(aux.alias)
	if aux.Date != "" {
		if ts, err := time.Parse(exportTimeLayout, aux.Date); err == nil {
			m.Date = ts
		} else if ts, err := time.Parse(time.RFC3339, aux.Date); err == nil {
			m.Date = ts
		}
	}
	return nil
}
