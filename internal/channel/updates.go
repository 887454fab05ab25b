// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package channel

import (
	"context"
	"fmt"
	"sort"
	"time"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pdiddy/quotesite/pkg/types"
)

// UpdatesSource reads recent channel posts through getUpdates. The bot must
// be an administrator of the channel. Each call acknowledges the updates it
// returned, so a post is delivered once.
type UpdatesSource struct {
	bot       TelegramBot
	channelID int64
	offset    int
	limit     int
}

var _ Source = (*UpdatesSource)(nil)

// NewUpdatesSource returns a source of posts from channelID. A zero
// channelID accepts posts from every channel the bot sees.
func NewUpdatesSource(bot TelegramBot, channelID int64) *UpdatesSource {
	return &UpdatesSource{bot: bot, channelID: channelID, limit: 100}
}

// Messages drains pending updates and returns the channel posts among them
// ordered by message ID.
func (s *UpdatesSource) Messages(ctx context.Context) ([]types.RawMessage, error) {
	var out []types.RawMessage
	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		cfg := tgbotapi.NewUpdate(s.offset)
		cfg.Limit = s.limit
		cfg.AllowedUpdates = []string{"channel_post"}
		updates, err := s.bot.GetUpdates(cfg)
		if err != nil {
			return out, fmt.Errorf("fetching telegram updates: %w", err)
		}
		if len(updates) == 0 {
			break
		}
		for _, u := range updates {
			if u.UpdateID >= s.offset {
				s.offset = u.UpdateID + 1
			}
			post := u.ChannelPost
			if post == nil || post.Chat == nil {
				continue
			}
			if s.channelID != 0 && post.Chat.ID != s.channelID {
				continue
			}
			out = append(out, ConvertMessage(post))
		}
		if len(updates) < s.limit {
			break
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ConvertMessage maps a Bot API message to a raw message. Formatting
// entities become typed segments; captions stand in for text on media.
func ConvertMessage(m *tgbotapi.Message) types.RawMessage {
	raw := types.RawMessage{
		ID:   int64(m.MessageID),
		Type: types.MessageTypeMessage,
		Date: time.Unix(int64(m.Date), 0).UTC(),
	}
	text, entities := m.Text, m.Entities
	if text == "" {
		text, entities = m.Caption, m.CaptionEntities
	}
	if len(entities) == 0 {
		raw.Text = types.PlainText(text)
	} else {
		raw.Text = types.SegmentList(segments(text, entities)...)
	}

	switch {
	case len(m.Photo) > 0:
		largest := m.Photo[len(m.Photo)-1]
		raw.Photo = largest.FileID
		raw.Width, raw.Height = largest.Width, largest.Height
	case m.Video != nil:
		raw.File = m.Video.FileID
		raw.FileName = m.Video.FileName
		raw.MimeType = m.Video.MimeType
		raw.DurationSeconds = m.Video.Duration
		raw.Width, raw.Height = m.Video.Width, m.Video.Height
	case m.Document != nil:
		raw.File = m.Document.FileID
		raw.FileName = m.Document.FileName
		raw.MimeType = m.Document.MimeType
	}
	return raw
}

// segments splits text by entity ranges. Entity offsets count UTF-16 code
// units. Overlapping or nested entities keep the first one.
func segments(text string, entities []tgbotapi.MessageEntity) []types.Segment {
	units := utf16.Encode([]rune(text))
	sorted := append([]tgbotapi.MessageEntity(nil), entities...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	var segs []types.Segment
	plain := func(from, to int) {
		if to > from {
			segs = append(segs, types.Segment{Kind: types.SegmentPlain, Text: string(utf16.Decode(units[from:to]))})
		}
	}
	pos := 0
	for _, e := range sorted {
		start, end := e.Offset, e.Offset+e.Length
		if start < pos || end > len(units) || e.Length <= 0 {
			continue
		}
		plain(pos, start)
		seg := types.Segment{Kind: entityKind(e.Type), Text: string(utf16.Decode(units[start:end]))}
		switch e.Type {
		case "text_link":
			seg.Href = e.URL
		case "url":
			seg.Href = seg.Text
		}
		segs = append(segs, seg)
		pos = end
	}
	plain(pos, len(units))
	return segs
}

func entityKind(t string) types.SegmentKind {
	switch t {
	case "bold":
		return types.SegmentBold
	case "italic":
		return types.SegmentItalic
	case "text_link":
		return types.SegmentTextLink
	case "url":
		return types.SegmentLink
	default:
		return types.SegmentKind(t)
	}
}
