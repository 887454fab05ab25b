// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package channel connects the pipeline to the Telegram channel: it posts
// the daily content and reads channel posts back as raw messages.
package channel

import (
	"context"

	"github.com/pdiddy/quotesite/pkg/types"
)

// Source supplies an ordered batch of raw messages.
type Source interface {
	Messages(ctx context.Context) ([]types.RawMessage, error)
}

// Poster publishes content to the channel.
type Poster interface {
	// PostText sends a Telegram HTML message.
	PostText(ctx context.Context, html string) error

	// PostAudio sends an audio file with an HTML caption.
	PostAudio(ctx context.Context, path string, meta AudioMeta) error
}

// AudioMeta describes an uploaded recitation.
type AudioMeta struct {
	Caption   string
	Title     string
	Performer string
}
