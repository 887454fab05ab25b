// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/quotesite/internal/classify"
	"github.com/pdiddy/quotesite/internal/normalize"
	"github.com/pdiddy/quotesite/pkg/types"
)

const sampleExport = `{
  "name": "Daily Quotes",
  "type": "private_channel",
  "id": 1234567890,
  "messages": [
    {
      "id": 12,
      "type": "message",
      "date": "2023-05-02T08:00:00",
      "photo": "photos/photo_1@02-05-2023.jpg",
      "width": 1280,
      "height": 720,
      "text": ""
    },
    {
      "id": 3,
      "type": "service",
      "date": "2023-04-30T10:00:00",
      "action": "pin_message",
      "text": ""
    },
    {
      "id": 10,
      "type": "message",
      "date": "2023-05-01T08:00:00",
      "text": [
        {"type": "bold", "text": "Quote of the Day"},
        "\n\n\"Be yourself; everyone else is already ",
        {"type": "bold", "text": "taken"},
        ".\" — ",
        {"type": "text_link", "text": "Oscar Wilde", "href": "https://en.wikipedia.org/wiki/Oscar_Wilde"}
      ]
    }
  ]
}`

func writeExport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleExport), 0o644))
	return path
}

func TestExportSourceMessages(t *testing.T) {
	msgs, err := NewExportSource(writeExport(t)).Messages(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []int64{3, 10, 12}, []int64{msgs[0].ID, msgs[1].ID, msgs[2].ID})

	assert.Equal(t, types.Unclassified, classify.Classify(msgs[0]))

	quote := msgs[1]
	assert.Equal(t, time.Date(2023, 5, 1, 8, 0, 0, 0, time.UTC), quote.Date)
	assert.Equal(t, types.ContentQuote, classify.Classify(quote))
	assert.Equal(t,
		"**Quote of the Day**\n\n\"Be yourself; everyone else is already **taken**.\" — [Oscar Wilde](https://en.wikipedia.org/wiki/Oscar_Wilde)",
		normalize.Normalize(quote.Text))

	media := msgs[2]
	assert.True(t, media.HasAttachment())
	assert.Equal(t, types.ContentMedia, classify.Classify(media))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "parsing export")
}

func TestChannelURL(t *testing.T) {
	tests := []struct {
		id   int64
		want string
	}{
		{1234567890, "https://t.me/c/1234567890"},
		{-1001234567890, "https://t.me/c/1234567890"},
		{0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, (&Export{ID: tt.id}).ChannelURL())
	}
	assert.Equal(t, "https://t.me/c/1/42", MessageURL("https://t.me/c/1", 42))
	assert.Empty(t, MessageURL("", 42))
}
