// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package channel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pdiddy/quotesite/internal/logger"
	"github.com/pdiddy/quotesite/pkg/types"
)

// Message size limits enforced by the Bot API.
const (
	maxMessageLen = 4000
	maxCaptionLen = 1024
)

// TelegramBot is the subset of the Bot API the channel uses.
type TelegramBot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	GetSelf() tgbotapi.User
}

// tgBotWrapper wraps tgbotapi.BotAPI to implement TelegramBot.
type tgBotWrapper struct {
	bot *tgbotapi.BotAPI
}

func (w *tgBotWrapper) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return w.bot.Send(c)
}

func (w *tgBotWrapper) GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	return w.bot.GetUpdates(config)
}

func (w *tgBotWrapper) GetSelf() tgbotapi.User {
	return w.bot.Self
}

// BotFactory creates TelegramBot instances.
type BotFactory func(token, apiEndpoint string, client *http.Client) (TelegramBot, error)

// DefaultBotFactory creates a real bot. Creating one calls getMe.
var DefaultBotFactory BotFactory = func(token, apiEndpoint string, client *http.Client) (TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, apiEndpoint, client)
	if err != nil {
		return nil, err
	}
	return &tgBotWrapper{bot: bot}, nil
}

// NewBot builds the HTTP client for cfg (proxy and timeout) and creates a
// bot with factory.
func NewBot(cfg types.TelegramConfig, factory BotFactory) (TelegramBot, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token is required")
	}
	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}
	if factory == nil {
		factory = DefaultBotFactory
	}
	bot, err := factory(cfg.Token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return bot, nil
}

// Telegram posts to one channel.
type Telegram struct {
	bot       TelegramBot
	channelID int64
	log       *logger.Logger
}

var _ Poster = (*Telegram)(nil)

// NewTelegram returns a Poster for channelID.
func NewTelegram(bot TelegramBot, channelID int64, log *logger.Logger) *Telegram {
	if log == nil {
		log = logger.Nop()
	}
	return &Telegram{bot: bot, channelID: channelID, log: log}
}

// PostText sends html in chunks below the message limit. A chunk the API
// rejects as HTML is resent as plain text.
func (t *Telegram) PostText(ctx context.Context, html string) error {
	for _, chunk := range splitMessage(html, maxMessageLen) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(t.channelID, chunk)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := t.bot.Send(msg); err != nil {
			t.log.Warn("telegram rejected HTML, retrying as plain text", "error", err)
			msg.ParseMode = ""
			msg.Text = StripTags(chunk)
			if _, err2 := t.bot.Send(msg); err2 != nil {
				return fmt.Errorf("send telegram message: %w", err2)
			}
		}
	}
	return nil
}

// PostAudio uploads the file at path with meta.
func (t *Telegram) PostAudio(ctx context.Context, path string, meta AudioMeta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	audio := tgbotapi.NewAudio(t.channelID, tgbotapi.FilePath(path))
	audio.Caption = truncate(meta.Caption, maxCaptionLen)
	audio.ParseMode = tgbotapi.ModeHTML
	audio.Title = meta.Title
	audio.Performer = meta.Performer
	if _, err := t.bot.Send(audio); err != nil {
		return fmt.Errorf("send telegram audio: %w", err)
	}
	return nil
}

// splitMessage splits s at newlines so that every chunk is at most max
// bytes. A line longer than max is cut at a rune boundary.
func splitMessage(s string, max int) []string {
	var chunks []string
	for len(s) > max {
		cut := strings.LastIndex(s[:max], "\n")
		if cut <= 0 {
			cut = max
			for cut > 0 && !utf8.RuneStart(s[cut]) {
				cut--
			}
		}
		chunks = append(chunks, s[:cut])
		s = strings.TrimPrefix(s[cut:], "\n")
	}
	if s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
