// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"

	"github.com/pdiddy/quotesite/internal/archive"
	"github.com/pdiddy/quotesite/internal/channel"
	"github.com/pdiddy/quotesite/internal/classify"
	"github.com/pdiddy/quotesite/internal/extract"
	"github.com/pdiddy/quotesite/internal/normalize"
	"github.com/pdiddy/quotesite/internal/publish"
	"github.com/pdiddy/quotesite/internal/vocab"
	"github.com/pdiddy/quotesite/pkg/types"
)

// CommandImport is the history command name of an archive import.
const CommandImport = "import"

// Import publishes every classifiable message of src as a historical
// document. Messages already recorded in history are skipped, so a
// repeated import publishes nothing new. channelURL links documents back
// to their source message; empty disables the link.
func (r *Runner) Import(ctx context.Context, src channel.Source, channelURL string) (Report, error) {
	return r.guard(ctx, CommandImport, func(ctx context.Context, rep *Report) error {
		return r.importMessages(ctx, rep, src, channelURL)
	})
}

func (r *Runner) importMessages(ctx context.Context, rep *Report, src channel.Source, channelURL string) error {
	if err := r.presync(ctx); err != nil {
		return err
	}
	msgs, err := src.Messages(ctx)
	if err != nil {
		return fmt.Errorf("reading messages: %w", err)
	}
	store, err := r.loadVocabulary()
	if err != nil {
		return err
	}

	for _, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.hist != nil {
			seen, err := r.hist.SeenMessage(ctx, msg.ID)
			if err != nil {
				return err
			}
			if seen {
				rep.Skipped++
				continue
			}
		}
		doc, ok, err := r.importMessage(ctx, msg, store, archive.MessageURL(channelURL, msg.ID))
		if err != nil {
			return fmt.Errorf("message %d: %w", msg.ID, err)
		}
		if !ok {
			rep.Unclassified++
			continue
		}
		rep.Processed++
		if err := r.record(ctx, rep, msg.ID, doc); err != nil {
			return err
		}
	}
	fmt.Fprintf(r.out, "Imported %d messages (%d already published, %d unclassified)\n",
		rep.Processed, rep.Skipped, rep.Unclassified)

	if rep.Processed == 0 {
		return nil
	}
	if err := r.regenerateIndex(rep); err != nil {
		return err
	}
	return r.postsync(ctx, rep, fmt.Sprintf("Import %d archived messages", rep.Processed))
}

// importMessage publishes one message. ok is false when the message holds
// nothing publishable.
func (r *Runner) importMessage(ctx context.Context, msg types.RawMessage, store *vocab.Store, sourceURL string) (types.PublishedDocument, bool, error) {
	text := normalize.Normalize(msg.Text)
	kind := classify.ClassifyText(msg.Type, text, msg.HasAttachment())
	log := r.log.With("message", msg.ID, "kind", kind)

	switch kind {
	case types.ContentQuote:
		quote, ok := extract.ExtractQuote(text)
		if !ok {
			log.Debug("quote not extracted")
			return types.PublishedDocument{}, false, nil
		}
		quote.Date = msg.Date
		page := publish.Page{
			Date:       msg.Date,
			Quote:      quote,
			AuthorURL:  r.authorURL(ctx, quote),
			Vocabulary: vocab.Lessons(quote.FocusWords, store, r.rng, log),
			Historical: true,
			SourceURL:  sourceURL,
		}
		doc, err := r.pub.PublishPost(ctx, page)
		return doc, err == nil, err

	case types.ContentPoem:
		poem := extract.ExtractPoem(text)
		page := publish.Page{Date: msg.Date, Poem: &poem, Historical: true, SourceURL: sourceURL}
		doc, err := r.pub.PublishPoem(ctx, page)
		return doc, err == nil, err

	case types.ContentMedia:
		doc, err := r.pub.PublishMedia(publish.MediaPage{Date: msg.Date, Message: msg, Text: text, SourceURL: sourceURL})
		return doc, err == nil, err

	default:
		log.Debug("message skipped")
		return types.PublishedDocument{}, false, nil
	}
}
