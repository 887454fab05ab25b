// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/quotesite/internal/channel"
	"github.com/pdiddy/quotesite/internal/extract"
	"github.com/pdiddy/quotesite/internal/history"
	"github.com/pdiddy/quotesite/internal/publish"
	"github.com/pdiddy/quotesite/internal/vocab"
	"github.com/pdiddy/quotesite/pkg/types"
)

// CommandRun is the history command name of the daily run.
const CommandRun = "run"

// Run publishes the daily post: an unused quote from the pool with its
// vocabulary lessons and a poem from the poem bank. An exhausted pool is
// reported with the no_content status and a nil error.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	return r.guard(ctx, CommandRun, r.daily)
}

func (r *Runner) daily(ctx context.Context, rep *Report) error {
	if err := r.presync(ctx); err != nil {
		return err
	}

	pool, err := publish.LoadPool(r.cfg.RepoPath(r.cfg.Data.QuotesFile))
	if err != nil {
		return err
	}
	ledger, err := publish.LoadLedger(r.cfg.RepoPath(r.cfg.Data.LedgerFile))
	if err != nil {
		return err
	}
	line, err := publish.SelectQuote(pool, ledger, r.rng)
	if errors.Is(err, publish.ErrNoContent) {
		r.log.Warn("quote pool exhausted", "pool", len(pool), "used", ledger.Len())
		fmt.Fprintln(r.out, "No unused quotes left in the pool")
		rep.Status = history.StatusNoContent
		return nil
	}
	if err != nil {
		return err
	}

	date := r.now()
	quote, ok := extract.ParsePoolEntry(line)
	if !ok {
		quote = types.QuoteRecord{RawQuote: line, Author: types.UnknownAuthor}
	}
	quote.Date = date
	rep.Quote = &quote

	store, err := r.loadVocabulary()
	if err != nil {
		return err
	}
	sections := vocab.Lessons(quote.FocusWords, store, r.rng, r.log)

	poem, audioPath, err := r.poemOfTheDay(ctx)
	if err != nil {
		return err
	}
	rep.Poem = poem

	page := publish.Page{
		Date:       date,
		Quote:      &quote,
		AuthorURL:  r.authorURL(ctx, &quote),
		Vocabulary: sections,
		Poem:       poem,
	}
	doc, err := r.pub.PublishPost(ctx, page)
	if err != nil {
		return err
	}
	ledger.Append(line)
	if err := ledger.Save(); err != nil {
		return err
	}
	if err := r.record(ctx, rep, 0, doc); err != nil {
		return err
	}
	if err := r.regenerateIndex(rep); err != nil {
		return err
	}

	r.post(ctx, rep, quote, sections, page.AuthorURL, poem, audioPath)

	return r.postsync(ctx, rep, fmt.Sprintf("Daily post %s: %s", date.Format("2006-01-02"), quote.AuthorName()))
}

// poemOfTheDay draws a poem from the bank and records its recitation. A
// failed recitation leaves the poem without audio.
func (r *Runner) poemOfTheDay(ctx context.Context) (*types.PoemRecord, string, error) {
	poems, err := publish.LoadPoems(r.cfg.RepoPath(r.cfg.Data.PoemsFile))
	if err != nil {
		return nil, "", err
	}
	if len(poems) == 0 {
		r.log.Debug("poem bank empty")
		return nil, "", nil
	}
	poem := poems[r.rng.IntN(len(poems))]
	if r.tts == nil {
		return &poem, "", nil
	}

	ref, abs := r.pub.AudioPath(poem.Title)
	if err := r.tts.Synthesize(ctx, Recitation(poem), abs); err != nil {
		r.log.Warn("recitation failed", "title", poem.Title, "error", err)
		return &poem, "", nil
	}
	poem.AudioRef = ref
	return &poem, abs, nil
}

// Recitation is the text read aloud for p: title, author, then the lines.
func Recitation(p types.PoemRecord) string {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteString(".\n")
	if name := p.AuthorName(); name != "" && name != types.UnknownAuthor {
		b.WriteString("By ")
		b.WriteString(name)
		b.WriteString(".\n\n")
	}
	b.WriteString(strings.Join(p.Lines, "\n"))
	return b.String()
}

// post sends the daily content to the channel. Posting failures are
// logged and do not fail the run.
func (r *Runner) post(ctx context.Context, rep *Report, q types.QuoteRecord, sections []types.VocabularySection, authorURL string, poem *types.PoemRecord, audioPath string) {
	if r.poster == nil {
		return
	}
	if err := r.poster.PostText(ctx, channel.QuoteMessage(q, sections, authorURL)); err != nil {
		r.log.Warn("posting quote failed", "error", err)
		return
	}
	rep.Posted = true
	if poem == nil || audioPath == "" {
		return
	}
	meta := channel.AudioMeta{
		Caption:   channel.PoemCaption(*poem),
		Title:     poem.Title,
		Performer: channel.PoemPerformer(*poem),
	}
	if err := r.poster.PostAudio(ctx, audioPath, meta); err != nil {
		r.log.Warn("posting recitation failed", "error", err)
	}
}
