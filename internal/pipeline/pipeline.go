// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the daily publication and the archive
// import. Each run holds the run lock, is wrapped by the repository
// synchronizer and is recorded in the history database.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/pdiddy/quotesite/internal/channel"
	"github.com/pdiddy/quotesite/internal/history"
	"github.com/pdiddy/quotesite/internal/logger"
	"github.com/pdiddy/quotesite/internal/publish"
	"github.com/pdiddy/quotesite/internal/reposync"
	"github.com/pdiddy/quotesite/internal/runlock"
	"github.com/pdiddy/quotesite/internal/speech"
	"github.com/pdiddy/quotesite/internal/vocab"
	"github.com/pdiddy/quotesite/pkg/types"
)

// Synchronizer wraps a run with repository synchronization.
type Synchronizer interface {
	Recover(ctx context.Context) error
	PrePublish(ctx context.Context) error
	PostPublish(ctx context.Context, message string) (reposync.PostResult, error)
}

// History records runs and the documents they publish.
type History interface {
	BeginRun(ctx context.Context, command string) (history.Run, error)
	FinishRun(ctx context.Context, id, status, detail string) error
	RecordDocument(ctx context.Context, runID string, messageID int64, doc types.PublishedDocument) error
	SeenMessage(ctx context.Context, id int64) (bool, error)
}

// PagesTrigger requests a rebuild of the hosted site.
type PagesTrigger interface {
	Rebuild(ctx context.Context) error
}

// Report summarizes one run.
type Report struct {
	RunID     string
	Command   string
	Status    string
	Quote     *types.QuoteRecord
	Poem      *types.PoemRecord
	Documents []types.PublishedDocument
	Index     *types.PublishedDocument

	// Import counters.
	Processed    int
	Skipped      int
	Unclassified int

	Posted    bool
	Committed bool
	Pushed    bool
	Rebuilt   bool
}

// Runner executes pipeline commands against one site.
type Runner struct {
	cfg    types.Config
	pub    *publish.Publisher
	sync   Synchronizer
	hist   History
	tts    speech.Synthesizer
	poster channel.Poster
	pages  PagesTrigger
	links  publish.LinkResolver
	rng    *rand.Rand
	log    *logger.Logger
	out    io.Writer
	now    func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithSynchronizer wraps runs with repository synchronization. Without one
// the site is published locally only.
func WithSynchronizer(s Synchronizer) Option { return func(r *Runner) { r.sync = s } }

// WithHistory records runs and documents.
func WithHistory(h History) Option { return func(r *Runner) { r.hist = h } }

// WithSynthesizer enables poem recitations.
func WithSynthesizer(s speech.Synthesizer) Option { return func(r *Runner) { r.tts = s } }

// WithPoster posts the daily content to the channel.
func WithPoster(p channel.Poster) Option { return func(r *Runner) { r.poster = p } }

// WithPages triggers a hosted-site rebuild after a successful push.
func WithPages(p PagesTrigger) Option { return func(r *Runner) { r.pages = p } }

// WithLinkResolver resolves author links shared by the page and the post.
func WithLinkResolver(l publish.LinkResolver) Option { return func(r *Runner) { r.links = l } }

// WithRand fixes the random source used for selection and quizzes.
func WithRand(rng *rand.Rand) Option { return func(r *Runner) { r.rng = rng } }

// WithLogger sets the structured logger.
func WithLogger(l *logger.Logger) Option { return func(r *Runner) { r.log = l } }

// WithOutput sets the writer for human progress lines.
func WithOutput(w io.Writer) Option { return func(r *Runner) { r.out = w } }

// WithClock overrides the clock that dates the daily post.
func WithClock(now func() time.Time) Option { return func(r *Runner) { r.now = now } }

// New returns a Runner publishing through pub with cfg.
func New(cfg types.Config, pub *publish.Publisher, opts ...Option) *Runner {
	r := &Runner{
		cfg: cfg,
		pub: pub,
		rng: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		log: logger.Nop(),
		out: io.Discard,
		now: time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// guard runs body under the run lock with history bookkeeping. Panics in
// body are returned as errors.
func (r *Runner) guard(ctx context.Context, command string, body func(context.Context, *Report) error) (rep Report, err error) {
	rep.Command = command
	lock, err := runlock.Acquire(r.cfg.RepoPath(r.cfg.Data.StateDir))
	if err != nil {
		return rep, err
	}
	defer lock.Release()

	if r.hist != nil {
		run, err := r.hist.BeginRun(ctx, command)
		if err != nil {
			return rep, err
		}
		rep.RunID = run.ID
	}
	log := r.log.With("run", rep.RunID, "command", command)
	log.Info("run started")

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s panicked: %v", command, p)
		}
		switch {
		case err != nil:
			rep.Status = history.StatusFailed
		case rep.Status == "":
			rep.Status = history.StatusSucceeded
		}
		detail := ""
		if err != nil {
			detail = err.Error()
			log.Error("run failed", "error", err)
		} else {
			log.Info("run finished", "status", rep.Status, "documents", len(rep.Documents))
		}
		if r.hist != nil && rep.RunID != "" {
			if herr := r.hist.FinishRun(context.WithoutCancel(ctx), rep.RunID, rep.Status, detail); herr != nil {
				log.Warn("recording run result", "error", herr)
			}
		}
	}()

	err = body(ctx, &rep)
	return rep, err
}

// presync recovers the tree and pulls the remote.
func (r *Runner) presync(ctx context.Context) error {
	if r.sync == nil {
		return nil
	}
	if err := r.sync.Recover(ctx); err != nil {
		return err
	}
	return r.sync.PrePublish(ctx)
}

// postsync commits and pushes, then triggers a Pages rebuild after a push.
func (r *Runner) postsync(ctx context.Context, rep *Report, message string) error {
	if r.sync != nil {
		res, err := r.sync.PostPublish(ctx, message)
		rep.Committed, rep.Pushed = res.Committed, res.Pushed
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Committed: %v, pushed: %v\n", res.Committed, res.Pushed)
	}
	if r.pages != nil && (r.sync == nil || rep.Pushed) {
		if err := r.pages.Rebuild(ctx); err != nil {
			r.log.Warn("pages rebuild failed", "error", err)
		} else {
			rep.Rebuilt = true
		}
	}
	return nil
}

func (r *Runner) record(ctx context.Context, rep *Report, messageID int64, doc types.PublishedDocument) error {
	rep.Documents = append(rep.Documents, doc)
	fmt.Fprintf(r.out, "Published %s %s\n", doc.Kind, doc.Path)
	if r.hist == nil {
		return nil
	}
	if err := r.hist.RecordDocument(ctx, rep.RunID, messageID, doc); err != nil {
		return fmt.Errorf("recording %s: %w", doc.Filename, err)
	}
	return nil
}

func (r *Runner) regenerateIndex(rep *Report) error {
	idx, err := r.pub.RegenerateIndex()
	if err != nil {
		return err
	}
	rep.Index = &idx
	return nil
}

// loadVocabulary reads the vocabulary store. A missing file yields an
// empty store.
func (r *Runner) loadVocabulary() (*vocab.Store, error) {
	path := r.cfg.RepoPath(r.cfg.Data.VocabFile)
	store, err := vocab.LoadStore(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.log.Warn("vocabulary file missing", "path", path)
			return vocab.NewStore(nil), nil
		}
		return nil, err
	}
	return store, nil
}

func (r *Runner) authorURL(ctx context.Context, q *types.QuoteRecord) string {
	if u := q.AuthorURL(); u != "" {
		return u
	}
	if r.links == nil || !q.HasKnownAuthor() {
		return ""
	}
	return r.links.AuthorURL(ctx, q.AuthorName())
}
