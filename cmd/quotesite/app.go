package main

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/quotesite/internal/authorlink"
	"github.com/pdiddy/quotesite/internal/channel"
	"github.com/pdiddy/quotesite/internal/ghpages"
	"github.com/pdiddy/quotesite/internal/gitrepo"
	"github.com/pdiddy/quotesite/internal/history"
	"github.com/pdiddy/quotesite/internal/httputil"
	"github.com/pdiddy/quotesite/internal/pipeline"
	"github.com/pdiddy/quotesite/internal/publish"
	"github.com/pdiddy/quotesite/internal/reposync"
	"github.com/pdiddy/quotesite/internal/speech"
)

// app holds the collaborators of one invocation.
type app struct {
	runner *pipeline.Runner
	hist   *history.Store
}

func (a *app) Close() error {
	return a.hist.Close()
}

// newPublisher builds a publisher for commands that only touch the index.
func newPublisher() (*publish.Publisher, error) {
	return publish.New(cfg.Git.RepoDir, cfg.Site, publish.WithLogger(log))
}

// newApp validates cfg and wires every collaborator the pipeline needs.
func newApp(ctx context.Context, out io.Writer) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	client := httputil.NewClient(cfg.HTTP)
	links := authorlink.New(client, log, authorlink.WithMaxRetries(cfg.HTTP.MaxRetries))
	pub, err := publish.New(cfg.Git.RepoDir, cfg.Site,
		publish.WithLinkResolver(links),
		publish.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	hist, err := history.Open(cfg.RepoPath(cfg.Data.StateDir))
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{
		pipeline.WithHistory(hist),
		pipeline.WithLinkResolver(links),
		pipeline.WithLogger(log),
		pipeline.WithOutput(out),
	}

	if cfg.Git.Disabled {
		log.Info("git synchronization disabled")
	} else {
		repo := gitrepo.New(cfg.Git)
		if err := repo.CheckRepo(ctx); err != nil {
			hist.Close()
			return nil, err
		}
		var syncOpts []reposync.Option
		if p, ok := gitrepo.ExcludePattern(cfg.Git.RepoDir, cfg.RepoPath(cfg.Data.StateDir)); ok {
			syncOpts = append(syncOpts, reposync.WithProtected(p))
		}
		opts = append(opts, pipeline.WithSynchronizer(reposync.New(repo, log, syncOpts...)))
	}

	tts, err := speech.New(ctx, cfg.Speech)
	if err != nil {
		hist.Close()
		return nil, fmt.Errorf("configuring speech: %w", err)
	}
	if tts != nil {
		opts = append(opts, pipeline.WithSynthesizer(tts))
	}

	if cfg.Telegram.Post {
		bot, err := channel.NewBot(cfg.Telegram, channel.DefaultBotFactory)
		if err != nil {
			hist.Close()
			return nil, fmt.Errorf("connecting to telegram: %w", err)
		}
		opts = append(opts, pipeline.WithPoster(channel.NewTelegram(bot, cfg.Telegram.ChannelID, log)))
	}

	if pages := ghpages.New(client, cfg.Pages, cfg.HTTP.MaxRetries); pages.Enabled() {
		opts = append(opts, pipeline.WithPages(pages))
	}

	return &app{runner: pipeline.New(cfg, pub, opts...), hist: hist}, nil
}
