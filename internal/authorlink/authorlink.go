// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package authorlink finds a reference page for a quote or poem author. A
// Wikipedia article is used when it exists; otherwise, or when Wikipedia
// cannot be reached, the link falls back to a web search for the name.
package authorlink

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/pdiddy/quotesite/internal/httputil"
	"github.com/pdiddy/quotesite/internal/logger"
)

const (
	DefaultWikipediaBase = "https://en.wikipedia.org/wiki/"
	DefaultSearchBase    = "https://www.google.com/search?q="
)

// Resolver resolves author names to URLs. It is safe for concurrent use
// and caches each name for its lifetime.
type Resolver struct {
	client     *http.Client
	wikiBase   string
	searchBase string
	maxRetries int
	log        *logger.Logger

	mu    sync.Mutex
	cache map[string]string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBaseURLs overrides the Wikipedia and search URL prefixes.
func WithBaseURLs(wiki, search string) Option {
	return func(r *Resolver) {
		r.wikiBase = wiki
		r.searchBase = search
	}
}

// WithMaxRetries sets the retry count for rate-limited requests.
func WithMaxRetries(n int) Option {
	return func(r *Resolver) { r.maxRetries = n }
}

// New returns a Resolver that checks Wikipedia with client. The client's
// timeout bounds every check.
func New(client *http.Client, log *logger.Logger, opts ...Option) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	r := &Resolver{
		client:     client,
		wikiBase:   DefaultWikipediaBase,
		searchBase: DefaultSearchBase,
		log:        log,
		cache:      make(map[string]string),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// WikipediaURL returns the article URL Wikipedia would use for name.
func (r *Resolver) WikipediaURL(name string) string {
	title := strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	return r.wikiBase + url.PathEscape(title)
}

// SearchURL returns the search URL for name.
func (r *Resolver) SearchURL(name string) string {
	return r.searchBase + url.QueryEscape(strings.TrimSpace(name))
}

// AuthorURL returns the Wikipedia article for name when it exists and the
// search URL otherwise. It never fails; remote errors are logged.
func (r *Resolver) AuthorURL(ctx context.Context, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	r.mu.Lock()
	cached, ok := r.cache[name]
	r.mu.Unlock()
	if ok {
		return cached
	}

	link := r.SearchURL(name)
	wiki := r.WikipediaURL(name)
	switch err := r.check(ctx, wiki); {
	case err == nil:
		link = wiki
	case ctx.Err() != nil:
		// Cancelled runs are not cached.
		return link
	default:
		r.log.Warn("author link check failed, using search", "author", name, "error", err)
	}

	r.mu.Lock()
	r.cache[name] = link
	r.mu.Unlock()
	return link
}

// check reports nil when u answers 200 OK.
func (r *Resolver) check(ctx context.Context, u string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := httputil.DoWithRetry(ctx, r.client, req, r.maxRetries)
	if err != nil {
		return fmt.Errorf("remote unavailable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d", u, resp.StatusCode)
	}
	return nil
}
