// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish renders extracted content into site documents, keeps the
// used-quotes ledger and regenerates the site index.
package publish

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pdiddy/quotesite/internal/logger"
	"github.com/pdiddy/quotesite/pkg/types"
)

// LinkResolver finds a reference URL for an author name.
type LinkResolver interface {
	AuthorURL(ctx context.Context, name string) string
}

// Publisher writes documents below a site root.
type Publisher struct {
	root     string
	site     types.SiteConfig
	renderer Renderer
	links    LinkResolver
	log      *logger.Logger
	now      func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLinkResolver resolves author URLs for authors without an embedded link.
func WithLinkResolver(r LinkResolver) Option {
	return func(p *Publisher) { p.links = r }
}

// WithLogger sets the logger used for placeholder warnings.
func WithLogger(l *logger.Logger) Option {
	return func(p *Publisher) { p.log = l }
}

// WithClock overrides the clock used for archive dates.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

// New returns a Publisher for the site rooted at root. Relative site paths
// are resolved against root.
func New(root string, site types.SiteConfig, opts ...Option) (*Publisher, error) {
	r, err := NewRenderer(site.Format)
	if err != nil {
		return nil, err
	}
	p := &Publisher{
		root:     root,
		site:     site,
		renderer: r,
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

func (p *Publisher) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.root, rel)
}

// PublishPost writes the daily post page for page.Quote into the posts
// directory. Historical pages are recorded as quote documents.
func (p *Publisher) PublishPost(ctx context.Context, page Page) (types.PublishedDocument, error) {
	if page.Quote == nil {
		return types.PublishedDocument{}, errors.New("publishing post: page has no quote")
	}
	kind := types.DocumentPost
	if page.Historical {
		kind = types.DocumentQuote
	}
	name := SanitizeName(page.Quote.AuthorName(), types.UnknownAuthor)
	return p.publishPage(ctx, page, p.site.PostsDir, name, kind)
}

// PublishPoem writes a page holding only page.Poem into the poems directory.
func (p *Publisher) PublishPoem(ctx context.Context, page Page) (types.PublishedDocument, error) {
	if page.Poem == nil {
		return types.PublishedDocument{}, errors.New("publishing poem: page has no poem")
	}
	page.Quote = nil
	name := SanitizeName(page.Poem.Title, untitled)
	return p.publishPage(ctx, page, p.site.PoemsDir, name, types.DocumentPoem)
}

const untitled = "Untitled"

func (p *Publisher) publishPage(ctx context.Context, page Page, dir, name string, kind types.DocumentKind) (types.PublishedDocument, error) {
	p.fillLinks(ctx, &page)
	if page.Historical {
		page.ArchivedOn = archivedOn(page.ArchivedOn, p.now)
	}
	outDir := p.path(dir)
	if page.Poem != nil && page.Poem.AudioRef != "" {
		page.AudioHref = p.relativeRef(outDir, page.Poem.AudioRef)
	}

	var tmpl string
	if p.site.Format != types.FormatMarkdown {
		var err error
		if tmpl, err = ReadTemplate(p.path(p.site.PostTemplate)); err != nil {
			return types.PublishedDocument{}, err
		}
	}
	doc, missing := p.renderer.RenderPage(page, tmpl)
	p.warnMissing(p.site.PostTemplate, missing)

	filename := DocumentFilename(page.Date, name, p.renderer.Ext())
	return p.write(outDir, filename, doc, kind, page.Date)
}

// PublishMedia writes an imported media message into the media directory.
func (p *Publisher) PublishMedia(m MediaPage) (types.PublishedDocument, error) {
	name := strconv.FormatInt(m.Message.ID, 10) + "_" + m.MediaKind()
	filename := DocumentFilename(m.Date, name, p.renderer.Ext())
	return p.write(p.path(p.site.MediaDir), filename, p.renderer.RenderMedia(m), types.DocumentMedia, m.Date)
}

func (p *Publisher) write(dir, filename, doc string, kind types.DocumentKind, date time.Time) (types.PublishedDocument, error) {
	path := filepath.Join(dir, filename)
	if err := writeFileAtomic(path, []byte(doc)); err != nil {
		return types.PublishedDocument{}, &TemplateIOError{Path: path, Err: err}
	}
	p.log.Debug("document written", "kind", kind, "path", path)
	return types.PublishedDocument{Kind: kind, Path: path, Filename: filename, Date: date}, nil
}

// fillLinks sets author URLs from embedded links, then from the resolver.
func (p *Publisher) fillLinks(ctx context.Context, page *Page) {
	if q := page.Quote; q != nil && page.AuthorURL == "" {
		page.AuthorURL = q.AuthorURL()
		if page.AuthorURL == "" && q.HasKnownAuthor() && p.links != nil {
			page.AuthorURL = p.links.AuthorURL(ctx, q.AuthorName())
		}
	}
	if poem := page.Poem; poem != nil && page.PoemAuthorURL == "" {
		page.PoemAuthorURL = poem.AuthorURL()
		name := poem.AuthorName()
		if page.PoemAuthorURL == "" && name != "" && name != types.UnknownAuthor && p.links != nil {
			page.PoemAuthorURL = p.links.AuthorURL(ctx, name)
		}
	}
}

// relativeRef converts a site-relative reference into a path relative to
// the directory of the page that embeds it.
func (p *Publisher) relativeRef(pageDir, ref string) string {
	rel, err := filepath.Rel(pageDir, p.path(ref))
	if err != nil {
		return ref
	}
	return filepath.ToSlash(rel)
}

func (p *Publisher) warnMissing(tmpl string, missing []string) {
	for _, token := range missing {
		p.log.Warn("template placeholder missing", "template", tmpl, "placeholder", token)
	}
}

// AudioPath returns the site-relative and absolute paths for the recitation
// of the poem titled title.
func (p *Publisher) AudioPath(title string) (ref, abs string) {
	name := SanitizeName(title, untitled)
	ref = filepath.ToSlash(filepath.Join(p.site.AudioDir, spaceToUnderscore(name)+".mp3"))
	return ref, p.path(ref)
}

func spaceToUnderscore(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r == ' ' || r == '\t' {
			out[i] = '_'
		}
	}
	return string(out)
}

// String describes the publisher for progress output.
func (p *Publisher) String() string {
	return fmt.Sprintf("%s site at %s", p.renderer.Ext(), p.root)
}
