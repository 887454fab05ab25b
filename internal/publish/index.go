// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/quotesite/pkg/types"
)

// IndexEntry is one document listed on the index page.
type IndexEntry struct {
	Filename string
	Date     time.Time
	Label    string
}

// ListPosts returns the documents in the posts directory, newest first by
// the date in their filename. Files without a date prefix sort last.
func (p *Publisher) ListPosts() ([]IndexEntry, error) {
	dir := p.path(p.site.PostsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	ext := "." + p.renderer.Ext()
	var out []IndexEntry
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ext) || strings.HasPrefix(name, ".") {
			continue
		}
		out = append(out, parseIndexEntry(name, ext))
	}
	sortEntries(out)
	return out, nil
}

func parseIndexEntry(filename, ext string) IndexEntry {
	stem := strings.TrimSuffix(filename, ext)
	e := IndexEntry{Filename: filename, Label: stem}
	datePart, rest, _ := strings.Cut(stem, "_")
	if d, err := time.Parse(dateLayout, datePart); err == nil {
		e.Date = d
		e.Label = datePart
		if rest != "" {
			e.Label += " · " + strings.ReplaceAll(rest, "_", " ")
		}
	}
	return e
}

func sortEntries(entries []IndexEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Filename > b.Filename
	})
}

// RegenerateIndex lists the posts directory into the index template and
// writes the index page. A template without the posts placeholder is
// written unchanged with a warning.
func (p *Publisher) RegenerateIndex() (types.PublishedDocument, error) {
	entries, err := p.ListPosts()
	if err != nil {
		return types.PublishedDocument{}, err
	}
	tmplPath := p.path(p.site.IndexTemplate)
	tmpl, err := ReadTemplate(tmplPath)
	if err != nil {
		return types.PublishedDocument{}, err
	}

	postsHref := filepath.ToSlash(filepath.Clean(p.site.PostsDir))
	items := make([]string, 0, len(entries))
	for _, e := range entries {
		items = append(items, p.renderer.IndexEntry(postsHref+"/"+url.PathEscape(e.Filename), e.Label))
	}
	doc, missing := Fill(tmpl, []Substitution{{TokenPosts, strings.Join(items, "\n")}})
	p.warnMissing(p.site.IndexTemplate, missing)

	path := p.path(p.site.IndexFile)
	return p.write(filepath.Dir(path), filepath.Base(path), doc, types.DocumentIndex, p.now())
}
