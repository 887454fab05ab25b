// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Placeholder tokens substituted into template documents.
const (
	TokenQuoteSection = "<!-- QUOTE_SECTION -->"
	TokenVocabSection = "<!-- VOCAB_QUIZ_SECTION -->"
	TokenPoemSection  = "<!-- POEM_SECTION -->"
	TokenHistorical   = "<!-- HISTORICAL_MARKER -->"
	TokenPosts        = "<!-- POSTS_PLACEHOLDER -->"
	TokenDate         = "{{DATE}}"
	TokenYear         = "{{YEAR}}"
)

//go:embed templates/*
var starterTemplates embed.FS

// TemplateIOError reports a template document that could not be read or a
// rendered document that could not be written.
type TemplateIOError struct {
	Path string
	Err  error
}

func (e *TemplateIOError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Path, e.Err)
}

func (e *TemplateIOError) Unwrap() error { return e.Err }

// ReadTemplate loads a template document.
func ReadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &TemplateIOError{Path: path, Err: err}
	}
	return string(data), nil
}

// Substitution is one token and the text that replaces it.
type Substitution struct {
	Token string
	Value string
}

// Fill replaces each token in tmpl. Tokens absent from tmpl are returned
// in missing so the caller can warn; they never fail the render.
func Fill(tmpl string, subs []Substitution) (out string, missing []string) {
	out = tmpl
	for _, s := range subs {
		if !strings.Contains(out, s.Token) {
			missing = append(missing, s.Token)
			continue
		}
		out = strings.ReplaceAll(out, s.Token, s.Value)
	}
	return out, missing
}

// InitSite writes the starter templates and a .gitignore for the run state
// into dir, skipping files that already exist. It returns the paths it
// created.
func InitSite(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	entries, err := fs.ReadDir(starterTemplates, "templates")
	if err != nil {
		return nil, err
	}
	var created []string
	for _, e := range entries {
		name := e.Name()
		if name == "gitignore" {
			name = ".gitignore"
		}
		dst := filepath.Join(dir, name)
		if _, err := os.Stat(dst); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return created, fmt.Errorf("checking %s: %w", dst, err)
		}
		data, err := starterTemplates.ReadFile("templates/" + e.Name())
		if err != nil {
			return created, err
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return created, fmt.Errorf("writing %s: %w", dst, err)
		}
		created = append(created, dst)
	}
	return created, nil
}
