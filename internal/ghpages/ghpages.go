// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ghpages requests a GitHub Pages rebuild after a push.
package ghpages

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/quotesite/internal/httputil"
	"github.com/pdiddy/quotesite/pkg/types"
)

// Trigger calls the Pages build endpoint of one repository.
type Trigger struct {
	client     *http.Client
	apiBase    string
	repo       string
	token      string
	maxRetries int
}

// New returns a Trigger for cfg.
func New(client *http.Client, cfg types.PagesConfig, maxRetries int) *Trigger {
	base := cfg.APIBase
	if base == "" {
		base = types.DefaultPagesAPIBase
	}
	return &Trigger{
		client:     client,
		apiBase:    strings.TrimRight(base, "/"),
		repo:       strings.Trim(cfg.Repo, "/"),
		token:      cfg.Token,
		maxRetries: maxRetries,
	}
}

// Enabled reports whether a repository and token are configured.
func (t *Trigger) Enabled() bool {
	return t.repo != "" && t.token != ""
}

// Rebuild requests a new Pages build. GitHub answers 201 Created.
func (t *Trigger) Rebuild(ctx context.Context) error {
	if !t.Enabled() {
		return fmt.Errorf("pages rebuild: repository and token are required")
	}
	url := fmt.Sprintf("%s/repos/%s/pages/builds", t.apiBase, t.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(nil))
	if err != nil {
		return fmt.Errorf("pages rebuild: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := httputil.DoWithRetry(ctx, t.client, req, t.maxRetries)
	if err != nil {
		return fmt.Errorf("pages rebuild: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pages rebuild: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}
