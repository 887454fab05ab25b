// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gitrepo

import (
	"context"
	"os"
	"os/exec"
)

// executor abstracts command execution for testing.
type executor interface {
	// Run executes name with args in dir and returns combined output.
	Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	// Stable messages for output matching; never prompt for credentials.
	cmd.Env = append(os.Environ(), "LC_ALL=C", "GIT_TERMINAL_PROMPT=0", "GIT_EDITOR=true")
	return cmd.CombinedOutput()
}
