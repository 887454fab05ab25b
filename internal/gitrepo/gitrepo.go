// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gitrepo is a typed client for the git operations the repository
// synchronizer needs. Each operation runs the git binary with a bounded
// timeout and returns its captured output; failures are *OpError values
// that keep the output for diagnosis.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/quotesite/pkg/types"
)

// Op names a git operation.
type Op string

const (
	OpAbortRebase Op = "rebase --abort"
	OpAbortMerge  Op = "merge --abort"
	OpStatus      Op = "status"
	OpStash       Op = "stash push"
	OpStashPop    Op = "stash pop"
	OpPullRebase  Op = "pull --rebase"
	OpAddAll      Op = "add --all"
	OpCommit      Op = "commit"
	OpPush        Op = "push"
	OpResetHard   Op = "reset --hard"
	OpClean       Op = "clean"
	OpCheckRepo   Op = "rev-parse"
	OpExclude     Op = "info/exclude"
)

// Result is the outcome of a successful operation.
type Result struct {
	Op     Op
	Output string

	// NoOp is set when there was nothing to do (no rebase to abort, no
	// changes to stash or commit).
	NoOp bool
}

// OpError is a failed git operation.
type OpError struct {
	Op     Op
	Output string
	Err    error
}

func (e *OpError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("git %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("git %s: %v: %s", e.Op, e.Err, out)
}

func (e *OpError) Unwrap() error { return e.Err }

// Client is the set of typed repository operations.
type Client interface {
	AbortRebase(ctx context.Context) (Result, error)
	AbortMerge(ctx context.Context) (Result, error)
	Status(ctx context.Context) (Status, error)
	Stash(ctx context.Context, message string) (Result, error)
	StashPop(ctx context.Context) (Result, error)
	PullRebase(ctx context.Context) (Result, error)
	AddAll(ctx context.Context) (Result, error)
	Commit(ctx context.Context, message string) (Result, error)
	Push(ctx context.Context) (Result, error)
	ResetHard(ctx context.Context) (Result, error)
	Clean(ctx context.Context) (Result, error)
	Exclude(ctx context.Context, pattern string) (Result, error)
}

// Repo runs git against one working tree.
type Repo struct {
	dir     string
	bin     string
	remote  string
	branch  string
	timeout time.Duration
	config  []string
	exec    executor
}

var _ Client = (*Repo)(nil)

// New returns a Repo for cfg. cfg should already carry defaults.
func New(cfg types.GitConfig) *Repo {
	return newRepo(cfg, osExecutor{})
}

func newRepo(cfg types.GitConfig, exec executor) *Repo {
	r := &Repo{
		dir:     cfg.RepoDir,
		bin:     cfg.Binary,
		remote:  cfg.Remote,
		branch:  cfg.Branch,
		timeout: cfg.Timeout,
		exec:    exec,
	}
	if r.bin == "" {
		r.bin = "git"
	}
	if cfg.AuthorName != "" {
		r.config = append(r.config, "-c", "user.name="+cfg.AuthorName)
	}
	if cfg.AuthorEmail != "" {
		r.config = append(r.config, "-c", "user.email="+cfg.AuthorEmail)
	}
	return r
}

// Dir returns the working tree directory.
func (r *Repo) Dir() string { return r.dir }

func (r *Repo) run(ctx context.Context, op Op, args ...string) (Result, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	full := make([]string, 0, len(r.config)+len(args))
	full = append(full, r.config...)
	full = append(full, args...)

	out, err := r.exec.Run(ctx, r.dir, r.bin, full...)
	res := Result{Op: op, Output: string(out)}
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		return res, &OpError{Op: op, Output: res.Output, Err: err}
	}
	return res, nil
}

// abortIfInProgress runs an abort command and treats "nothing to abort"
// failures as a no-op.
func (r *Repo) abortIfInProgress(ctx context.Context, op Op, idle []string, args ...string) (Result, error) {
	res, err := r.run(ctx, op, args...)
	if err == nil {
		return res, nil
	}
	lower := strings.ToLower(res.Output)
	for _, s := range idle {
		if strings.Contains(lower, s) {
			return Result{Op: op, Output: res.Output, NoOp: true}, nil
		}
	}
	return res, err
}

// AbortRebase aborts an in-progress rebase. It is a no-op when none is.
func (r *Repo) AbortRebase(ctx context.Context) (Result, error) {
	return r.abortIfInProgress(ctx, OpAbortRebase, []string{"no rebase in progress"}, "rebase", "--abort")
}

// AbortMerge aborts an in-progress merge. It is a no-op when none is.
func (r *Repo) AbortMerge(ctx context.Context) (Result, error) {
	return r.abortIfInProgress(ctx, OpAbortMerge, []string{"there is no merge to abort", "merge_head missing"}, "merge", "--abort")
}

// Status returns the typed working tree status.
func (r *Repo) Status(ctx context.Context) (Status, error) {
	res, err := r.run(ctx, OpStatus, "status", "--porcelain=v1", "-z", "--untracked-files=all")
	if err != nil {
		return Status{Result: res}, err
	}
	entries, err := parseStatus(res.Output)
	if err != nil {
		return Status{Result: res}, &OpError{Op: OpStatus, Output: res.Output, Err: err}
	}
	return Status{Result: res, Entries: entries}, nil
}

// Stash saves uncommitted changes, untracked files included. NoOp is set
// when there was nothing to save.
func (r *Repo) Stash(ctx context.Context, message string) (Result, error) {
	res, err := r.run(ctx, OpStash, "stash", "push", "--include-untracked", "-m", message)
	if err != nil {
		return res, err
	}
	res.NoOp = strings.Contains(res.Output, "No local changes to save")
	return res, nil
}

// StashPop reapplies the most recent stash.
func (r *Repo) StashPop(ctx context.Context) (Result, error) {
	return r.run(ctx, OpStashPop, "stash", "pop")
}

// PullRebase fetches the configured branch and rebases local commits onto it.
func (r *Repo) PullRebase(ctx context.Context) (Result, error) {
	return r.run(ctx, OpPullRebase, "pull", "--rebase", r.remote, r.branch)
}

// AddAll stages every change, deletions and untracked files included.
func (r *Repo) AddAll(ctx context.Context) (Result, error) {
	return r.run(ctx, OpAddAll, "add", "--all")
}

// Commit records the staged changes.
func (r *Repo) Commit(ctx context.Context, message string) (Result, error) {
	return r.run(ctx, OpCommit, "commit", "-m", message)
}

// Push publishes HEAD to the configured branch.
func (r *Repo) Push(ctx context.Context) (Result, error) {
	return r.run(ctx, OpPush, "push", r.remote, "HEAD:"+r.branch)
}

// ResetHard discards uncommitted changes to tracked files.
func (r *Repo) ResetHard(ctx context.Context) (Result, error) {
	return r.run(ctx, OpResetHard, "reset", "--hard", "HEAD")
}

// Clean removes untracked files and directories. Ignored files stay.
func (r *Repo) Clean(ctx context.Context) (Result, error) {
	return r.run(ctx, OpClean, "clean", "-fd")
}

// Exclude adds pattern to the repository's info/exclude file unless it is
// already listed. Excluded paths survive Clean and are never stashed or
// committed. The result is a no-op when the pattern was present.
func (r *Repo) Exclude(ctx context.Context, pattern string) (Result, error) {
	res, err := r.run(ctx, OpExclude, "rev-parse", "--git-path", "info/exclude")
	if err != nil {
		return res, err
	}
	path := strings.TrimSpace(res.Output)
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.dir, path)
	}
	res.Output = path

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return res, &OpError{Op: OpExclude, Err: err}
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == pattern {
			res.NoOp = true
			return res, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return res, &OpError{Op: OpExclude, Err: err}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return res, &OpError{Op: OpExclude, Err: err}
	}
	line := pattern + "\n"
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		line = "\n" + line
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return res, &OpError{Op: OpExclude, Err: err}
	}
	if err := f.Close(); err != nil {
		return res, &OpError{Op: OpExclude, Err: err}
	}
	return res, nil
}

// ExcludePattern returns the anchored info/exclude pattern for dir when it
// lies inside repoDir. It reports false for the repository root itself and
// for paths outside it.
func ExcludePattern(repoDir, dir string) (string, bool) {
	root, err := filepath.Abs(repoDir)
	if err != nil {
		return "", false
	}
	target, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return "/" + filepath.ToSlash(rel) + "/", true
}

// CheckRepo verifies that the directory is inside a git working tree.
func (r *Repo) CheckRepo(ctx context.Context) error {
	res, err := r.run(ctx, OpCheckRepo, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return err
	}
	if strings.TrimSpace(res.Output) != "true" {
		return &OpError{Op: OpCheckRepo, Output: res.Output, Err: fmt.Errorf("%s is not a working tree", r.dir)}
	}
	return nil
}
