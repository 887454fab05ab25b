// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reposync reconciles the local site repository with its remote
// before and after publication. It is a small state machine over the typed
// git client: pre-publish brings the working tree up to date without losing
// local edits, post-publish commits and pushes, and any failure resets the
// tree to a known clean state before the error is surfaced.
//
// A Synchronizer is not safe for concurrent use and assumes a single writer
// per repository; callers serialize runs with a run lock.
package reposync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/quotesite/internal/gitrepo"
	"github.com/pdiddy/quotesite/internal/logger"
)

// State is the synchronizer state.
type State int

const (
	Clean State = iota
	Dirty
	Syncing
	Conflicted
	Synced
	Failed
)

func (s State) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	case Syncing:
		return "syncing"
	case Conflicted:
		return "conflicted"
	case Synced:
		return "synced"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Transition records one state change.
type Transition struct {
	From   State
	To     State
	Reason string
	At     time.Time
}

// SyncConflictError reports that the tree could not be reconciled with the
// remote. The run must not publish against it.
type SyncConflictError struct {
	Op        gitrepo.Op
	Conflicts []string
	Err       error
}

func (e *SyncConflictError) Error() string {
	msg := fmt.Sprintf("sync conflict during git %s", e.Op)
	if len(e.Conflicts) > 0 {
		msg += " (" + strings.Join(e.Conflicts, ", ") + ")"
	}
	return msg + ": " + e.Err.Error()
}

func (e *SyncConflictError) Unwrap() error { return e.Err }

// PushError reports a failed push. The local commit is kept; the next
// pre-publish pull reconciles it.
type PushError struct {
	Err error
}

func (e *PushError) Error() string { return "pushing published changes: " + e.Err.Error() }

func (e *PushError) Unwrap() error { return e.Err }

const stashMessage = "quotesite pre-publish"

// Synchronizer drives the git client through the publish lifecycle.
type Synchronizer struct {
	client  gitrepo.Client
	log     *logger.Logger
	now     func() time.Time
	state   State
	stashed bool
	history []Transition

	protected []string
	excluded  bool
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithProtected keeps paths matching the given info/exclude patterns out of
// every clean, stash and commit. Use it for run state that lives inside the
// working tree, such as the lock file and run history.
func WithProtected(patterns ...string) Option {
	return func(s *Synchronizer) { s.protected = append(s.protected, patterns...) }
}

// New returns a Synchronizer in the Clean state. A nil log discards.
func New(client gitrepo.Client, log *logger.Logger, opts ...Option) *Synchronizer {
	if log == nil {
		log = logger.Nop()
	}
	s := &Synchronizer{client: client, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// protect registers the protected patterns once per Synchronizer. It must
// succeed before anything removes untracked files.
func (s *Synchronizer) protect(ctx context.Context) error {
	if s.excluded {
		return nil
	}
	for _, p := range s.protected {
		res, err := s.client.Exclude(ctx, p)
		if err != nil {
			return fmt.Errorf("protecting %s: %w", p, err)
		}
		if !res.NoOp {
			s.log.Info("excluded run state from git", "pattern", p)
		}
	}
	s.excluded = true
	return nil
}

// State returns the current state.
func (s *Synchronizer) State() State { return s.state }

// Transitions returns every recorded state change in order.
func (s *Synchronizer) Transitions() []Transition {
	return append([]Transition(nil), s.history...)
}

func (s *Synchronizer) transition(to State, reason string) {
	t := Transition{From: s.state, To: to, Reason: reason, At: s.now()}
	s.history = append(s.history, t)
	s.state = to
	s.log.Info("sync state", "from", t.From.String(), "to", to.String(), "reason", reason)
}

// Recover returns the working tree to a clean state: any in-flight rebase or
// merge is aborted, tracked changes are reset and untracked files removed.
// Protected paths are excluded first and are never removed.
// It runs at the start of every daily run.
func (s *Synchronizer) Recover(ctx context.Context) error {
	if err := s.protect(ctx); err != nil {
		s.transition(Failed, "recovery failed")
		return fmt.Errorf("recovering working tree: %w", err)
	}
	var errs []error
	for _, op := range []func(context.Context) (gitrepo.Result, error){
		s.client.AbortRebase,
		s.client.AbortMerge,
		s.client.ResetHard,
		s.client.Clean,
	} {
		if _, err := op(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.transition(Failed, "recovery failed")
		return fmt.Errorf("recovering working tree: %w", err)
	}
	s.stashed = false
	s.transition(Clean, "recovered")
	return nil
}

// fail resets the tree after err and enters Failed. Uncommitted local
// state is discarded.
func (s *Synchronizer) fail(ctx context.Context, err error) error {
	s.log.Error("sync failed, resetting working tree", "error", err)
	var errs []error
	if _, rerr := s.client.ResetHard(ctx); rerr != nil {
		errs = append(errs, rerr)
	}
	if _, rerr := s.client.AbortRebase(ctx); rerr != nil {
		errs = append(errs, rerr)
	}
	if _, rerr := s.client.AbortMerge(ctx); rerr != nil {
		errs = append(errs, rerr)
	}
	s.transition(Failed, err.Error())
	if rerr := errors.Join(errs...); rerr != nil {
		s.log.Error("recovery after sync failure incomplete", "error", rerr)
		return errors.Join(err, fmt.Errorf("recovery: %w", rerr))
	}
	return err
}

// conflicts lists unmerged paths, best effort.
func (s *Synchronizer) conflicts(ctx context.Context) []string {
	st, err := s.client.Status(ctx)
	if err != nil {
		return nil
	}
	var paths []string
	for _, e := range st.Conflicts() {
		paths = append(paths, e.Path)
	}
	return paths
}

// PrePublish aborts leftover rebases and merges, stashes local changes,
// pulls with rebase and reapplies the stash. Any error means publication
// must not proceed; the tree has been reset when it is returned.
func (s *Synchronizer) PrePublish(ctx context.Context) error {
	if err := s.protect(ctx); err != nil {
		s.transition(Failed, "pre-publish failed")
		return fmt.Errorf("pre-publish: %w", err)
	}
	if _, err := s.client.AbortRebase(ctx); err != nil {
		return s.fail(ctx, fmt.Errorf("pre-publish: %w", err))
	}
	if _, err := s.client.AbortMerge(ctx); err != nil {
		return s.fail(ctx, fmt.Errorf("pre-publish: %w", err))
	}

	st, err := s.client.Status(ctx)
	if err != nil {
		return s.fail(ctx, fmt.Errorf("pre-publish: %w", err))
	}
	s.stashed = false
	if !st.Clean() {
		s.transition(Dirty, fmt.Sprintf("%d uncommitted changes", len(st.Entries)))
		res, err := s.client.Stash(ctx, stashMessage)
		if err != nil {
			return s.fail(ctx, fmt.Errorf("pre-publish: %w", err))
		}
		s.stashed = !res.NoOp
	}

	s.transition(Syncing, "pulling remote changes")
	if _, err := s.client.PullRebase(ctx); err != nil {
		conflicts := s.conflicts(ctx)
		if len(conflicts) > 0 {
			s.transition(Conflicted, "pull left unmerged paths")
		}
		return s.fail(ctx, &SyncConflictError{Op: gitrepo.OpPullRebase, Conflicts: conflicts, Err: err})
	}

	if s.stashed {
		if _, err := s.client.StashPop(ctx); err != nil {
			s.transition(Conflicted, "local changes conflict with remote")
			return s.fail(ctx, &SyncConflictError{Op: gitrepo.OpStashPop, Conflicts: s.conflicts(ctx), Err: err})
		}
		s.stashed = false
	}
	s.transition(Synced, "working tree up to date")
	return nil
}

// PostResult describes what PostPublish did.
type PostResult struct {
	Committed bool
	Pushed    bool
}

// PostPublish stages everything, commits when there is something to
// commit, and pushes. A push failure is returned as *PushError and leaves
// the commit in place.
func (s *Synchronizer) PostPublish(ctx context.Context, message string) (PostResult, error) {
	var res PostResult
	if _, err := s.client.AddAll(ctx); err != nil {
		return res, s.fail(ctx, fmt.Errorf("post-publish: %w", err))
	}
	st, err := s.client.Status(ctx)
	if err != nil {
		return res, s.fail(ctx, fmt.Errorf("post-publish: %w", err))
	}
	if st.Clean() {
		s.log.Info("nothing to commit")
	} else {
		if _, err := s.client.Commit(ctx, message); err != nil {
			return res, s.fail(ctx, fmt.Errorf("post-publish: %w", err))
		}
		res.Committed = true
	}

	s.transition(Syncing, "pushing")
	if _, err := s.client.Push(ctx); err != nil {
		s.transition(Failed, "push failed, commit kept")
		return res, &PushError{Err: err}
	}
	res.Pushed = true
	s.transition(Synced, "pushed")
	return res, nil
}
