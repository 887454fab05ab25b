// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reposync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/quotesite/internal/gitrepo"
)

// fakeClient scripts failures per operation and records the call order.
type fakeClient struct {
	calls     []gitrepo.Op
	fail      map[gitrepo.Op]error
	status    []gitrepo.Status
	stashNoOp bool
	excluded  []string
}

func (f *fakeClient) do(op gitrepo.Op) (gitrepo.Result, error) {
	f.calls = append(f.calls, op)
	if err := f.fail[op]; err != nil {
		return gitrepo.Result{Op: op}, &gitrepo.OpError{Op: op, Err: err}
	}
	return gitrepo.Result{Op: op}, nil
}

func (f *fakeClient) AbortRebase(context.Context) (gitrepo.Result, error) {
	return f.do(gitrepo.OpAbortRebase)
}
func (f *fakeClient) AbortMerge(context.Context) (gitrepo.Result, error) {
	return f.do(gitrepo.OpAbortMerge)
}
func (f *fakeClient) Status(context.Context) (gitrepo.Status, error) {
	res, err := f.do(gitrepo.OpStatus)
	if err != nil {
		return gitrepo.Status{Result: res}, err
	}
	if len(f.status) == 0 {
		return gitrepo.Status{Result: res}, nil
	}
	st := f.status[0]
	if len(f.status) > 1 {
		f.status = f.status[1:]
	}
	return st, nil
}
func (f *fakeClient) Stash(context.Context, string) (gitrepo.Result, error) {
	res, err := f.do(gitrepo.OpStash)
	res.NoOp = f.stashNoOp
	return res, err
}
func (f *fakeClient) StashPop(context.Context) (gitrepo.Result, error) {
	return f.do(gitrepo.OpStashPop)
}
func (f *fakeClient) PullRebase(context.Context) (gitrepo.Result, error) {
	return f.do(gitrepo.OpPullRebase)
}
func (f *fakeClient) AddAll(context.Context) (gitrepo.Result, error) { return f.do(gitrepo.OpAddAll) }
func (f *fakeClient) Commit(context.Context, string) (gitrepo.Result, error) {
	return f.do(gitrepo.OpCommit)
}
func (f *fakeClient) Push(context.Context) (gitrepo.Result, error)      { return f.do(gitrepo.OpPush) }
func (f *fakeClient) ResetHard(context.Context) (gitrepo.Result, error) { return f.do(gitrepo.OpResetHard) }
func (f *fakeClient) Clean(context.Context) (gitrepo.Result, error)     { return f.do(gitrepo.OpClean) }
func (f *fakeClient) Exclude(_ context.Context, pattern string) (gitrepo.Result, error) {
	f.excluded = append(f.excluded, pattern)
	return f.do(gitrepo.OpExclude)
}

func dirty(entries ...gitrepo.StatusEntry) gitrepo.Status {
	if len(entries) == 0 {
		entries = []gitrepo.StatusEntry{{Index: ' ', Worktree: 'M', Path: "used_quotes.json"}}
	}
	return gitrepo.Status{Entries: entries}
}

var errExit = errors.New("exit status 1")

func TestPrePublishCleanTree(t *testing.T) {
	fc := &fakeClient{}
	s := New(fc, nil)

	require.NoError(t, s.PrePublish(context.Background()))
	assert.Equal(t, Synced, s.State())
	assert.Equal(t, []gitrepo.Op{
		gitrepo.OpAbortRebase, gitrepo.OpAbortMerge, gitrepo.OpStatus, gitrepo.OpPullRebase,
	}, fc.calls)
}

func TestPrePublishDirtyTreeStashesAndRestores(t *testing.T) {
	fc := &fakeClient{status: []gitrepo.Status{dirty()}}
	s := New(fc, nil)

	require.NoError(t, s.PrePublish(context.Background()))
	assert.Equal(t, []gitrepo.Op{
		gitrepo.OpAbortRebase, gitrepo.OpAbortMerge, gitrepo.OpStatus,
		gitrepo.OpStash, gitrepo.OpPullRebase, gitrepo.OpStashPop,
	}, fc.calls)

	var states []State
	for _, tr := range s.Transitions() {
		states = append(states, tr.To)
	}
	assert.Equal(t, []State{Dirty, Syncing, Synced}, states)
}

func TestPrePublishStashNothingSkipsPop(t *testing.T) {
	fc := &fakeClient{status: []gitrepo.Status{dirty()}, stashNoOp: true}
	require.NoError(t, New(fc, nil).PrePublish(context.Background()))
	assert.NotContains(t, fc.calls, gitrepo.OpStashPop)
}

func TestPrePublishPullFailureIsFatalAndRecovers(t *testing.T) {
	fc := &fakeClient{fail: map[gitrepo.Op]error{gitrepo.OpPullRebase: errExit}}
	s := New(fc, nil)

	err := s.PrePublish(context.Background())
	var conflict *SyncConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, gitrepo.OpPullRebase, conflict.Op)
	assert.ErrorIs(t, err, errExit)

	assert.Equal(t, Failed, s.State())
	tail := fc.calls[len(fc.calls)-3:]
	assert.Equal(t, []gitrepo.Op{gitrepo.OpResetHard, gitrepo.OpAbortRebase, gitrepo.OpAbortMerge}, tail)
}

func TestPrePublishStashPopConflict(t *testing.T) {
	unmerged := gitrepo.StatusEntry{Index: 'U', Worktree: 'U', Path: "posts/index.html"}
	fc := &fakeClient{
		status: []gitrepo.Status{dirty(), dirty(unmerged)},
		fail:   map[gitrepo.Op]error{gitrepo.OpStashPop: errExit},
	}
	s := New(fc, nil)

	err := s.PrePublish(context.Background())
	var conflict *SyncConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, gitrepo.OpStashPop, conflict.Op)
	assert.Equal(t, []string{"posts/index.html"}, conflict.Conflicts)

	var states []State
	for _, tr := range s.Transitions() {
		states = append(states, tr.To)
	}
	assert.Equal(t, []State{Dirty, Syncing, Conflicted, Failed}, states)
}

func TestPrePublishRecoveryFailureIsJoined(t *testing.T) {
	fc := &fakeClient{fail: map[gitrepo.Op]error{
		gitrepo.OpPullRebase: errExit,
		gitrepo.OpResetHard:  errors.New("index locked"),
	}}
	err := New(fc, nil).PrePublish(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index locked")
	var conflict *SyncConflictError
	assert.True(t, errors.As(err, &conflict))
}

func TestPostPublishCommitsAndPushes(t *testing.T) {
	fc := &fakeClient{status: []gitrepo.Status{dirty()}}
	s := New(fc, nil)

	res, err := s.PostPublish(context.Background(), "Daily post 2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, PostResult{Committed: true, Pushed: true}, res)
	assert.Equal(t, []gitrepo.Op{gitrepo.OpAddAll, gitrepo.OpStatus, gitrepo.OpCommit, gitrepo.OpPush}, fc.calls)
	assert.Equal(t, Synced, s.State())
}

func TestPostPublishNothingToCommit(t *testing.T) {
	fc := &fakeClient{}
	res, err := New(fc, nil).PostPublish(context.Background(), "msg")
	require.NoError(t, err)
	assert.False(t, res.Committed)
	assert.True(t, res.Pushed)
	assert.NotContains(t, fc.calls, gitrepo.OpCommit)
}

func TestPostPublishPushFailureKeepsCommit(t *testing.T) {
	fc := &fakeClient{
		status: []gitrepo.Status{dirty()},
		fail:   map[gitrepo.Op]error{gitrepo.OpPush: errExit},
	}
	s := New(fc, nil)

	res, err := s.PostPublish(context.Background(), "msg")
	var pushErr *PushError
	require.True(t, errors.As(err, &pushErr))
	assert.True(t, res.Committed)
	assert.False(t, res.Pushed)
	assert.NotContains(t, fc.calls, gitrepo.OpResetHard, "the commit must survive a push failure")
	assert.Equal(t, Failed, s.State())
}

func TestRecover(t *testing.T) {
	fc := &fakeClient{}
	s := New(fc, nil)
	require.NoError(t, s.Recover(context.Background()))
	assert.Equal(t, []gitrepo.Op{gitrepo.OpAbortRebase, gitrepo.OpAbortMerge, gitrepo.OpResetHard, gitrepo.OpClean}, fc.calls)
	assert.Equal(t, Clean, s.State())

	fc = &fakeClient{fail: map[gitrepo.Op]error{gitrepo.OpClean: errExit}}
	s = New(fc, nil)
	assert.ErrorIs(t, s.Recover(context.Background()), errExit)
	assert.Equal(t, Failed, s.State())
}

func TestProtectedPathsExcludedBeforeCleaning(t *testing.T) {
	fc := &fakeClient{}
	s := New(fc, nil, WithProtected("/.quotesite/"))
	ctx := context.Background()
	require.NoError(t, s.Recover(ctx))
	require.NoError(t, s.PrePublish(ctx))
	require.NoError(t, s.Recover(ctx))

	assert.Equal(t, []string{"/.quotesite/"}, fc.excluded, "registered once per synchronizer")
	assert.Equal(t, gitrepo.OpExclude, fc.calls[0])

	fc = &fakeClient{fail: map[gitrepo.Op]error{gitrepo.OpExclude: errExit}}
	s = New(fc, nil, WithProtected("/.quotesite/"))
	assert.ErrorIs(t, s.Recover(ctx), errExit)
	assert.NotContains(t, fc.calls, gitrepo.OpClean, "nothing is cleaned while run state is unprotected")
	assert.Equal(t, Failed, s.State())
	assert.ErrorIs(t, s.PrePublish(ctx), errExit)
	assert.NotContains(t, fc.calls, gitrepo.OpStash)
}
