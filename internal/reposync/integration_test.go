// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reposync

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/quotesite/internal/gitrepo"
	"github.com/pdiddy/quotesite/internal/runlock"
	"github.com/pdiddy/quotesite/pkg/types"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	full := append([]string{"-c", "user.name=Test", "-c", "user.email=test@example.com", "-c", "init.defaultBranch=main"}, args...)
	cmd := exec.Command("git", full...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_NOSYSTEM=1", "LC_ALL=C")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return string(out)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// setupRepos returns a bare remote, a second clone standing in for another
// writer, and the local working tree under test.
func setupRepos(t *testing.T) (remote, other, local string) {
	t.Helper()
	root := t.TempDir()
	remote = filepath.Join(root, "remote.git")
	other = filepath.Join(root, "other")
	local = filepath.Join(root, "local")

	require.NoError(t, os.MkdirAll(remote, 0o755))
	git(t, remote, "init", "--bare")
	git(t, remote, "symbolic-ref", "HEAD", "refs/heads/main")

	git(t, root, "clone", remote, other)
	writeFile(t, filepath.Join(other, "used_quotes.json"), "[]\n")
	writeFile(t, filepath.Join(other, "posts", "2024-01-01_Seneca.html"), "seneca\n")
	git(t, other, "add", "--all")
	git(t, other, "commit", "-m", "initial")
	git(t, other, "push", "origin", "HEAD:main")

	git(t, root, "clone", remote, local)
	return remote, other, local
}

func localRepo(local string) *gitrepo.Repo {
	cfg := types.Config{Git: types.GitConfig{
		RepoDir:     local,
		Timeout:     time.Minute,
		AuthorName:  "Quote Bot",
		AuthorEmail: "bot@example.com",
	}}.WithDefaults().Git
	return gitrepo.New(cfg)
}

func TestPrePublishMergesRemoteAndKeepsLocalChanges(t *testing.T) {
	requireGit(t)
	remote, other, local := setupRepos(t)

	// Remote gains a commit the local tree has not seen.
	writeFile(t, filepath.Join(other, "posts", "2024-01-02_Oscar Wilde.html"), "wilde\n")
	git(t, other, "add", "--all")
	git(t, other, "commit", "-m", "remote post")
	git(t, other, "push", "origin", "HEAD:main")

	// Local tree has uncommitted edits, tracked and untracked.
	writeFile(t, filepath.Join(local, "used_quotes.json"), "[\"Be yourself\"]\n")
	writeFile(t, filepath.Join(local, "posts", "2024-01-03_Aristotle.html"), "aristotle\n")

	s := New(localRepo(local), nil)
	require.NoError(t, s.PrePublish(context.Background()))
	assert.Equal(t, Synced, s.State())

	_, err := os.Stat(filepath.Join(local, "posts", "2024-01-02_Oscar Wilde.html"))
	assert.NoError(t, err, "remote commit incorporated")

	ledger, err := os.ReadFile(filepath.Join(local, "used_quotes.json"))
	require.NoError(t, err)
	assert.Equal(t, "[\"Be yourself\"]\n", string(ledger))
	_, err = os.Stat(filepath.Join(local, "posts", "2024-01-03_Aristotle.html"))
	assert.NoError(t, err, "untracked file restored")

	for _, name := range []string{"used_quotes.json", "posts/2024-01-03_Aristotle.html"} {
		data, err := os.ReadFile(filepath.Join(local, name))
		require.NoError(t, err)
		assert.NotContains(t, string(data), "<<<<<<<")
	}
	assert.Empty(t, strings.TrimSpace(git(t, local, "stash", "list")))

	res, err := s.PostPublish(context.Background(), "Daily post")
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.True(t, res.Pushed)

	log := git(t, remote, "log", "--format=%s", "main")
	assert.Equal(t, []string{"Daily post", "remote post", "initial"}, strings.Split(strings.TrimSpace(log), "\n"))
}

func TestPrePublishConflictResetsTree(t *testing.T) {
	requireGit(t)
	_, other, local := setupRepos(t)

	writeFile(t, filepath.Join(other, "used_quotes.json"), "[\"remote\"]\n")
	git(t, other, "commit", "-am", "remote ledger")
	git(t, other, "push", "origin", "HEAD:main")

	writeFile(t, filepath.Join(local, "used_quotes.json"), "[\"local\"]\n")

	s := New(localRepo(local), nil)
	err := s.PrePublish(context.Background())
	var conflict *SyncConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, gitrepo.OpStashPop, conflict.Op)
	assert.Equal(t, Failed, s.State())

	st, err := localRepo(local).Status(context.Background())
	require.NoError(t, err)
	assert.Empty(t, st.Conflicts(), "recovery leaves no unmerged paths")
	data, err := os.ReadFile(filepath.Join(local, "used_quotes.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "<<<<<<<")
}

func TestRecoverKeepsRunStateAndLock(t *testing.T) {
	requireGit(t)
	_, _, local := setupRepos(t)
	stateDir := filepath.Join(local, ".quotesite")
	ctx := context.Background()

	for run := 0; run < 2; run++ {
		lock, err := runlock.Acquire(stateDir)
		require.NoError(t, err, "run %d", run)
		if run == 0 {
			writeFile(t, filepath.Join(stateDir, "history.db"), "runs\n")
		}
		writeFile(t, filepath.Join(local, "stray.tmp"), "leftover\n")

		s := New(localRepo(local), nil, WithProtected("/.quotesite/"))
		require.NoError(t, s.Recover(ctx))
		require.NoError(t, s.Recover(ctx))

		_, err = os.Stat(filepath.Join(local, "stray.tmp"))
		assert.True(t, os.IsNotExist(err), "untracked files still cleaned")
		_, err = os.Stat(lock.Path())
		require.NoError(t, err, "lock file survives recovery")
		_, err = os.Stat(filepath.Join(stateDir, "history.db"))
		require.NoError(t, err, "run history survives recovery")

		_, err = runlock.Acquire(stateDir)
		assert.ErrorIs(t, err, runlock.ErrLocked, "lock still held after recovery")
		require.NoError(t, lock.Release())
	}

	exclude := git(t, local, "rev-parse", "--git-path", "info/exclude")
	data, err := os.ReadFile(filepath.Join(local, strings.TrimSpace(exclude)))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "/.quotesite/\n"))
}

func TestPublishCycleKeepsRunState(t *testing.T) {
	requireGit(t)
	remote, _, local := setupRepos(t)
	stateDir := filepath.Join(local, ".quotesite")
	ctx := context.Background()

	lock, err := runlock.Acquire(stateDir)
	require.NoError(t, err)
	defer lock.Release()

	s := New(localRepo(local), nil, WithProtected("/.quotesite/"))
	require.NoError(t, s.Recover(ctx))

	writeFile(t, filepath.Join(local, "used_quotes.json"), "[\"Be yourself\"]\n")
	require.NoError(t, s.PrePublish(ctx))
	assert.Empty(t, strings.TrimSpace(git(t, local, "stash", "list")))
	_, err = os.Stat(lock.Path())
	require.NoError(t, err, "lock file not stashed away")

	res, err := s.PostPublish(ctx, "Daily post")
	require.NoError(t, err)
	assert.True(t, res.Pushed)

	files := git(t, remote, "ls-tree", "-r", "--name-only", "main")
	assert.NotContains(t, files, ".quotesite", "run state never committed")
	_, err = runlock.Acquire(stateDir)
	assert.ErrorIs(t, err, runlock.ErrLocked)
}
