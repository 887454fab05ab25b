// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package runlock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireIsExclusive(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")

	first, err := Acquire(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), first.Path())

	// flock locks belong to the open file description, so a second open in
	// the same process conflicts just like another process would.
	_, err = Acquire(dir)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, first.Release())

	second, err := Acquire(dir)
	require.NoError(t, err)
	require.NoError(t, second.Release())
}

func TestReleaseIsIdempotent(t *testing.T) {
	l, err := Acquire(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, l.Release())
	assert.NoError(t, l.Release())

	var nilLock *Lock
	assert.NoError(t, nilLock.Release())
}

func TestLockFileRecordsPID(t *testing.T) {
	dir := t.TempDir()
	l, err := Acquire(dir)
	require.NoError(t, err)
	defer l.Release()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
