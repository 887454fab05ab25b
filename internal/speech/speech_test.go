// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package speech

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/quotesite/pkg/types"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommandWithPlaceholders(t *testing.T) {
	requireShell(t)
	out := filepath.Join(t.TempDir(), "audio", "Ozymandias.mp3")
	c := &Command{
		Name: "sh",
		Args: []string{"-c", `printf '%s:' "$1" > "$2"; cat "$0" >> "$2"`, PlaceholderTextFile, PlaceholderLang, PlaceholderOut},
		Lang: "en",
	}
	require.NoError(t, c.Synthesize(context.Background(), "I met a traveller", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "en:I met a traveller", string(data))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(out), ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCommandStdinStdout(t *testing.T) {
	requireShell(t)
	out := filepath.Join(t.TempDir(), "poem.mp3")
	c := &Command{Name: "sh", Args: []string{"-c", "tr a-z A-Z"}}
	require.NoError(t, c.Synthesize(context.Background(), "two roads", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "TWO ROADS", string(data))
}

func TestCommandFailures(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()

	err := (&Command{Name: "sh", Args: []string{"-c", "echo boom >&2; exit 3"}}).Synthesize(context.Background(), "x", filepath.Join(dir, "a.mp3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	err = (&Command{Name: "sh", Args: []string{"-c", "true"}}).Synthesize(context.Background(), "x", filepath.Join(dir, "b.mp3"))
	assert.ErrorIs(t, err, ErrEmptyOutput)
	_, statErr := os.Stat(filepath.Join(dir, "b.mp3"))
	assert.True(t, os.IsNotExist(statErr))

	start := time.Now()
	err = (&Command{Name: "sh", Args: []string{"-c", "exec sleep 5"}, Timeout: 100 * time.Millisecond}).Synthesize(context.Background(), "x", filepath.Join(dir, "c.mp3"))
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

type fakeRuntime struct {
	env   map[string]string
	image string
	err   error
}

func (f *fakeRuntime) Name() string { return "fake" }
func (f *fakeRuntime) Available(context.Context) bool { return true }
func (f *fakeRuntime) ImageExists(context.Context, string) error { return nil }
func (f *fakeRuntime) Run(_ context.Context, image string, env map[string]string, stdin io.Reader, stdout io.Writer) error {
	f.image, f.env = image, env
	if f.err != nil {
		return f.err
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return err
	}
	_, err = stdout.Write([]byte("MP3:" + string(data)))
	return err
}

func TestContainerSynthesize(t *testing.T) {
	rt := &fakeRuntime{}
	c := &Container{Runtime: rt, Image: "ghcr.io/example/tts:1", Lang: "fr"}
	out := filepath.Join(t.TempDir(), "poeme.mp3")

	require.NoError(t, c.Synthesize(context.Background(), "Demain, dès l'aube", out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "MP3:Demain, dès l'aube", string(data))
	assert.Equal(t, "ghcr.io/example/tts:1", rt.image)
	assert.Equal(t, map[string]string{"TTS_LANG": "fr"}, rt.env)

	rt.err = errors.New("image pull failed")
	err = c.Synthesize(context.Background(), "x", filepath.Join(t.TempDir(), "x.mp3"))
	assert.True(t, strings.Contains(err.Error(), "image pull failed"))
}

func TestNew(t *testing.T) {
	s, err := New(context.Background(), types.SpeechConfig{Backend: types.SpeechNone})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = New(context.Background(), types.SpeechConfig{Backend: types.SpeechCommand, Command: "espeak-ng", Lang: "en"})
	require.NoError(t, err)
	assert.Equal(t, "espeak-ng", s.(*Command).Name)

	_, err = New(context.Background(), types.SpeechConfig{Backend: types.SpeechCommand})
	assert.Error(t, err)

	_, err = New(context.Background(), types.SpeechConfig{Backend: "gtts"})
	assert.Error(t, err)
}
