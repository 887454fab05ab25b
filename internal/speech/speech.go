// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package speech produces poem recitations through an external
// text-to-speech tool, either a local command or a container image.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/quotesite/internal/container"
	"github.com/pdiddy/quotesite/pkg/types"
)

// Synthesizer renders text to an audio file at outPath.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

// Argument placeholders expanded in command arguments.
const (
	PlaceholderTextFile = "{text_file}"
	PlaceholderOut      = "{out}"
	PlaceholderLang     = "{lang}"
)

// ErrEmptyOutput reports a tool that exited cleanly without writing audio.
var ErrEmptyOutput = errors.New("speech tool produced no audio")

// New returns the synthesizer selected by cfg, or nil when speech is
// disabled. The container backend requires the image to exist locally.
func New(ctx context.Context, cfg types.SpeechConfig) (Synthesizer, error) {
	switch cfg.Backend {
	case types.SpeechNone, "":
		return nil, nil
	case types.SpeechCommand:
		if cfg.Command == "" {
			return nil, errors.New("speech command is required")
		}
		return &Command{Name: cfg.Command, Args: cfg.Args, Lang: cfg.Lang, Timeout: cfg.Timeout}, nil
	case types.SpeechContainer:
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		if err := rt.ImageExists(ctx, cfg.Image); err != nil {
			return nil, err
		}
		return &Container{Runtime: rt, Image: cfg.Image, Lang: cfg.Lang, Timeout: cfg.Timeout}, nil
	default:
		return nil, fmt.Errorf("unknown speech backend %q", cfg.Backend)
	}
}

// Command runs a local tool. When Args reference {text_file} the text is
// written to a temporary file; otherwise it is piped on stdin. When Args
// do not reference {out} the tool's stdout is the audio.
type Command struct {
	Name    string
	Args    []string
	Lang    string
	Timeout time.Duration
}

// Synthesize runs the tool and atomically moves its output to outPath.
func (c *Command) Synthesize(ctx context.Context, text, outPath string) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	return produce(outPath, func(tmpOut string, out io.Writer) error {
		usesText, usesOut := false, false
		for _, a := range c.Args {
			usesText = usesText || strings.Contains(a, PlaceholderTextFile)
			usesOut = usesOut || strings.Contains(a, PlaceholderOut)
		}

		textFile := ""
		if usesText {
			f, err := os.CreateTemp("", "quotesite-tts-*.txt")
			if err != nil {
				return err
			}
			defer os.Remove(f.Name())
			if _, err := f.WriteString(text); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			textFile = f.Name()
		}

		repl := strings.NewReplacer(PlaceholderTextFile, textFile, PlaceholderOut, tmpOut, PlaceholderLang, c.Lang)
		args := make([]string, len(c.Args))
		for i, a := range c.Args {
			args[i] = repl.Replace(a)
		}

		var stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, c.Name, args...)
		cmd.Stderr = &stderr
		cmd.WaitDelay = time.Second
		if !usesText {
			cmd.Stdin = strings.NewReader(text)
		}
		if !usesOut {
			cmd.Stdout = out
		}
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("running %s: %w: %s", c.Name, err, strings.TrimSpace(stderr.String()))
		}
		return nil
	})
}

// Container runs a TTS image that reads text on stdin and writes audio on
// stdout. The language is passed as TTS_LANG.
type Container struct {
	Runtime container.Runtime
	Image   string
	Lang    string
	Timeout time.Duration
}

// Synthesize runs the image and atomically moves its output to outPath.
func (c *Container) Synthesize(ctx context.Context, text, outPath string) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	return produce(outPath, func(_ string, out io.Writer) error {
		env := map[string]string{"TTS_LANG": c.Lang}
		return c.Runtime.Run(ctx, c.Image, env, strings.NewReader(text), out)
	})
}

// produce gives run a temporary output path and an open writer for the
// same file, then renames a non-empty result to outPath.
func produce(outPath string, run func(tmpOut string, out io.Writer) error) error {
	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating audio directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outPath)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating audio file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	runErr := run(tmpPath, tmp)
	if err := tmp.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return fmt.Errorf("synthesizing speech: %w", runErr)
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		return fmt.Errorf("synthesizing speech: %w", err)
	}
	if info.Size() == 0 {
		return ErrEmptyOutput
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, outPath)
}
