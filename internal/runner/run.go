// Package runner starts a build command and feeds its output through a
// matcher while the command is still running.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"compmode/internal/matcher"
	"compmode/internal/message"
)

// TimeoutExitCode is reported for a command killed by Options.Timeout.
const TimeoutExitCode = 124

// waitDelay bounds how long Wait keeps the output pipe open after the
// process exits or is killed, for grandchildren that inherited it.
const waitDelay = 2 * time.Second

// ErrNoCommand is returned by Run when Options.Command is empty.
var ErrNoCommand = errors.New("no command given")

type Options struct {
	// Command is the argv to run. With Shell set it is joined into one script.
	Command []string
	Shell   string
	Dir     string

	// Env is added to the current environment, overriding existing keys.
	Env map[string]string

	// MergeStderr feeds stderr into the matcher along with stdout.
	MergeStderr bool
	// Stderr receives the command's stderr when it is not merged. Defaults to os.Stderr.
	Stderr io.Writer

	Timeout time.Duration

	// LogPath, when set, receives a raw copy of the matched stream.
	LogPath string

	Logger *slog.Logger
}

type Result struct {
	ExitCode int
	Messages []message.Message
	TimedOut bool
	Duration time.Duration
}

// Run executes the command and streams its output through m. onMessage, when
// not nil, sees each diagnostic as soon as it is found. A non-zero exit is
// reported in Result.ExitCode; only failing to run the command is an error.
func Run(ctx context.Context, opts Options, m *matcher.Matcher, onMessage func(message.Message)) (Result, error) {
	if len(opts.Command) == 0 || opts.Command[0] == "" {
		return Result{}, ErrNoCommand
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	name, args := resolveCommand(opts.Shell, opts.Command)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	cmd.Env = mergeEnv(os.Environ(), opts.Env)
	cmd.WaitDelay = waitDelay

	pr, pw := io.Pipe()
	var out io.Writer = pw

	if opts.LogPath != "" {
		logFile, err := openLog(opts.LogPath)
		if err != nil {
			return Result{}, err
		}
		defer logFile.Close()
		out = io.MultiWriter(pw, logFile)
	}

	cmd.Stdout = out
	if opts.MergeStderr {
		cmd.Stderr = out
	} else if opts.Stderr != nil {
		cmd.Stderr = opts.Stderr
	} else {
		cmd.Stderr = os.Stderr
	}

	logger.Debug("starting command", "name", name, "args", args, "dir", opts.Dir)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		return Result{}, fmt.Errorf("failed to start %s: %w", name, err)
	}

	var g errgroup.Group
	g.Go(func() error {
		defer pw.Close()
		return cmd.Wait()
	})

	var res Result
	for msg := range m.Scan(pr) {
		res.Messages = append(res.Messages, msg)
		if onMessage != nil {
			onMessage(msg)
		}
	}
	scanErr := m.Err()
	// Keep the child from blocking on a full pipe if scanning stopped early.
	_, _ = io.Copy(io.Discard, pr)

	waitErr := g.Wait()
	res.Duration = time.Since(start)

	if opts.Timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		res.ExitCode = TimeoutExitCode
		logger.Debug("command timed out", "timeout", opts.Timeout)
		return res, nil
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
		res.ExitCode = 0
	case errors.As(waitErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		if res.ExitCode < 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			res.ExitCode = 1
		}
	default:
		return res, fmt.Errorf("failed waiting for %s: %w", name, waitErr)
	}

	if scanErr != nil {
		return res, fmt.Errorf("failed reading output: %w", scanErr)
	}

	logger.Debug("command finished", "exit_code", res.ExitCode, "messages", len(res.Messages), "duration", res.Duration)
	return res, nil
}

func openLog(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	return f, nil
}

// mergeEnv appends extra in key order so later entries win under exec's
// last-value-wins rule.
func mergeEnv(base []string, extra map[string]string) []string {
	env := append([]string{}, base...)
	for _, k := range slices.Sorted(maps.Keys(extra)) {
		env = append(env, k+"="+extra[k])
	}
	return env
}
