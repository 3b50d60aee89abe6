package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"compmode/internal/matcher"
	"compmode/internal/message"
)

const testPattern = `(?<file>[\w./]+):(?<line>\d+): (?<type>error|warning): (?<msg>.+)`

func requireSh(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests drive a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available on this system")
	}
}

func newMatcher(t *testing.T, echo *bytes.Buffer) *matcher.Matcher {
	t.Helper()
	opts := matcher.Options{TerminatorLen: 1}
	if echo != nil {
		opts.Echo = echo
	}
	m, err := matcher.New([]string{testPattern}, opts)
	if err != nil {
		t.Fatalf("matcher.New: %v", err)
	}
	return m
}

func TestRunCollectsDiagnostics(t *testing.T) {
	requireSh(t)

	var echo bytes.Buffer
	m := newMatcher(t, &echo)

	var seen []message.Message
	res, err := Run(context.Background(), Options{
		Command: []string{"printf 'building\\na.c:3: error: nope\\nb.c:9: warning: hmm\\n'"},
	}, m, func(msg message.Message) { seen = append(seen, msg) })
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if res.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0", res.ExitCode)
	}
	if len(res.Messages) != 2 || len(seen) != 2 {
		t.Fatalf("expected 2 messages (callback saw %d), got %+v", len(seen), res.Messages)
	}
	first := res.Messages[0]
	if !first.IsError || first.File != "a.c" || first.Msg != "nope" || first.Line == nil || *first.Line != 3 {
		t.Fatalf("unexpected first message: %+v", first)
	}
	if first.Span.Start != len("building\n") {
		t.Fatalf("span start = %d, want %d", first.Span.Start, len("building\n"))
	}
	if res.Messages[1].IsError {
		t.Fatalf("expected second message to be a warning: %+v", res.Messages[1])
	}
	if !strings.Contains(echo.String(), "building\n") {
		t.Fatalf("expected echo to carry the raw output, got %q", echo.String())
	}
}

func TestRunPassesExitCodeThrough(t *testing.T) {
	requireSh(t)

	res, err := Run(context.Background(), Options{
		Command: []string{"sh", "-c", "echo 'x.c:1: error: bad'; exit 7"},
	}, newMatcher(t, nil), nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.ExitCode != 7 {
		t.Fatalf("exit code = %d, want 7", res.ExitCode)
	}
	if len(res.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(res.Messages))
	}
}

func TestRunMergeStderr(t *testing.T) {
	requireSh(t)

	script := "echo 'err.c:2: error: from stderr' 1>&2"

	t.Run("merged", func(t *testing.T) {
		res, err := Run(context.Background(), Options{
			Command:     []string{script},
			MergeStderr: true,
		}, newMatcher(t, nil), nil)
		if err != nil {
			t.Fatalf("Run error: %v", err)
		}
		if len(res.Messages) != 1 {
			t.Fatalf("expected stderr diagnostic to be matched, got %d", len(res.Messages))
		}
	})

	t.Run("separate", func(t *testing.T) {
		var stderr bytes.Buffer
		res, err := Run(context.Background(), Options{
			Command: []string{script},
			Stderr:  &stderr,
		}, newMatcher(t, nil), nil)
		if err != nil {
			t.Fatalf("Run error: %v", err)
		}
		if len(res.Messages) != 0 {
			t.Fatalf("expected no messages, got %d", len(res.Messages))
		}
		if !strings.Contains(stderr.String(), "from stderr") {
			t.Fatalf("expected stderr to be forwarded, got %q", stderr.String())
		}
	})
}

func TestRunEnvAndDir(t *testing.T) {
	requireSh(t)

	dir := t.TempDir()
	res, err := Run(context.Background(), Options{
		Command: []string{`echo "$(basename "$(pwd)").c:1: error: $COMPMODE_TEST_VALUE"`},
		Dir:     dir,
		Env:     map[string]string{"COMPMODE_TEST_VALUE": "from env"},
	}, newMatcher(t, nil), nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(res.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(res.Messages))
	}
	got := res.Messages[0]
	if got.Msg != "from env" {
		t.Fatalf("msg = %q, want %q", got.Msg, "from env")
	}
	if got.File != filepath.Base(dir)+".c" {
		t.Fatalf("file = %q, want the working directory name", got.File)
	}
}

func TestRunTimeout(t *testing.T) {
	requireSh(t)

	res, err := Run(context.Background(), Options{
		Command: []string{"sleep 5"},
		Timeout: 100 * time.Millisecond,
	}, newMatcher(t, nil), nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !res.TimedOut {
		t.Fatal("expected TimedOut")
	}
	if res.ExitCode != TimeoutExitCode {
		t.Fatalf("exit code = %d, want %d", res.ExitCode, TimeoutExitCode)
	}
	if res.Duration >= 5*time.Second {
		t.Fatalf("expected the command to be killed early, took %v", res.Duration)
	}
}

func TestRunWritesLog(t *testing.T) {
	requireSh(t)

	logPath := filepath.Join(t.TempDir(), "logs", "build.log")
	_, err := Run(context.Background(), Options{
		Command: []string{"printf 'one\\ntwo\\n'"},
		LogPath: logPath,
	}, newMatcher(t, nil), nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	b, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if string(b) != "one\ntwo\n" {
		t.Fatalf("log = %q, want %q", string(b), "one\ntwo\n")
	}
}

func TestRunErrors(t *testing.T) {
	t.Run("empty command", func(t *testing.T) {
		_, err := Run(context.Background(), Options{}, newMatcher(t, nil), nil)
		if !errors.Is(err, ErrNoCommand) {
			t.Fatalf("expected ErrNoCommand, got %v", err)
		}
	})

	t.Run("missing executable", func(t *testing.T) {
		_, err := Run(context.Background(), Options{
			Command: []string{"compmode-definitely-not-a-real-binary"},
		}, newMatcher(t, nil), nil)
		if err == nil {
			t.Fatal("expected start error, got nil")
		}
	})
}

func TestMergeEnvLastWins(t *testing.T) {
	env := mergeEnv([]string{"A=1", "B=2"}, map[string]string{"B": "3", "C": "4"})
	want := []string{"A=1", "B=2", "B=3", "C=4"}
	if strings.Join(env, ",") != strings.Join(want, ",") {
		t.Fatalf("mergeEnv = %v, want %v", env, want)
	}
}
