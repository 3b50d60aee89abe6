package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"compmode/internal/cli"
	"compmode/internal/config"
)

func testContext(t *testing.T, dir string) (cli.Context, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	return cli.Context{
		Context: context.Background(),
		Stdout:  &stdout,
		Stderr:  &stderr,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Dir:     dir,
	}, &stdout, &stderr
}

func requireSh(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests drive a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available on this system")
	}
}

type jsonReport struct {
	Command       []string `json:"command"`
	RootDirectory string   `json:"root_directory"`
	ExitCode      int      `json:"exit_code"`
	Messages      []struct {
		IsError bool   `json:"is_error"`
		Msg     string `json:"msg"`
		File    string `json:"file"`
		Line    *uint  `json:"line"`
		Column  *uint  `json:"column"`
		Span    [2]int `json:"span"`
	} `json:"messages"`
}

func TestRunCommandCargoJSON(t *testing.T) {
	requireSh(t)

	dir := t.TempDir()
	ctx, stdout, stderr := testContext(t, dir)

	script := `printf 'error[E0308]: mismatched types\n  --> src/main.rs:4:18\n'; exit 101`
	code := runRun([]string{"--group", "cargo", "--", "sh", "-c", script}, ctx)
	if code != 101 {
		t.Fatalf("exit = %d, want 101 (stderr %q)", code, stderr.String())
	}

	var rep jsonReport
	if err := json.Unmarshal(stdout.Bytes(), &rep); err != nil {
		t.Fatalf("decode report: %v (stdout %q)", err, stdout.String())
	}
	if rep.ExitCode != 101 || rep.RootDirectory != dir {
		t.Fatalf("unexpected report metadata: %+v", rep)
	}
	if len(rep.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(rep.Messages))
	}
	msg := rep.Messages[0]
	if !msg.IsError || msg.Msg != "mismatched types" || msg.File != "src/main.rs" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Line == nil || *msg.Line != 4 || msg.Column == nil || *msg.Column != 18 {
		t.Fatalf("unexpected location: %+v", msg)
	}
	if !strings.Contains(stderr.String(), "mismatched types") {
		t.Fatalf("expected command output echoed to stderr, got %q", stderr.String())
	}
}

func TestRunCommandQuietCSVWithConfig(t *testing.T) {
	requireSh(t)

	dir := t.TempDir()
	cfg := `version: 1
defaults:
  format: csv
  groups: [mine]
groups:
  - name: mine
    patterns: ['(?<type>ERR|WARN) (?<file>\S+):(?<line>\d+) (?<msg>.+)']
`
	if err := os.WriteFile(filepath.Join(dir, ".compmode.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx, stdout, stderr := testContext(t, dir)
	code := runRun([]string{"--quiet", "--", "echo 'WARN a.txt:3 careful'"}, ctx)
	if code != 0 {
		t.Fatalf("exit = %d (stderr %q)", code, stderr.String())
	}

	want := "is_error,msg,file,line,column\n0,careful,a.txt,3,\n"
	if stdout.String() != want {
		t.Fatalf("stdout = %q, want %q", stdout.String(), want)
	}
	if strings.Contains(stderr.String(), "careful") {
		t.Fatalf("expected --quiet to suppress echo, got %q", stderr.String())
	}
}

func TestRunCommandUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", []string{"--format", "json"}, "missing command"},
		{"bad format", []string{"--format", "xml", "--", "true"}, "unknown output format"},
		{"unknown group", []string{"--group", "nope", "--", "true"}, "nope"},
		{"undetectable", []string{"--", "some-unknown-tool"}, "no pattern group matches"},
		{"bad flag", []string{"--bogus"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _, stderr := testContext(t, t.TempDir())
			if code := runRun(tt.args, ctx); code != exitUsage {
				t.Fatalf("exit = %d, want %d", code, exitUsage)
			}
			if !strings.Contains(stderr.String(), tt.want) {
				t.Fatalf("stderr = %q, want it to contain %q", stderr.String(), tt.want)
			}
		})
	}
}

func TestRunFlagsOverrideConfig(t *testing.T) {
	f := runFlags{
		format:      "debug",
		groups:      cli.StringsFlag{"gcc"},
		noMerge:     true,
		explicitSet: map[string]bool{"format": true},
	}
	opts, err := f.resolve(configDefaultsForTest())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if opts.format != "debug" {
		t.Fatalf("format = %q", opts.format)
	}
	if len(opts.groups) != 1 || opts.groups[0] != "gcc" {
		t.Fatalf("groups = %v", opts.groups)
	}
	if opts.mergeStderr {
		t.Fatal("expected --no-merge-stderr to win")
	}
	if !opts.dedup {
		t.Fatal("expected dedup from config to be kept")
	}
	if got := opts.logPath("/work"); got != filepath.Join("/work", "build.log") {
		t.Fatalf("logPath = %q", got)
	}
}

func configDefaultsForTest() config.Defaults {
	return config.Defaults{Format: "json", Groups: config.StringList{"cargo"}, Dedup: true, Log: "build.log"}
}

func TestPatternsCommand(t *testing.T) {
	ctx, stdout, stderr := testContext(t, t.TempDir())

	if code := runPatterns([]string{"cargo", "go"}, "", ctx); code != exitOK {
		t.Fatalf("exit = %d (stderr %q)", code, stderr.String())
	}
	out := stdout.String()
	if !strings.HasPrefix(out, "cargo ") || !strings.Contains(out, "\ngo ") {
		t.Fatalf("expected cargo then go, got %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no colour for a buffer, got %q", out)
	}

	stdout.Reset()
	if code := runPatterns([]string{"missing"}, "", ctx); code != exitUsage {
		t.Fatalf("expected usage exit for unknown group, got %d", code)
	}
}

func TestInitThenValidate(t *testing.T) {
	for _, asTOML := range []bool{false, true} {
		name := "yaml"
		if asTOML {
			name = "toml"
		}
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			ctx, stdout, stderr := testContext(t, dir)

			if code := runInit(false, asTOML, ctx); code != exitOK {
				t.Fatalf("init exit = %d (stderr %q)", code, stderr.String())
			}
			if !strings.Contains(stdout.String(), "Created:") {
				t.Fatalf("unexpected init output %q", stdout.String())
			}
			if code := runInit(false, asTOML, ctx); code != exitUsage {
				t.Fatalf("expected second init to refuse, got %d", code)
			}
			if code := runInit(true, asTOML, ctx); code != exitOK {
				t.Fatalf("init --force exit = %d (stderr %q)", code, stderr.String())
			}

			stdout.Reset()
			if code := runValidate("", ctx); code != exitOK {
				t.Fatalf("validate exit = %d (stderr %q)", code, stderr.String())
			}
			if !strings.Contains(stdout.String(), "Config OK:") {
				t.Fatalf("expected config ok output, got %q", stdout.String())
			}
		})
	}
}

func TestValidateRejectsUnknownDefaultGroup(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(cfgPath, []byte("defaults:\n  groups: [nope]\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx, _, stderr := testContext(t, dir)
	if code := runValidate(cfgPath, ctx); code != exitUsage {
		t.Fatalf("exit = %d, want %d", code, exitUsage)
	}
	if !strings.Contains(stderr.String(), "defaults.groups") {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
}

func TestAppWiring(t *testing.T) {
	var stdout bytes.Buffer
	app := cli.NewApp(appName, version, cli.Context{Stdout: &stdout, Stderr: io.Discard}, exitUsage)
	registerCommands(app)

	if code := app.Run([]string{"help"}); code != exitOK {
		t.Fatalf("help exit = %d", code)
	}
	for _, name := range []string{"run", "patterns", "validate", "init"} {
		if !strings.Contains(stdout.String(), "  "+name) {
			t.Fatalf("help is missing %q: %q", name, stdout.String())
		}
	}
}
