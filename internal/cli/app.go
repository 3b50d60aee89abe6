// Package cli is a small subcommand dispatcher on top of the flag package.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
)

type Command struct {
	Name    string
	Usage   string
	Summary string
	Run     func(ctx Context, args []string) int
}

// Context is what every command runs with.
type Context struct {
	context.Context

	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Dir is the working directory commands resolve config and relative paths from.
	Dir string
	// Interactive is set when stderr is a terminal.
	Interactive bool
	// Color enables ANSI colour on stderr.
	Color bool
}

type App struct {
	name          string
	version       string
	usageExitCode int
	commands      map[string]Command
	ctx           Context
}

func NewApp(name string, version string, ctx Context, usageExitCode int) *App {
	if ctx.Context == nil {
		ctx.Context = context.Background()
	}
	if ctx.Logger == nil {
		ctx.Logger = slog.Default()
	}
	return &App{
		name:          name,
		version:       version,
		usageExitCode: usageExitCode,
		commands:      map[string]Command{},
		ctx:           ctx,
	}
}

func (a *App) Register(cmd Command) {
	if strings.TrimSpace(cmd.Name) == "" {
		return
	}
	a.commands[cmd.Name] = cmd
}

func (a *App) Run(args []string) int {
	if len(args) == 0 {
		a.printHelp(a.ctx.Stderr)
		return a.usageExitCode
	}

	switch args[0] {
	case "-h", "--help", "help":
		a.printHelp(a.ctx.Stdout)
		return 0
	case "version", "--version", "-v":
		fmt.Fprintf(a.ctx.Stdout, "%s %s\n", a.name, a.version)
		return 0
	}

	cmd, ok := a.commands[args[0]]
	if !ok {
		fmt.Fprintf(a.ctx.Stderr, "Unknown command: %s\n\n", args[0])
		a.printHelp(a.ctx.Stderr)
		return a.usageExitCode
	}

	a.ctx.Logger.Debug("dispatching command", "command", cmd.Name, "args", args[1:])
	return cmd.Run(a.ctx, args[1:])
}

func (a *App) printHelp(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n\n", a.name, a.version)
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  %s <command> [options]\n\n", a.name)
	fmt.Fprintf(w, "Commands:\n")

	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	slices.Sort(names)

	width := 0
	for _, name := range names {
		width = max(width, len(usageOf(a.commands[name])))
	}
	for _, name := range names {
		cmd := a.commands[name]
		fmt.Fprintf(w, "  %-*s  %s\n", width, usageOf(cmd), cmd.Summary)
	}

	fmt.Fprintf(w, "\nHelp:\n  %s help\n", a.name)
}

func usageOf(cmd Command) string {
	if usage := strings.TrimSpace(cmd.Usage); usage != "" {
		return usage
	}
	return cmd.Name
}

func NewFlagSet(ctx Context, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(ctx.Stderr)
	return fs
}

// StringsFlag collects a repeatable flag. Each value may also be a comma
// separated list.
type StringsFlag []string

func (s *StringsFlag) String() string { return strings.Join(*s, ",") }

func (s *StringsFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}
