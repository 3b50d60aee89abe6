package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"compmode/internal/cli"
	"compmode/internal/config"
	"compmode/internal/matcher"
	"compmode/internal/message"
	"compmode/internal/patterns"
	"compmode/internal/report"
	"compmode/internal/runner"
	"compmode/internal/ui"
)

func newRunCommand() cli.Command {
	return cli.Command{
		Name:    "run",
		Usage:   "run [--format F] [--group G]... [--quiet] -- <command...>",
		Summary: "Run a build command and report its diagnostics.",
		Run: func(ctx cli.Context, args []string) int {
			return runRun(args, ctx)
		},
	}
}

type runFlags struct {
	format      string
	groups      cli.StringsFlag
	quiet       bool
	shell       string
	noMerge     bool
	dedup       bool
	timeout     time.Duration
	log         string
	configPath  string
	explicitSet map[string]bool
}

func runRun(args []string, ctx cli.Context) int {
	var f runFlags
	fs := cli.NewFlagSet(ctx, "run")
	fs.StringVar(&f.format, "format", "", "report format: "+formatNames())
	fs.Var(&f.groups, "group", "pattern group to use (repeatable, \"all\" for every group; default: detect from the command)")
	fs.BoolVar(&f.quiet, "quiet", false, "do not echo the command's output")
	fs.StringVar(&f.shell, "shell", "", "run the command through this shell")
	fs.BoolVar(&f.noMerge, "no-merge-stderr", false, "match stdout only and pass stderr through")
	fs.BoolVar(&f.dedup, "dedup", false, "drop diagnostics reported twice at the same place")
	fs.DurationVar(&f.timeout, "timeout", 0, "kill the command after this duration (e.g. 10m)")
	fs.StringVar(&f.log, "log", "", "write the raw command output to this file")
	fs.StringVar(&f.configPath, "config", "", "path to a config file (default: search upward for .compmode.yaml)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	f.explicitSet = map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { f.explicitSet[fl.Name] = true })

	command := fs.Args()
	if len(command) == 0 {
		fmt.Fprintln(ctx.Stderr, "run: missing command (usage: compmode run [options] -- <command...>)")
		return exitUsage
	}

	cfg, cfgPath, err := config.Resolve(f.configPath, ctx.Dir)
	if err != nil {
		fmt.Fprintln(ctx.Stderr, "run:", err)
		return exitUsage
	}
	if cfgPath != "" {
		ctx.Logger.Debug("loaded config", "path", cfgPath)
	}

	opts, err := f.resolve(cfg.Defaults)
	if err != nil {
		fmt.Fprintln(ctx.Stderr, "run:", err)
		return exitUsage
	}

	reg := patterns.NewRegistry(cfg.PatternGroups()...)
	sources, err := reg.Select(opts.groups, runner.Executable(command))
	if err != nil {
		fmt.Fprintln(ctx.Stderr, "run:", err)
		return exitUsage
	}

	mopts := matcher.Options{
		TerminatorLen: cfg.Defaults.Terminator,
		Logger:        ctx.Logger,
	}
	if !f.quiet {
		mopts.Echo = ctx.Stderr
	}
	m, err := matcher.New(sources, mopts)
	if err != nil {
		fmt.Fprintln(ctx.Stderr, "run:", err)
		return exitUsage
	}

	var sp *ui.Spinner
	var progress func(message.Message)
	if f.quiet && ctx.Interactive {
		sp = ui.NewSpinner(ctx.Stderr)
		sp.Start(commandLabel(command))
		progress = spinnerProgress(sp, commandLabel(command))
	}

	res, err := runner.Run(ctx.Context, runner.Options{
		Command:     command,
		Shell:       opts.shell,
		Dir:         ctx.Dir,
		MergeStderr: opts.mergeStderr,
		Stderr:      ctx.Stderr,
		Timeout:     opts.timeout,
		LogPath:     opts.logPath(ctx.Dir),
		Logger:      ctx.Logger,
	}, m, progress)
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		fmt.Fprintln(ctx.Stderr, "run:", err)
		return exitUsage
	}

	rep := report.New(command, ctx.Dir)
	rep.Add(res.Messages...)
	rep.ExitCode = res.ExitCode
	if opts.dedup {
		rep.Dedup()
	}

	if err := rep.Write(ctx.Stdout, opts.format); err != nil {
		fmt.Fprintln(ctx.Stderr, "run:", err)
		return exitUsage
	}

	if ctx.Interactive {
		errs, warns := rep.Counts()
		_ = ui.WriteSummary(ctx.Stderr, ui.Summary{
			Errors:   errs,
			Warnings: warns,
			ExitCode: res.ExitCode,
			TimedOut: res.TimedOut,
			Duration: res.Duration,
		}, ctx.Color)
	}

	return res.ExitCode
}

// runOptions are the flags merged over the config defaults.
type runOptions struct {
	format      report.Format
	groups      []string
	shell       string
	mergeStderr bool
	dedup       bool
	timeout     time.Duration
	log         string
}

func (o runOptions) logPath(dir string) string {
	if o.log == "" || filepath.IsAbs(o.log) {
		return o.log
	}
	return filepath.Join(dir, o.log)
}

func (f *runFlags) resolve(d config.Defaults) (runOptions, error) {
	opts := runOptions{
		groups:      []string(d.Groups),
		shell:       d.Shell,
		mergeStderr: d.MergeStderrEnabled(),
		dedup:       d.Dedup,
		timeout:     d.Timeout,
		log:         d.Log,
	}

	name := d.Format
	if f.explicitSet["format"] {
		name = f.format
	}
	format, err := report.ParseFormat(name)
	if err != nil {
		return runOptions{}, err
	}
	opts.format = format

	if len(f.groups) > 0 {
		opts.groups = []string(f.groups)
	}
	if f.explicitSet["shell"] {
		opts.shell = f.shell
	}
	if f.noMerge {
		opts.mergeStderr = false
	}
	if f.dedup {
		opts.dedup = true
	}
	if f.explicitSet["timeout"] {
		if f.timeout < 0 {
			return runOptions{}, fmt.Errorf("invalid --timeout %s", f.timeout)
		}
		opts.timeout = f.timeout
	}
	if f.explicitSet["log"] {
		opts.log = f.log
	}
	return opts, nil
}

// spinnerProgress keeps a running count on the spinner line. Run calls it
// from a single goroutine.
func spinnerProgress(sp *ui.Spinner, label string) func(message.Message) {
	var errs, warns int
	return func(msg message.Message) {
		if msg.IsError {
			errs++
		} else {
			warns++
		}
		sp.SetMessage(fmt.Sprintf("%s: %d errors, %d warnings", label, errs, warns))
	}
}

func commandLabel(command []string) string {
	label := strings.Join(command, " ")
	const maxLabel = 40
	if len(label) > maxLabel {
		label = label[:maxLabel-3] + "..."
	}
	return label
}

func formatNames() string {
	names := make([]string, 0, len(report.Formats()))
	for _, f := range report.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, "|")
}
