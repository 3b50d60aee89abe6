package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"compmode/internal/cli"
	"compmode/internal/config"
	"compmode/internal/patterns"
	"compmode/internal/ui"
)

func newPatternsCommand() cli.Command {
	return cli.Command{
		Name:    "patterns",
		Usage:   "patterns [--group G]... [--config PATH]",
		Summary: "List the pattern groups and their regular expressions.",
		Run: func(ctx cli.Context, args []string) int {
			fs := cli.NewFlagSet(ctx, "patterns")
			var groups cli.StringsFlag
			fs.Var(&groups, "group", "only list this group (repeatable)")
			cfgPath := fs.String("config", "", "path to a config file")
			if err := fs.Parse(args); err != nil {
				return exitUsage
			}
			return runPatterns(groups, *cfgPath, ctx)
		},
	}
}

func runPatterns(names []string, cfgPath string, ctx cli.Context) int {
	cfg, _, err := config.Resolve(cfgPath, ctx.Dir)
	if err != nil {
		fmt.Fprintln(ctx.Stderr, "patterns:", err)
		return exitUsage
	}
	reg := patterns.NewRegistry(cfg.PatternGroups()...)

	groups := reg.Groups()
	if len(names) > 0 {
		groups = groups[:0:0]
		for _, name := range names {
			g, err := reg.Lookup(name)
			if err != nil {
				fmt.Fprintln(ctx.Stderr, "patterns:", err)
				return exitUsage
			}
			groups = append(groups, g)
		}
	}

	title := color.New(color.Bold)
	dim := color.New(color.Faint)
	if stdoutColor(ctx) {
		title.EnableColor()
		dim.EnableColor()
	} else {
		title.DisableColor()
		dim.DisableColor()
	}

	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(ctx.Stdout)
		}
		header := title.Sprint(g.Name)
		if len(g.Executables) > 0 {
			header += " " + dim.Sprintf("(%s)", strings.Join(g.Executables, ", "))
		}
		fmt.Fprintln(ctx.Stdout, header)
		for _, p := range g.Patterns {
			fmt.Fprintf(ctx.Stdout, "  %s\n", p)
		}
	}
	return exitOK
}

func stdoutColor(ctx cli.Context) bool {
	f, ok := ctx.Stdout.(*os.File)
	return ok && ctx.Color && ui.ColorEnabled(f)
}
