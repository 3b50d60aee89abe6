package main

import (
	"fmt"
	"strings"

	"compmode/internal/cli"
	"compmode/internal/config"
	"compmode/internal/patterns"
)

func newValidateCommand() cli.Command {
	return cli.Command{
		Name:    "validate",
		Usage:   "validate [--config PATH]",
		Summary: "Validate .compmode.yaml (or .compmode.toml).",
		Run: func(ctx cli.Context, args []string) int {
			fs := cli.NewFlagSet(ctx, "validate")
			cfgPath := fs.String("config", "", "path to a config file")
			if err := fs.Parse(args); err != nil {
				return exitUsage
			}
			return runValidate(*cfgPath, ctx)
		},
	}
}

func runValidate(cfgPath string, ctx cli.Context) int {
	cfg, found, err := config.Resolve(cfgPath, ctx.Dir)
	if err != nil {
		fmt.Fprintln(ctx.Stderr, "validate:", err)
		return exitUsage
	}
	if found == "" {
		fmt.Fprintln(ctx.Stdout, "No config found; built-in defaults apply.")
		return exitOK
	}

	// Names listed in defaults must exist once custom groups are registered.
	reg := patterns.NewRegistry(cfg.PatternGroups()...)
	for _, name := range cfg.Defaults.Groups {
		if strings.EqualFold(strings.TrimSpace(name), patterns.AllGroups) {
			continue
		}
		if _, err := reg.Lookup(name); err != nil {
			fmt.Fprintf(ctx.Stderr, "validate: %s: defaults.groups: %v\n", found, err)
			return exitUsage
		}
	}

	fmt.Fprintln(ctx.Stdout, "Config OK:", found)
	fmt.Fprintf(ctx.Stdout, "Format: %s\n", cfg.Defaults.Format)
	fmt.Fprintf(ctx.Stdout, "Custom groups: %d\n", len(cfg.Groups))
	return exitOK
}
