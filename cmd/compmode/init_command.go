package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"compmode/internal/cli"
	"compmode/internal/config"
)

const defaultYAMLConfig = `version: 1

defaults:
  format: json          # debug | json | csv | nullsep | msgpack
  # groups: [cargo]     # empty = detect from the command
  mergeStderr: true
  # dedup: true
  # timeout: 10m
  # log: build.log

# groups:
#   - name: mytool
#     patterns:
#       - '(?<file>[^:]+):(?<line>\d+): (?<type>error|warning): (?<msg>.+)'
#     executables: [mytool]
`

func newInitCommand() cli.Command {
	return cli.Command{
		Name:    "init",
		Usage:   "init [--force] [--toml]",
		Summary: "Create a starter .compmode.yaml in the current directory.",
		Run: func(ctx cli.Context, args []string) int {
			fs := cli.NewFlagSet(ctx, "init")
			force := fs.Bool("force", false, "overwrite an existing config")
			asTOML := fs.Bool("toml", false, "write .compmode.toml instead of YAML")
			if err := fs.Parse(args); err != nil {
				return exitUsage
			}
			return runInit(*force, *asTOML, ctx)
		},
	}
}

func runInit(force bool, asTOML bool, ctx cli.Context) int {
	name := config.FileNames[0]
	if asTOML {
		name = ".compmode.toml"
	}
	cfgPath := filepath.Join(ctx.Dir, name)

	if !force {
		if _, err := os.Stat(cfgPath); err == nil {
			fmt.Fprintf(ctx.Stderr, "init: %s already exists (use --force to overwrite)\n", name)
			return exitUsage
		} else if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(ctx.Stderr, "init:", err)
			return exitUsage
		}
	}

	var err error
	if asTOML {
		err = config.Save(cfgPath, config.Default())
	} else {
		err = os.WriteFile(cfgPath, []byte(defaultYAMLConfig), 0o644)
	}
	if err != nil {
		fmt.Fprintln(ctx.Stderr, "init:", err)
		return exitUsage
	}

	// The starter file must load cleanly.
	if _, err := config.Load(cfgPath); err != nil {
		fmt.Fprintln(ctx.Stderr, "init:", err)
		return exitUsage
	}

	fmt.Fprintln(ctx.Stdout, "Created:", cfgPath)
	fmt.Fprintln(ctx.Stdout, "Next: compmode run -- <your build command>")
	return exitOK
}
