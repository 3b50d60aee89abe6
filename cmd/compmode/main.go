package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"compmode/internal/cli"
	"compmode/internal/ui"
)

const (
	appName = "compmode"
	version = "v0.1.0-dev"

	exitOK    = 0
	exitUsage = 2

	debugEnv = "COMPMODE_DEBUG"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger()
	slog.SetDefault(logger)

	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, appName+":", err)
		return exitUsage
	}

	app := cli.NewApp(appName, version, cli.Context{
		Context:     ctx,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Logger:      logger,
		Dir:         dir,
		Interactive: ui.IsTerminal(os.Stderr),
		Color:       ui.ColorEnabled(os.Stderr),
	}, exitUsage)
	registerCommands(app)
	return app.Run(os.Args[1:])
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if v := os.Getenv(debugEnv); v != "" && v != "0" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
