package main

import (
	"compmode/internal/cli"
)

func registerCommands(app *cli.App) {
	app.Register(newRunCommand())
	app.Register(newPatternsCommand())
	app.Register(newValidateCommand())
	app.Register(newInitCommand())
}
