package main

import (
	"time"

	"go.uber.org/fx"

	"github.com/filebutler/filebutler/internal/configfx"
	"github.com/filebutler/filebutler/internal/domainfx"
	"github.com/filebutler/filebutler/internal/loggerfx"
	"github.com/filebutler/filebutler/internal/serverfx"
	"github.com/filebutler/filebutler/internal/sqlfx"
	"github.com/filebutler/filebutler/internal/storagefx"
)

func main() {
	logger := loggerfx.Logger()

	app := fx.New(
		fx.StartTimeout(15*time.Second),
		fx.StopTimeout(15*time.Second),

		fx.NopLogger,

		loggerfx.Module,
		configfx.Module,
		sqlfx.Module,
		storagefx.Module,
		serverfx.Module,
		domainfx.Module,
	)

	if err := app.Err(); err != nil {
		logger.Fatal(err)
	}

	app.Run()
}
