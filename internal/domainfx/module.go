package domainfx

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(Classifier),
	fx.Provide(Router),
	fx.Provide(Builder),
	fx.Provide(RotationManager),
	fx.Provide(Uploader),
	fx.Provide(HealthReporter),
	fx.Provide(NewPipeline),
	fx.Provide(NewCron),
	fx.Provide(NewScheduler),
	fx.Provide(CommandProvider),
	fx.Invoke(RunCommand),
)
