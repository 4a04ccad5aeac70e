package domainfx

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"go.uber.org/fx"

	"github.com/filebutler/filebutler/pkg/appcontext"
	"github.com/filebutler/filebutler/pkg/domain"
)

type Command struct {
	Name string
	Kind domain.Kind
}

func CommandProvider(fs *pflag.FlagSet) (*Command, error) {
	args := fs.Args()
	if len(args) == 0 {
		return nil, errors.New("no command given, expected one of: route, backup, rotate, upload, health, run, schedule")
	}

	cmd := &Command{Name: args[0]}

	switch cmd.Name {
	case "route", "rotate", "health", "schedule":

	case "upload":
		// Optional kind filter, empty means everything pending.
		if len(args) > 1 {
			kind, err := domain.ParseKind(args[1])
			if err != nil {
				return nil, err
			}
			cmd.Kind = kind
		}

	case "backup", "run":
		if len(args) < 2 {
			return nil, errors.Errorf("command %q requires a kind: daily, weekly or monthly", cmd.Name)
		}

		kind, err := domain.ParseKind(args[1])
		if err != nil {
			return nil, err
		}
		cmd.Kind = kind

	default:
		return nil, errors.Errorf("unknown command %q", cmd.Name)
	}

	return cmd, nil
}

func RunCommand(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	logger *logrus.Logger,
	pipeline *Pipeline,
	scheduler *Scheduler,
	cmd *Command,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cmd.Name == "schedule" {
				return scheduler.Start()
			}

			go func() {
				code := execute(context.Background(), logger, pipeline, cmd)
				_ = shutdowner.Shutdown(fx.ExitCode(code))
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cmd.Name == "schedule" {
				scheduler.Stop()
			}
			return nil
		},
	})
}

// execute runs one command to completion and maps its result onto the exit
// code: zero only on full success.
func execute(ctx context.Context, baseLogger *logrus.Logger, pipeline *Pipeline, cmd *Command) int {
	ctx = appcontext.WithRunId(appcontext.WithCommand(ctx, cmd.Name), newRunId())
	logger := appcontext.LoggerFromContext(baseLogger, ctx)

	switch cmd.Name {
	case "route":
		report, err := pipeline.Route(ctx)
		if err != nil {
			logger.WithError(err).Error("Routing run failed")
			return 1
		}

		pipeline.emit(report)

		if report.Failed > 0 {
			return 1
		}

	case "backup":
		artifact, result, err := pipeline.Backup(ctx, cmd.Kind)
		if err != nil {
			logger.WithError(err).Error("Backup failed")
			return 1
		}

		pipeline.emit(struct {
			Artifact   string `json:"artifact"`
			Size       int64  `json:"size"`
			Undersized bool   `json:"undersized"`
			Admitted   bool   `json:"admitted"`
			Working    int    `json:"working"`
			Archive    int    `json:"archive"`
		}{artifact.Key, artifact.Size, artifact.Undersized, result.Admitted, result.Working, result.Archive})

		if !result.Admitted {
			logger.WithError(domain.ErrUndersized).Warn("Artifact was not admitted")
			return 1
		}
		if len(result.Errs) > 0 {
			return 1
		}

	case "rotate":
		result, err := pipeline.Rotate(ctx)
		if err != nil {
			logger.WithError(err).Error("Rotation failed")
			return 1
		}

		pipeline.emit(result)

		if len(result.Errs) > 0 {
			return 1
		}

	case "upload":
		report, err := pipeline.Upload(ctx, cmd.Kind)
		if err != nil {
			logger.WithError(err).Error("Upload failed")
			return 1
		}

		pipeline.emit(report)

		if report.Failed > 0 {
			return 1
		}

	case "health":
		report := pipeline.Health(ctx)

		pipeline.emit(report)

		if !report.Pass() {
			return 1
		}

	case "run":
		summary, err := pipeline.Run(ctx, cmd.Kind)
		if err != nil {
			logger.WithError(err).Error("Run failed")
			return 1
		}

		pipeline.emit(summary)

		if !summary.Healthy {
			return 1
		}
	}

	return 0
}
