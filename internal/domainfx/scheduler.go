package domainfx

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/filebutler/filebutler/internal/configfx"
	"github.com/filebutler/filebutler/pkg/appcontext"
	"github.com/filebutler/filebutler/pkg/domain"
)

func NewCron() *cron.Cron {
	return cron.New()
}

// Scheduler triggers full pipeline runs on the configured per-kind cron
// specs. Runs never overlap: a dispatch that finds the previous run still
// active is skipped, since overlap is a configuration error rather than
// something the core locks against.
type Scheduler struct {
	logger logrus.FieldLogger

	cron     *cron.Cron
	pipeline *Pipeline
	specs    map[string]string

	busy chan struct{}
}

func NewScheduler(
	logger *logrus.Logger,
	c *cron.Cron,
	pipeline *Pipeline,
	config *configfx.Config,
) *Scheduler {
	return &Scheduler{
		logger:   logger,
		cron:     c,
		pipeline: pipeline,
		specs:    config.Schedule,
		busy:     make(chan struct{}, 1),
	}
}

func (s *Scheduler) Start() error {
	for kindStr, spec := range s.specs {
		kind, err := domain.ParseKind(kindStr)
		if err != nil {
			return err
		}

		_, err = s.cron.AddFunc(spec, func() {
			s.dispatch(kind)
		})
		if err != nil {
			return err
		}

		s.logger.WithFields(logrus.Fields{"kind": kind, "spec": spec}).Info("Scheduled backup runs")
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) dispatch(kind domain.Kind) {
	select {
	case s.busy <- struct{}{}:
	default:
		s.logger.WithField("kind", kind).Warn("Previous run still active, skipping dispatch")
		return
	}
	defer func() { <-s.busy }()

	ctx := appcontext.WithRunId(appcontext.WithCommand(context.Background(), "schedule"), newRunId())
	logger := appcontext.LoggerFromContext(s.logger, ctx).WithField("kind", kind)

	logger.Info("Dispatching scheduled run")

	summary, err := s.pipeline.Run(ctx, kind)
	if err != nil {
		logger.WithError(err).Error("Scheduled run failed")
		return
	}

	if !summary.Healthy {
		logger.Warn("Scheduled run finished with failing health checks")
	}
}
