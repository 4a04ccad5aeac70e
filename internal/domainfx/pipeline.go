package domainfx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/filebutler/filebutler/internal/configfx"
	"github.com/filebutler/filebutler/pkg/appcontext"
	"github.com/filebutler/filebutler/pkg/backup"
	"github.com/filebutler/filebutler/pkg/domain"
	"github.com/filebutler/filebutler/pkg/health"
	"github.com/filebutler/filebutler/pkg/remote"
	"github.com/filebutler/filebutler/pkg/rotation"
	"github.com/filebutler/filebutler/pkg/routing"
)

// Pipeline runs the stages strictly in order: routing finishes before the
// backup build starts, rotation settles before upload. It assumes a single
// active run; overlapping invocations are a scheduling error, not something
// it locks against.
type Pipeline struct {
	logger logrus.FieldLogger
	config *configfx.Config

	router   *routing.Router
	builder  *backup.Builder
	rotation *rotation.Manager
	uploader *remote.Uploader
	health   *health.Reporter

	out io.Writer
}

func NewPipeline(
	logger *logrus.Logger,
	config *configfx.Config,
	router *routing.Router,
	builder *backup.Builder,
	manager *rotation.Manager,
	uploader *remote.Uploader,
	reporter *health.Reporter,
) *Pipeline {
	return &Pipeline{
		logger:   logger,
		config:   config,
		router:   router,
		builder:  builder,
		rotation: manager,
		uploader: uploader,
		health:   reporter,
		out:      os.Stdout,
	}
}

func (p *Pipeline) Route(ctx context.Context) (*domain.RouteReport, error) {
	if err := p.ensureFolders(); err != nil {
		return nil, err
	}

	return p.router.Run(ctx)
}

// Backup builds one artifact of the given kind and hands it to rotation for
// admission.
func (p *Pipeline) Backup(ctx context.Context, kind domain.Kind) (domain.Artifact, *rotation.Result, error) {
	if err := p.ensureFolders(); err != nil {
		return domain.Artifact{}, nil, err
	}

	artifact, err := p.builder.Build(ctx, p.config.BaseDir, p.config.BackupDir, kind)
	if err != nil {
		return artifact, nil, err
	}

	result, err := p.rotation.Admit(ctx, artifact)

	return artifact, result, err
}

func (p *Pipeline) Rotate(ctx context.Context) (*rotation.Result, error) {
	return p.rotation.Sweep(ctx)
}

// Upload pushes every retained artifact that has no live remote copy yet.
// An empty kind means all kinds.
func (p *Pipeline) Upload(ctx context.Context, kind domain.Kind) (*remote.UploadReport, error) {
	working, archive, err := p.rotation.State(ctx)
	if err != nil {
		return nil, err
	}

	var pending []domain.Artifact

	for _, artifact := range append(working, archive...) {
		if kind != "" && artifact.Kind != kind {
			continue
		}
		pending = append(pending, artifact)
	}

	return p.uploader.SyncPending(ctx, pending)
}

func (p *Pipeline) Health(ctx context.Context) *health.Report {
	return p.health.Report(ctx)
}

type runSummary struct {
	Route   *domain.RouteReport  `json:"route"`
	Backup  *rotation.Result     `json:"backup"`
	Upload  *remote.UploadReport `json:"upload,omitempty"`
	Health  *health.Report       `json:"health"`
	Healthy bool                 `json:"healthy"`
}

// Run executes the full pipeline for one kind. Stage failures degrade the
// run instead of aborting it: a failed build still leaves routed files in
// place, a failed upload still leaves rotation settled.
func (p *Pipeline) Run(ctx context.Context, kind domain.Kind) (*runSummary, error) {
	logger := appcontext.LoggerFromContext(p.logger, ctx)

	summary := &runSummary{}

	routeReport, err := p.Route(ctx)
	if err != nil {
		return summary, err
	}
	summary.Route = routeReport

	_, admitResult, err := p.Backup(ctx, kind)
	if err != nil {
		logger.WithError(err).Error("Backup build failed, skipping admission and upload")
	} else {
		summary.Backup = admitResult

		uploadReport, err := p.Upload(ctx, "")
		if err != nil {
			logger.WithError(err).Error("Upload failed, will be retried on the next run")
		} else {
			summary.Upload = uploadReport
		}
	}

	summary.Health = p.Health(ctx)
	summary.Healthy = summary.Health.Pass()

	return summary, nil
}

func (p *Pipeline) ensureFolders() error {
	folders := []string{p.config.DropZone, p.config.BackupDir, p.config.ArchiveDir, p.config.FallbackDir()}
	for _, dir := range p.config.Categories {
		folders = append(folders, dir)
	}

	for _, dir := range folders {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return nil
}

func (p *Pipeline) emit(v interface{}) {
	enc := json.NewEncoder(p.out)
	_ = enc.Encode(v)
}

func newRunId() string {
	buf := make([]byte, 4)

	if _, err := rand.Read(buf); err != nil {
		return "unknown"
	}

	return hex.EncodeToString(buf)
}
