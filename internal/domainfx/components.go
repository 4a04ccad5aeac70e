package domainfx

import (
	"github.com/sirupsen/logrus"

	"github.com/filebutler/filebutler/internal/configfx"
	"github.com/filebutler/filebutler/pkg/backup"
	"github.com/filebutler/filebutler/pkg/domain"
	"github.com/filebutler/filebutler/pkg/health"
	"github.com/filebutler/filebutler/pkg/remote"
	"github.com/filebutler/filebutler/pkg/rotation"
	"github.com/filebutler/filebutler/pkg/routing"
)

func Classifier(config *configfx.Config) *routing.Classifier {
	return routing.NewClassifier(config.Rules, config.Fallback)
}

func Router(logger *logrus.Logger, config *configfx.Config, classifier *routing.Classifier) *routing.Router {
	return routing.NewRouter(logger, classifier, config.DropZone, config.Categories, config.FallbackDir())
}

func Builder(logger *logrus.Logger, config *configfx.Config) *backup.Builder {
	return backup.NewBuilder(logger, config.Prefix, config.Retention.MinSize, config.Excludes)
}

func RotationManager(
	logger *logrus.Logger,
	config *configfx.Config,
	port domain.StoragePort,
	ledger domain.UploadLedger,
) *rotation.Manager {
	return rotation.NewManager(logger, config.Retention, config.Prefix, config.BackupDir, config.ArchiveDir, port, ledger)
}

func Uploader(logger *logrus.Logger, port domain.StoragePort, ledger domain.UploadLedger) *remote.Uploader {
	return remote.NewUploader(logger, port, ledger)
}

func HealthReporter(
	logger *logrus.Logger,
	config *configfx.Config,
	manager *rotation.Manager,
	port domain.StoragePort,
) *health.Reporter {
	return health.NewReporter(logger, config.RequiredFolders(), config.Retention, manager, port)
}
