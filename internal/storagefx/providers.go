package storagefx

import (
	"github.com/sirupsen/logrus"

	"github.com/filebutler/filebutler/internal/configfx"
	"github.com/filebutler/filebutler/pkg/domain"
	"github.com/filebutler/filebutler/pkg/remote"
)

func StorageRegistry(config *configfx.Config, logger *logrus.Logger) (*remote.Registry, error) {
	ports := make(map[string]domain.StoragePort)

	if config.Storage.LocalPath != "" {
		ports["local"] = remote.NewLocalMirror(config.Storage.LocalPath)
	}

	if config.Storage.S3.Endpoint != "" {
		store, err := remote.NewObjectStore(config.Storage.S3)
		if err != nil {
			return nil, err
		}
		ports["s3"] = store
	}

	return remote.NewRegistry(ports), nil
}

func StoragePort(config *configfx.Config, registry *remote.Registry, logger *logrus.Logger) (domain.StoragePort, error) {
	port, err := registry.Select(config.Storage.Provider)
	if err != nil {
		return nil, err
	}

	logger.WithField("provider", port.Name()).Debug("Storage port selected")

	return remote.WithTimeout(port, config.Storage.Timeout), nil
}
