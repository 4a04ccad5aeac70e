package serverfx

import (
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/filebutler/filebutler/pkg/health"
	"github.com/filebutler/filebutler/pkg/http/handler"
	"github.com/filebutler/filebutler/pkg/rotation"
)

func HealthHandler(logger *logrus.Logger, reporter *health.Reporter) *handler.HealthHandler {
	return handler.NewHealthHandler(logger, reporter)
}

func BackupsHandler(logger *logrus.Logger, manager *rotation.Manager) *handler.BackupsHandler {
	return handler.NewBackupsHandler(logger, manager)
}

func RegisterHandlers(router *mux.Router, healthHandler *handler.HealthHandler, backupsHandler *handler.BackupsHandler) {
	router.Handle("/health", healthHandler)
	router.Handle("/backups", backupsHandler)
}
