package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/filebutler/filebutler/pkg/appcontext"
	"github.com/filebutler/filebutler/pkg/health"
)

type HealthReporter interface {
	Report(ctx context.Context) *health.Report
}

// HealthHandler serves the checklist as JSON; 200 when every check passes,
// 503 otherwise, so the endpoint doubles as a monitoring probe.
type HealthHandler struct {
	logger   logrus.FieldLogger
	reporter HealthReporter
}

func NewHealthHandler(logger logrus.FieldLogger, reporter HealthReporter) *HealthHandler {
	return &HealthHandler{
		logger:   logger,
		reporter: reporter,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	logger := appcontext.LoggerFromContext(h.logger, ctx)

	report := h.reporter.Report(ctx)

	w.Header().Set("Content-Type", "application/json")
	if !report.Pass() {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(report); err != nil {
		logger.WithError(err).Error("Unable to encode health report")
	}
}
