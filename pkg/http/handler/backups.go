package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/filebutler/filebutler/pkg/appcontext"
	"github.com/filebutler/filebutler/pkg/domain"
)

type RotationState interface {
	State(ctx context.Context) (working, archive []domain.Artifact, err error)
}

// BackupsHandler exposes the currently retained artifacts, reconstructed
// from disk on every request.
type BackupsHandler struct {
	logger logrus.FieldLogger
	state  RotationState
}

func NewBackupsHandler(logger logrus.FieldLogger, state RotationState) *BackupsHandler {
	return &BackupsHandler{
		logger: logger,
		state:  state,
	}
}

type backupResponse struct {
	Key        string `json:"key"`
	Kind       string `json:"kind"`
	Generation string `json:"generation"`
	Size       int64  `json:"size"`
	CreatedAt  int64  `json:"created_at"`
}

func (h *BackupsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	logger := appcontext.LoggerFromContext(h.logger, ctx)

	working, archive, err := h.state.State(ctx)
	if err != nil {
		logger.WithError(err).Error("Unable to read rotation state")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	result := make([]backupResponse, 0, len(working)+len(archive))

	for _, a := range append(working, archive...) {
		result = append(result, backupResponse{
			Key:        a.Key,
			Kind:       string(a.Kind),
			Generation: a.Generation.String(),
			Size:       a.Size,
			CreatedAt:  a.CreatedAt.Unix(),
		})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.WithError(err).Error("Unable to encode response")
	}
}
