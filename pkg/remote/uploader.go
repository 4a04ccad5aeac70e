package remote

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/filebutler/filebutler/pkg/appcontext"
	"github.com/filebutler/filebutler/pkg/domain"
)

// Uploader pushes admitted artifacts through the storage port, at least
// once per artifact. The ledger remembers what already made it out, so a
// failed run's artifacts are simply picked up by the next one under the same
// remote key.
type Uploader struct {
	logger logrus.FieldLogger

	port   domain.StoragePort
	ledger domain.UploadLedger

	now func() time.Time
}

func NewUploader(logger logrus.FieldLogger, port domain.StoragePort, ledger domain.UploadLedger) *Uploader {
	return &Uploader{
		logger: logger,
		port:   port,
		ledger: ledger,
		now:    time.Now,
	}
}

type UploadReport struct {
	Uploaded int `json:"uploaded"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`

	Errs []error `json:"-"`
}

// SyncPending uploads every artifact that has no live upload record yet.
// Upload failures never roll back local rotation decisions; they are
// reported and retried on the next run.
func (u *Uploader) SyncPending(ctx context.Context, artifacts []domain.Artifact) (*UploadReport, error) {
	if err := u.port.Authenticate(ctx); err != nil {
		return nil, err
	}

	report := &UploadReport{}

	for _, artifact := range artifacts {
		logger := appcontext.LoggerFromContext(u.logger, appcontext.WithArtifactKey(ctx, artifact.Key))

		record, err := u.ledger.FindByArtifactKey(ctx, artifact.Key)
		if err != nil {
			report.Failed++
			report.Errs = append(report.Errs, errors.Wrapf(err, "ledger lookup for %s", artifact.Key))
			continue
		}

		if record != nil && record.RemoteDeletedAt == nil {
			logger.Debug("Artifact already uploaded")
			report.Skipped++
			continue
		}

		ref, err := u.port.Put(ctx, artifact)
		if err != nil {
			logger.WithError(err).Warn("Upload failed, will retry on next run")
			report.Failed++
			report.Errs = append(report.Errs, err)
			continue
		}

		_, err = u.ledger.Record(ctx, domain.UploadRecord{
			ArtifactKey: artifact.Key,
			Provider:    u.port.Name(),
			RemoteKey:   ref.Key,
			Size:        ref.Size,
			UploadedAt:  u.now(),
		})
		if err != nil {
			// The object is out; without a record the next run re-puts the
			// same key, which the providers treat as an overwrite.
			logger.WithError(err).Error("Uploaded but unable to record in ledger")
			report.Errs = append(report.Errs, err)
		}

		logger.WithField("remote_key", ref.Key).Info("Artifact uploaded")
		report.Uploaded++
	}

	return report, nil
}
