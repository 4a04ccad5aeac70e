package rotation

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/filebutler/filebutler/pkg/appcontext"
	"github.com/filebutler/filebutler/pkg/domain"
)

// Manager enforces the retention policy over the backup directories:
// at most W artifacts in the working directory, at most A in the archive
// subdirectory. It is the only component that demotes or deletes artifacts.
type Manager struct {
	logger logrus.FieldLogger

	policy domain.RetentionPolicy
	prefix string

	backupDir  string
	archiveDir string

	port   domain.StoragePort
	ledger domain.UploadLedger
}

func NewManager(
	logger logrus.FieldLogger,
	policy domain.RetentionPolicy,
	prefix string,
	backupDir string,
	archiveDir string,
	port domain.StoragePort,
	ledger domain.UploadLedger,
) *Manager {
	return &Manager{
		logger:     logger,
		policy:     policy,
		prefix:     prefix,
		backupDir:  backupDir,
		archiveDir: archiveDir,
		port:       port,
		ledger:     ledger,
	}
}

// Result describes what one admission (or sweep) did to the tracked set.
// Demotion and eviction failures are best-effort and collected, never fatal.
type Result struct {
	Admitted bool   `json:"admitted"`
	Reason   string `json:"reason,omitempty"`

	Working int `json:"working"`
	Archive int `json:"archive"`

	Demoted []string `json:"demoted,omitempty"`
	Evicted []string `json:"evicted,omitempty"`

	Errs []error `json:"-"`
}

// State rebuilds the current working and archive sets from disk.
func (m *Manager) State(ctx context.Context) (working, archive []domain.Artifact, err error) {
	working, err = scanDir(m.backupDir, m.prefix, domain.GenerationWorking)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to scan working backups")
	}

	archive, err = scanDir(m.archiveDir, m.prefix, domain.GenerationArchive)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to scan archived backups")
	}

	return working, archive, nil
}

// Admit decides the survivors after newArtifact appeared in the working
// directory. An undersized artifact is turned away while at least one valid
// working backup exists; with none, a degraded backup still beats no backup.
func (m *Manager) Admit(ctx context.Context, newArtifact domain.Artifact) (*Result, error) {
	logger := appcontext.LoggerFromContext(m.logger, appcontext.WithArtifactKey(ctx, newArtifact.Key))

	working, _, err := m.State(ctx)
	if err != nil {
		return nil, err
	}

	if newArtifact.Undersized && m.hasValidPeer(working, newArtifact.Key) {
		logger.WithField("size", newArtifact.Size).Warn("Rejecting undersized artifact, a valid working backup already exists")

		result := &Result{Admitted: false, Reason: "undersized"}

		if err := os.Remove(newArtifact.LocalPath); err != nil && !os.IsNotExist(err) {
			result.Errs = append(result.Errs, errors.Wrap(err, "unable to remove rejected artifact"))
		}

		working, archive, err := m.State(ctx)
		if err != nil {
			return result, err
		}
		result.Working, result.Archive = len(working), len(archive)

		return result, nil
	}

	logger.Info("Artifact admitted into working set")

	result, err := m.Sweep(ctx)
	if err != nil {
		return nil, err
	}
	result.Admitted = true

	return result, nil
}

// Sweep re-applies the retention policy to whatever is on disk: demote the
// oldest working artifacts beyond W, then evict the oldest archived ones
// beyond A.
func (m *Manager) Sweep(ctx context.Context) (*Result, error) {
	logger := appcontext.LoggerFromContext(m.logger, ctx)

	working, archive, err := m.State(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	for len(working) > m.policy.Working {
		oldest := working[0]
		working = working[1:]

		if err := m.demote(oldest); err != nil {
			logger.WithError(err).WithField("artifact", oldest.Key).Error("Unable to demote artifact")
			result.Errs = append(result.Errs, err)
			continue
		}

		logger.WithField("artifact", oldest.Key).Info("Demoted working artifact to archive")

		oldest.Generation = domain.GenerationArchive
		archive = append(archive, oldest)
		result.Demoted = append(result.Demoted, oldest.Key)
	}

	// Demotion may interleave timestamps with what already sat in the
	// archive; re-read so eviction sees the true order.
	_, archive, err = m.State(ctx)
	if err != nil {
		return result, err
	}

	for i := 0; len(archive) > m.policy.Archive && i < len(archive); {
		candidate := archive[i]

		if m.soleValidBackup(ctx, candidate) {
			logger.WithField("artifact", candidate.Key).Warn("Refusing to evict the only valid backup")
			i++
			continue
		}

		archive = append(archive[:i], archive[i+1:]...)

		evictErrs := m.evict(ctx, candidate)
		result.Errs = append(result.Errs, evictErrs...)
		result.Evicted = append(result.Evicted, candidate.Key)

		logger.WithFields(logrus.Fields{
			"artifact": candidate.Key,
			"failures": len(evictErrs),
		}).Info("Evicted archived artifact")
	}

	working, archive, err = m.State(ctx)
	if err != nil {
		return result, err
	}
	result.Working, result.Archive = len(working), len(archive)

	return result, nil
}

func (m *Manager) demote(artifact domain.Artifact) error {
	if err := os.MkdirAll(m.archiveDir, 0o755); err != nil {
		return err
	}

	return os.Rename(artifact.LocalPath, filepath.Join(m.archiveDir, artifact.FileName()))
}

// evict removes the artifact locally and, if it was ever uploaded, remotely.
// The two deletions are independent: either may fail without blocking the
// other, and every failure is reported.
func (m *Manager) evict(ctx context.Context, artifact domain.Artifact) []error {
	var errs []error

	if err := os.Remove(artifact.LocalPath); err != nil && !os.IsNotExist(err) {
		errs = append(errs, errors.Wrapf(err, "unable to delete local artifact %s", artifact.Key))
	}

	record, err := m.ledger.FindByArtifactKey(ctx, artifact.Key)
	if err != nil {
		errs = append(errs, errors.Wrapf(err, "unable to look up upload record for %s", artifact.Key))
		return errs
	}

	if record == nil || record.RemoteDeletedAt != nil {
		return errs
	}

	ref := domain.RemoteRef{Key: record.RemoteKey, Size: record.Size}

	if err := m.port.Delete(ctx, ref); err != nil {
		errs = append(errs, errors.Wrapf(domain.ErrDelete, "artifact %s: %v", artifact.Key, err))
		return errs
	}

	if err := m.ledger.MarkRemoteDeleted(ctx, *record); err != nil {
		errs = append(errs, errors.Wrapf(err, "unable to mark remote copy of %s deleted", artifact.Key))
	}

	return errs
}

func (m *Manager) hasValidPeer(working []domain.Artifact, excludeKey string) bool {
	for _, a := range working {
		if a.Key == excludeKey {
			continue
		}
		if a.Size >= m.policy.MinSize {
			return true
		}
	}

	return false
}

// soleValidBackup reports whether candidate is the last artifact anywhere
// that meets the minimum size. Such an artifact is never deleted: the system
// always keeps at least one usable backup.
func (m *Manager) soleValidBackup(ctx context.Context, candidate domain.Artifact) bool {
	if candidate.Size < m.policy.MinSize {
		return false
	}

	working, archive, err := m.State(ctx)
	if err != nil {
		return true
	}

	for _, a := range append(working, archive...) {
		if a.Key == candidate.Key {
			continue
		}
		if a.Size >= m.policy.MinSize {
			return false
		}
	}

	return true
}
