package routing

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/filebutler/filebutler/pkg/appcontext"
	"github.com/filebutler/filebutler/pkg/domain"
)

// Router processes every regular, non-hidden file sitting directly in the
// drop zone: classify, dedupe, place. A single file's failure never aborts
// the run; the report carries one outcome per scanned file.
type Router struct {
	logger logrus.FieldLogger

	classifier *Classifier

	dropZone    string
	dirs        map[string]string
	fallbackDir string
}

func NewRouter(
	logger logrus.FieldLogger,
	classifier *Classifier,
	dropZone string,
	dirs map[string]string,
	fallbackDir string,
) *Router {
	return &Router{
		logger:      logger,
		classifier:  classifier,
		dropZone:    dropZone,
		dirs:        dirs,
		fallbackDir: fallbackDir,
	}
}

func (r *Router) Run(ctx context.Context) (*domain.RouteReport, error) {
	entries, err := os.ReadDir(r.dropZone)
	if err != nil {
		return nil, err
	}

	report := &domain.RouteReport{}

	for _, entry := range entries {
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		outcome := r.process(ctx, entry.Name())

		logger := appcontext.LoggerFromContext(r.logger, appcontext.WithCategory(ctx, outcome.Record.Category))
		logger = logger.WithFields(logrus.Fields{
			"file":   outcome.Record.Name,
			"status": outcome.Status.String(),
		})

		if outcome.Err != nil {
			logger.WithError(outcome.Err).WithField("reason", outcome.Reason).Warn("File not routed")
		} else {
			logger.Info("File processed")
		}

		report.Append(outcome)
	}

	return report, nil
}

func (r *Router) process(ctx context.Context, name string) domain.RoutingOutcome {
	record := domain.FileRecord{
		SourcePath: filepath.Join(r.dropZone, name),
		Name:       name,
	}

	outcome := domain.RoutingOutcome{Record: record}

	info, err := os.Stat(record.SourcePath)
	if err != nil {
		outcome.Status = domain.StatusSkippedInvalid
		outcome.Reason = failReason(err)
		outcome.Err = err
		return outcome
	}
	record.Size = info.Size()

	// Zero-length and unreadable files stay in the drop zone untouched.
	if record.Size == 0 {
		outcome.Record = record
		outcome.Status = domain.StatusSkippedInvalid
		outcome.Reason = domain.ReasonInvalidContent
		return outcome
	}

	fingerprint, err := Fingerprint(record.SourcePath)
	if err != nil {
		outcome.Record = record
		outcome.Status = domain.StatusSkippedInvalid
		outcome.Reason = failReason(err)
		outcome.Err = err
		return outcome
	}
	record.Fingerprint = fingerprint

	record.Category = r.classifier.Classify(name)
	outcome.Record = record

	destDir, ok := r.dirs[record.Category]
	if !ok {
		destDir = r.fallbackDir
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		outcome.Status = domain.StatusFailed
		outcome.Reason = failReason(err)
		outcome.Err = err
		return outcome
	}

	duplicate, err := r.findDuplicate(record, destDir)
	if err != nil {
		outcome.Status = domain.StatusFailed
		outcome.Reason = failReason(err)
		outcome.Err = err
		return outcome
	}

	if duplicate != "" {
		// The destination copy is authoritative, drop the source.
		if err := os.Remove(record.SourcePath); err != nil {
			outcome.Status = domain.StatusFailed
			outcome.Reason = failReason(err)
			outcome.Err = err
			return outcome
		}

		outcome.Destination = duplicate
		outcome.Status = domain.StatusSkippedDuplicate
		return outcome
	}

	dst, err := r.resolveDestination(record, destDir)
	if err != nil {
		outcome.Status = domain.StatusFailed
		outcome.Reason = failReason(err)
		outcome.Err = err
		return outcome
	}

	if err := moveFile(record.SourcePath, dst); err != nil {
		outcome.Status = domain.StatusFailed
		outcome.Reason = failReason(err)
		outcome.Err = err
		return outcome
	}

	outcome.Destination = dst
	outcome.Status = domain.StatusMoved
	return outcome
}

// findDuplicate looks for an existing destination file with the same content
// fingerprint. Only files sharing the extension are compared.
func (r *Router) findDuplicate(record domain.FileRecord, destDir string) (string, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(record.Name))

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) != ext {
			continue
		}

		existing := filepath.Join(destDir, entry.Name())

		fingerprint, err := Fingerprint(existing)
		if err != nil {
			continue
		}

		if fingerprint == record.Fingerprint {
			return existing, nil
		}
	}

	return "", nil
}

// resolveDestination picks a unique destination path. On a name collision
// with different content a suffix derived from the fingerprint is appended,
// so the resolved name is deterministic for a given file.
func (r *Router) resolveDestination(record domain.FileRecord, destDir string) (string, error) {
	dst := filepath.Join(destDir, record.Name)

	if _, err := os.Stat(dst); os.IsNotExist(err) {
		return dst, nil
	} else if err != nil {
		return "", err
	}

	ext := filepath.Ext(record.Name)
	stem := strings.TrimSuffix(record.Name, ext)

	for _, n := range []int{8, len(record.Fingerprint)} {
		candidate := filepath.Join(destDir, stem+"_"+record.Fingerprint[:n]+ext)

		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil {
			return "", err
		}
	}

	return "", errors.Errorf("unable to find collision-free name for %s in %s", record.Name, destDir)
}

func failReason(err error) domain.FailReason {
	if os.IsPermission(err) {
		return domain.ReasonPermissionDenied
	}
	return domain.ReasonIOError
}
