package health

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/filebutler/filebutler/pkg/domain"
)

// Check is one entry of the health checklist.
type Check struct {
	Name   string `json:"name"`
	Pass   bool   `json:"pass"`
	Reason string `json:"reason"`
}

type Report struct {
	Checks []Check `json:"checks"`
}

func (r *Report) Pass() bool {
	for _, c := range r.Checks {
		if !c.Pass {
			return false
		}
	}
	return true
}

func (r *Report) add(name string, pass bool, format string, args ...interface{}) {
	r.Checks = append(r.Checks, Check{
		Name:   name,
		Pass:   pass,
		Reason: fmt.Sprintf(format, args...),
	})
}

// RotationState is the read side of the rotation manager.
type RotationState interface {
	State(ctx context.Context) (working, archive []domain.Artifact, err error)
}

// Reporter runs the fixed checklist over folders, retention counts, backup
// freshness and the storage session. It only ever reads; a transient storage
// failure in a previous run does not fail a report whose local invariants
// hold.
type Reporter struct {
	logger logrus.FieldLogger

	folders []string
	policy  domain.RetentionPolicy
	state   RotationState
	port    domain.StoragePort

	now func() time.Time
}

func NewReporter(
	logger logrus.FieldLogger,
	folders []string,
	policy domain.RetentionPolicy,
	state RotationState,
	port domain.StoragePort,
) *Reporter {
	return &Reporter{
		logger:  logger,
		folders: folders,
		policy:  policy,
		state:   state,
		port:    port,
		now:     time.Now,
	}
}

func (r *Reporter) Report(ctx context.Context) *Report {
	report := &Report{}

	r.checkFolders(report)
	r.checkRotation(ctx, report)
	r.checkStorage(ctx, report)

	for _, c := range report.Checks {
		entry := r.logger.WithFields(logrus.Fields{"check": c.Name, "reason": c.Reason})
		if c.Pass {
			entry.Debug("Health check passed")
		} else {
			entry.Warn("Health check failed")
		}
	}

	return report
}

func (r *Reporter) checkFolders(report *Report) {
	for _, folder := range r.folders {
		info, err := os.Stat(folder)

		switch {
		case err != nil:
			report.add("folder_exists", false, "%s: %v", folder, err)
		case !info.IsDir():
			report.add("folder_exists", false, "%s is not a directory", folder)
		default:
			report.add("folder_exists", true, folder)
		}
	}
}

func (r *Reporter) checkRotation(ctx context.Context, report *Report) {
	working, archive, err := r.state.State(ctx)
	if err != nil {
		report.add("rotation_state", false, "unable to read rotation state: %v", err)
		return
	}

	report.add("working_count", len(working) <= r.policy.Working,
		"%d working backups, limit %d", len(working), r.policy.Working)

	report.add("archive_count", len(archive) <= r.policy.Archive,
		"%d archived backups, limit %d", len(archive), r.policy.Archive)

	if len(working) == 0 {
		report.add("latest_backup_age", false, "no working backup present")
		report.add("latest_backup_size", false, "no working backup present")
		return
	}

	latest := working[len(working)-1]

	age := r.now().Sub(latest.CreatedAt)
	report.add("latest_backup_age", age <= r.policy.Interval,
		"%s is %s old, expected at most %s", latest.Key, age.Truncate(time.Second), r.policy.Interval)

	report.add("latest_backup_size", latest.Size >= r.policy.MinSize,
		"%s is %d bytes, expected at least %d", latest.Key, latest.Size, r.policy.MinSize)
}

func (r *Reporter) checkStorage(ctx context.Context, report *Report) {
	if err := r.port.Authenticate(ctx); err != nil {
		report.add("storage_session", false, "%s: %v", r.port.Name(), err)
		return
	}

	report.add("storage_session", true, "%s authenticated", r.port.Name())
}
