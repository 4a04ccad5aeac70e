package domain

import (
	"time"

	"github.com/pkg/errors"
)

// RetentionPolicy is read-only at run time. Violations discovered on disk are
// reported by the health checks, never silently corrected.
type RetentionPolicy struct {
	// Working is the maximum number of working (most recent) backups.
	Working int

	// Archive is the maximum number of demoted historical backups.
	Archive int

	// MinSize is the smallest artifact size, in bytes, considered a
	// complete backup.
	MinSize int64

	// Interval is the expected time between runs, used to judge the age of
	// the freshest backup.
	Interval time.Duration
}

func (p RetentionPolicy) Validate() error {
	if p.Working < 1 {
		return errors.Errorf("retention: working count must be at least 1, got %d", p.Working)
	}
	if p.Archive < 0 {
		return errors.Errorf("retention: archive count must not be negative, got %d", p.Archive)
	}
	if p.MinSize < 0 {
		return errors.Errorf("retention: min size must not be negative, got %d", p.MinSize)
	}
	if p.Interval <= 0 {
		return errors.Errorf("retention: interval must be positive, got %s", p.Interval)
	}

	return nil
}
