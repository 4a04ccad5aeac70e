package backup

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/filebutler/filebutler/pkg/appcontext"
	"github.com/filebutler/filebutler/pkg/domain"
)

// Builder snapshots a source tree into a single timestamped zip artifact.
// It reports an undersized result through the artifact flag; deciding whether
// such an artifact may enter rotation is not its business.
type Builder struct {
	logger logrus.FieldLogger

	prefix   string
	minSize  int64
	excludes []string

	now func() time.Time
}

func NewBuilder(logger logrus.FieldLogger, prefix string, minSize int64, excludes []string) *Builder {
	return &Builder{
		logger:   logger,
		prefix:   prefix,
		minSize:  minSize,
		excludes: excludes,
		now:      time.Now,
	}
}

// Build packs sourceDir into a new artifact inside destDir. The destination
// directory and any prior artifacts are excluded from the snapshot, so
// backups never contain backups.
func (b *Builder) Build(ctx context.Context, sourceDir, destDir string, kind domain.Kind) (domain.Artifact, error) {
	createdAt := b.now().UTC().Truncate(time.Second)

	artifact := domain.Artifact{
		Kind:       kind,
		Generation: domain.GenerationWorking,
	}

	// Artifact keys are unique: a second build within the same second steps
	// the timestamp forward instead of overwriting its predecessor.
	for {
		artifact.Key = domain.ArtifactKey(b.prefix, kind, createdAt)
		artifact.CreatedAt = createdAt
		artifact.LocalPath = filepath.Join(destDir, artifact.FileName())

		if _, err := os.Stat(artifact.LocalPath); os.IsNotExist(err) {
			break
		}

		createdAt = createdAt.Add(time.Second)
	}

	logger := appcontext.LoggerFromContext(b.logger, appcontext.WithArtifactKey(ctx, artifact.Key))

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return artifact, errors.Wrap(domain.ErrPack, err.Error())
	}

	skipInside := ""
	if rel, err := filepath.Rel(sourceDir, destDir); err == nil && !strings.HasPrefix(rel, "..") && rel != "." {
		skipInside = filepath.ToSlash(rel)
	}

	logger.WithFields(logrus.Fields{"source": sourceDir, "kind": kind}).Info("Packing source tree")

	err := zipTree(ctx, artifact.LocalPath, sourceDir, func(rel string, isDir bool) bool {
		return b.excluded(rel, skipInside)
	})
	if err != nil {
		os.Remove(artifact.LocalPath)
		return artifact, errors.Wrap(domain.ErrPack, err.Error())
	}

	info, err := os.Stat(artifact.LocalPath)
	if err != nil {
		return artifact, errors.Wrap(domain.ErrPack, err.Error())
	}
	artifact.Size = info.Size()

	if artifact.Size < b.minSize {
		artifact.Undersized = true
		logger.WithFields(logrus.Fields{
			"size":     artifact.Size,
			"min_size": b.minSize,
		}).Warn("Artifact is below the minimum expected size")
	} else {
		logger.WithField("size", artifact.Size).Info("Artifact created")
	}

	return artifact, nil
}

func (b *Builder) excluded(rel, skipInside string) bool {
	name := path.Base(rel)

	// Hidden and transient system entries never make it into a snapshot.
	if strings.HasPrefix(name, ".") {
		return true
	}
	if strings.HasSuffix(name, ".tmp") || name == "__MACOSX" || name == "Thumbs.db" {
		return true
	}

	// Prior artifacts, wherever they sit.
	if strings.HasPrefix(name, b.prefix+"_") && strings.HasSuffix(name, domain.ArtifactExt) {
		return true
	}

	if skipInside != "" && (rel == skipInside || strings.HasPrefix(rel, skipInside+"/")) {
		return true
	}

	for _, pattern := range b.excludes {
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
	}

	return false
}
