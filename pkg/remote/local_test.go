package remote

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filebutler/filebutler/pkg/domain"
)

func localArtifact(t *testing.T, dir, key string, content string) domain.Artifact {
	t.Helper()

	createdAt, err := time.Parse(domain.TimestampLayout, "2024-06-01_02-00-00")
	require.NoError(t, err)

	artifact := domain.Artifact{
		Key:       key,
		Kind:      domain.KindDaily,
		CreatedAt: createdAt,
		Size:      int64(len(content)),
		LocalPath: filepath.Join(dir, key+domain.ArtifactExt),
	}

	require.NoError(t, os.WriteFile(artifact.LocalPath, []byte(content), 0o644))

	return artifact
}

func TestLocalMirror_PutListDelete(t *testing.T) {
	mirror := NewLocalMirror(filepath.Join(t.TempDir(), "mirror"))

	require.NoError(t, mirror.Authenticate(context.Background()))

	artifact := localArtifact(t, t.TempDir(), "Acme_Backup_daily_2024-06-01_02-00-00", "payload")

	ref, err := mirror.Put(context.Background(), artifact)

	require.NoError(t, err)
	assert.Equal(t, artifact.Key, ref.Key)
	assert.Equal(t, int64(len("payload")), ref.Size)

	refs, err := mirror.List(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, artifact.Key, refs[0].Key)

	require.NoError(t, mirror.Delete(context.Background(), ref))

	refs, err = mirror.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestLocalMirror_RepeatedPutOverwrites(t *testing.T) {
	mirror := NewLocalMirror(filepath.Join(t.TempDir(), "mirror"))

	dir := t.TempDir()
	artifact := localArtifact(t, dir, "Acme_Backup_daily_2024-06-01_02-00-00", "first")

	_, err := mirror.Put(context.Background(), artifact)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(artifact.LocalPath, []byte("second pass"), 0o644))

	ref, err := mirror.Put(context.Background(), artifact)

	require.NoError(t, err)
	assert.Equal(t, int64(len("second pass")), ref.Size)

	refs, err := mirror.List(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, int64(len("second pass")), refs[0].Size)
}

func TestLocalMirror_DeleteMissingIsNotAnError(t *testing.T) {
	mirror := NewLocalMirror(filepath.Join(t.TempDir(), "mirror"))

	require.NoError(t, mirror.Authenticate(context.Background()))

	err := mirror.Delete(context.Background(), domain.RemoteRef{Key: "Acme_Backup_daily_2024-06-01_02-00-00"})

	assert.NoError(t, err)
}

func TestLocalMirror_ListOnEmptyRoot(t *testing.T) {
	mirror := NewLocalMirror(filepath.Join(t.TempDir(), "never-created"))

	refs, err := mirror.List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, refs)
}
