package remote

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/filebutler/filebutler/pkg/domain"
)

// LocalMirror is the filesystem binding of the storage port, used for
// mirroring onto a second volume and in tests. Authentication is trivially
// successful once the root exists.
type LocalMirror struct {
	root string
}

func NewLocalMirror(root string) *LocalMirror {
	return &LocalMirror{
		root: root,
	}
}

func (m *LocalMirror) Name() string {
	return "local"
}

func (m *LocalMirror) Authenticate(ctx context.Context) error {
	return os.MkdirAll(m.root, 0o755)
}

func (m *LocalMirror) Put(ctx context.Context, artifact domain.Artifact) (domain.RemoteRef, error) {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return domain.RemoteRef{}, err
	}

	dst := filepath.Join(m.root, artifact.FileName())

	size, err := copyFile(artifact.LocalPath, dst)
	if err != nil {
		return domain.RemoteRef{}, err
	}

	return domain.RemoteRef{
		Key:        artifact.Key,
		Size:       size,
		ModifiedAt: time.Now(),
	}, nil
}

func (m *LocalMirror) List(ctx context.Context) ([]domain.RemoteRef, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var refs []domain.RemoteRef

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), domain.ArtifactExt) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		refs = append(refs, domain.RemoteRef{
			Key:        strings.TrimSuffix(entry.Name(), domain.ArtifactExt),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	return refs, nil
}

func (m *LocalMirror) Delete(ctx context.Context, ref domain.RemoteRef) error {
	err := os.Remove(filepath.Join(m.root, ref.Key+domain.ArtifactExt))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// copyFile writes dst via a temp file and rename, so a mirrored artifact is
// either complete or absent. Re-putting the same key overwrites in place,
// which keeps uploads idempotent.
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	tmp := dst + ".partial"

	out, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}

	size, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		os.Remove(tmp)
		return 0, err
	}

	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tmp)
		return 0, err
	}

	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return 0, err
	}

	return size, os.Rename(tmp, dst)
}
