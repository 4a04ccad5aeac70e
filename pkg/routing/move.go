package routing

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// moveFile relocates src to dst so that the caller either observes the full
// file at dst or nothing at all: the content is written to a temp file in the
// destination directory, synced, then renamed into place. Only after the
// rename succeeds is the source removed. A failed copy never leaves a
// truncated file under the final name.
func moveFile(src, dst string) error {
	if err := copyToTempAndRename(src, dst); err != nil {
		return err
	}

	if err := os.Remove(src); err != nil {
		return errors.Wrap(err, "unable to remove source after move")
	}

	return nil
}

func copyToTempAndRename(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	si, err := in.Stat()
	if err != nil {
		return err
	}

	tmp := filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp")

	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, si.Mode().Perm())
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			out.Close()
			os.Remove(tmp)
		}
	}()

	_, err = io.Copy(out, in)
	if err != nil {
		return err
	}

	err = out.Sync()
	if err != nil {
		return err
	}

	err = out.Close()
	if err != nil {
		return err
	}

	return os.Rename(tmp, dst)
}
