package backup

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
)

// zipTree packs dir into outfile. Traversal is a sorted recursive ReadDir,
// so the same input tree always yields the same member set and member order.
// Members are stored under their slash-separated path relative to dir.
func zipTree(ctx context.Context, outfile, dir string, excluded func(rel string, isDir bool) bool) error {
	zf, err := os.Create(outfile)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(zf)

	err = addFiles(ctx, zw, outfile, dir, "", excluded)
	if err != nil {
		zw.Close()
		zf.Close()
		return err
	}

	err = zw.Close()
	if err != nil {
		zf.Close()
		return err
	}

	return zf.Close()
}

func addFiles(ctx context.Context, w *zip.Writer, outfile, basePath, baseInZip string, excluded func(rel string, isDir bool) bool) error {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		full := filepath.Join(basePath, entry.Name())
		rel := path.Join(baseInZip, entry.Name())

		// Never pack the archive being written.
		if full == outfile {
			continue
		}

		if excluded(rel, entry.IsDir()) {
			continue
		}

		if entry.IsDir() {
			err = addFiles(ctx, w, outfile, full, rel, excluded)
			if err != nil {
				return err
			}

			continue
		}

		if !entry.Type().IsRegular() {
			continue
		}

		f, err := os.Open(full)
		if err != nil {
			return err
		}

		zw, err := w.Create(rel)
		if err != nil {
			f.Close()
			return err
		}

		_, err = io.Copy(zw, f)
		if err != nil {
			f.Close()
			return err
		}

		err = f.Close()
		if err != nil {
			return err
		}
	}

	return nil
}
