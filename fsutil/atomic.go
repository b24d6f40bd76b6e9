package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirPerm is the permission used for directories created on behalf of a
// private file (config dir, ~/.ssh).
const DirPerm os.FileMode = 0o700

// WriteFileAtomic writes data to path by writing a temp file in the same
// directory and renaming it over the target. The temp file is removed on
// every error path. perm is applied before the rename, so the target never
// exists with looser permissions.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	// Best effort: persist the rename itself.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// CopyFileAtomic copies src to dst through WriteFileAtomic.
func CopyFileAtomic(src, dst string, perm os.FileMode) error {
	data, err := os.ReadFile(src) //nolint:gosec // user-provided path expected
	if err != nil {
		return err
	}
	return WriteFileAtomic(dst, data, perm)
}

// Exists reports whether something occupies path. Errors other than
// "not exist" are reported as present so callers never clobber a file
// they could not stat.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !os.IsNotExist(err)
}
