package fsutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock takes an exclusive advisory lock on path, creating the parent
// directory when needed. The returned function releases it.
//
// The lock only serializes ghup invocations against each other; editors
// touching the same files are not detected.
func Lock(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	return func() { _ = fl.Unlock() }, nil
}
