package securefs

import (
	"fmt"
	"os"
	"path/filepath"

	perrors "github.com/PolarWolf314/pulse/internal/errors"
)

// writeFileAtomic writes data to a temp file next to path and renames it
// into place, so readers see either the old or the new content.
func writeFileAtomic(path string, data []byte, fileMode, dirMode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("%w: creating directory %s: %w", perrors.ErrIO, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file in %s: %w", perrors.ErrIO, dir, err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: writing %s: %w", perrors.ErrIO, path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: syncing %s: %w", perrors.ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", perrors.ErrIO, path, err)
	}
	if err := os.Chmod(tmpPath, fileMode); err != nil {
		return fmt.Errorf("%w: setting permissions on %s: %w", perrors.ErrIO, path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: replacing %s: %w", perrors.ErrIO, path, err)
	}

	committed = true
	return nil
}
