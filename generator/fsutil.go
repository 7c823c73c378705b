package generator

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// writeFileAtomic writes data next to path and renames it into place, so readers never
// observe a half-written file. The temp name starts with the target's base name.
func writeFileAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(fs, dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// ModTimeSeconds converts a modification time to the float seconds stored in the cache.
// The same conversion is used for writing and comparing, so unchanged files compare equal.
func ModTimeSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
