package fs

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// WriteFileAtomic writes data to path via a temp file and rename, so a
// crash mid-export never leaves a partially written file behind. The
// summary CSV uses this; the event log appends instead.
func WriteFileAtomic(afs afero.Fs, path string, data []byte) error {
	if err := afs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("atomic write %s: create parent dir: %w", path, err)
	}

	tmp := path + ".tmp"
	f, err := afs.Create(tmp)
	if err != nil {
		return fmt.Errorf("atomic write %s: create temp: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = afs.Remove(tmp)
		return fmt.Errorf("atomic write %s: write: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = afs.Remove(tmp)
		return fmt.Errorf("atomic write %s: sync: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = afs.Remove(tmp)
		return fmt.Errorf("atomic write %s: close: %w", path, err)
	}

	if err := afs.Rename(tmp, path); err != nil {
		_ = afs.Remove(tmp)
		return fmt.Errorf("atomic write %s: rename: %w", path, err)
	}
	return nil
}
