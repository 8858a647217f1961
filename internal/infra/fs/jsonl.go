// Package fs provides durable file primitives for the append-only
// participant logs.
package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// AppendJSONLine marshals entry and appends it to path as one JSON
// Lines record, creating the parent directory and file on first use.
// The file is fsynced after the write so a crash loses at most the
// line being written.
func AppendJSONLine(afs afero.Fs, path string, entry map[string]interface{}) error {
	if path == "" {
		return fmt.Errorf("append jsonl: path is empty")
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("append jsonl %s: marshal: %w", path, err)
	}

	if err := afs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("append jsonl %s: create parent dir: %w", path, err)
	}

	f, err := afs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("append jsonl %s: open: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("append jsonl %s: write: %w", path, err)
	}

	// Values never span lines, so a torn write corrupts one record at
	// most and readers skip it.
	if err := f.Sync(); err != nil {
		return fmt.Errorf("append jsonl %s: sync: %w", path, err)
	}

	return nil
}
