package app

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultLogDir returns the platform default directory for participant
// logs, matching what study operators expect to find on lab machines.
func DefaultLogDir() string {
	if runtime.GOOS == "windows" {
		return `C:\temp\tutorial_logs`
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, "tutorial_logs")
}

// SummaryCSVPath derives the stage summary output path from a
// participant log path by swapping the extension.
func SummaryCSVPath(logPath string) string {
	ext := filepath.Ext(logPath)
	return logPath[:len(logPath)-len(ext)] + ".stage_summary.csv"
}
