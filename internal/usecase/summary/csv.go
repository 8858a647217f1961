package summary

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/daichi-lab/cgtutor/internal/app"
	"github.com/daichi-lab/cgtutor/internal/infra/fs"
)

// WriteCSV renders the aggregation result next to the log file as
// <log>.stage_summary.csv and returns the output path. The file is
// UTF-8 with a byte-order mark and carries a two-line header block
// before the column header; downstream spreadsheet tooling depends on
// this exact shape. The export is written atomically.
func WriteCSV(afs afero.Fs, res *Result) (string, error) {
	outPath := app.SummaryCSVPath(res.LogPath)

	// UTF8BOM emits the mark before the first byte, which keeps Excel
	// from misreading the encoding.
	var buf bytes.Buffer
	enc := unicode.UTF8BOM.NewEncoder()
	w := csv.NewWriter(transform.NewWriter(&buf, enc))

	records := [][]string{
		{"participant_log_file", filepath.Base(res.LogPath)},
		{"total_stalled_seconds_finalize_only", strconv.FormatFloat(res.TotalStalledSeconds, 'f', 3, 64)},
		{},
		{"chapter", "stage", "failures", "stalled_seconds_finalize_only", "completed"},
	}
	for _, row := range res.Rows {
		stalled := ""
		if row.StalledSeconds != nil {
			stalled = strconv.FormatFloat(*row.StalledSeconds, 'f', 3, 64)
		}
		completed := ""
		if row.Completed != nil {
			completed = strconv.FormatBool(*row.Completed)
		}
		records = append(records, []string{
			strconv.Itoa(row.Key.Chapter),
			strconv.Itoa(row.Key.Stage),
			strconv.Itoa(row.Failures),
			stalled,
			completed,
		})
	}

	if err := w.WriteAll(records); err != nil {
		return "", fmt.Errorf("summary csv: render %s: %w", outPath, err)
	}
	if err := fs.WriteFileAtomic(afs, outPath, buf.Bytes()); err != nil {
		return "", fmt.Errorf("summary csv: %w", err)
	}
	return outPath, nil
}
