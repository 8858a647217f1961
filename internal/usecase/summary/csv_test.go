package summary

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daichi-lab/cgtutor/internal/domain/stage"
)

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

func TestWriteCSVShape(t *testing.T) {
	afs := afero.NewMemMapFs()
	res := &Result{
		LogPath: "/logs/P01_20260314_090000.jsonl",
		Rows: []Row{
			{Key: stage.NewKey(1, 1), Failures: 2, StalledSeconds: floatPtr(3.0), Completed: boolPtr(true)},
			{Key: stage.NewKey(1, 2), Failures: 1},
		},
		TotalStalledSeconds: 3.0,
	}

	outPath, err := WriteCSV(afs, res)
	require.NoError(t, err)
	assert.Equal(t, "/logs/P01_20260314_090000.stage_summary.csv", outPath)

	data, err := afero.ReadFile(afs, outPath)
	require.NoError(t, err)

	bom := []byte{0xEF, 0xBB, 0xBF}
	require.True(t, bytes.HasPrefix(data, bom), "output must start with a UTF-8 BOM")

	r := csv.NewReader(bytes.NewReader(data[len(bom):]))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5, "two header lines, column header, two rows (blank line is skipped by the reader)")

	assert.Equal(t, []string{"participant_log_file", "P01_20260314_090000.jsonl"}, records[0])
	assert.Equal(t, []string{"total_stalled_seconds_finalize_only", "3.000"}, records[1])
	assert.Equal(t, []string{"chapter", "stage", "failures", "stalled_seconds_finalize_only", "completed"}, records[2])
	assert.Equal(t, []string{"1", "1", "2", "3.000", "true"}, records[3])
	assert.Equal(t, []string{"1", "2", "1", "", ""}, records[4])
}

func TestWriteCSVEmptyResult(t *testing.T) {
	afs := afero.NewMemMapFs()
	res := &Result{LogPath: "/logs/empty.jsonl"}

	outPath, err := WriteCSV(afs, res)
	require.NoError(t, err)

	data, err := afero.ReadFile(afs, outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "total_stalled_seconds_finalize_only,0.000")
}

func TestWriteCSVOverwritesPreviousExport(t *testing.T) {
	afs := afero.NewMemMapFs()
	res := &Result{
		LogPath:             "/logs/p.jsonl",
		Rows:                []Row{{Key: stage.NewKey(1, 1), Failures: 1}},
		TotalStalledSeconds: 0,
	}

	first, err := WriteCSV(afs, res)
	require.NoError(t, err)
	firstData, err := afero.ReadFile(afs, first)
	require.NoError(t, err)

	second, err := WriteCSV(afs, res)
	require.NoError(t, err)
	secondData, err := afero.ReadFile(afs, second)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstData, secondData)
}
