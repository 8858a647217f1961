// Package summary rebuilds per-stage research metrics from a raw
// participant event log. Aggregation is a pure function of the log
// file: it is re-derived from scratch on every run, which makes
// repeated exports idempotent.
package summary

import (
	"sort"

	"github.com/spf13/afero"

	"github.com/daichi-lab/cgtutor/internal/domain/stage"
	"github.com/daichi-lab/cgtutor/internal/infra/repository/eventlog"
)

// Row is the aggregate for one (chapter, stage) group. StalledSeconds
// and Completed are nil when the group never saw a finalize event.
type Row struct {
	Key            stage.Key
	Failures       int
	StalledSeconds *float64
	Completed      *bool
}

// Result is a full aggregation pass over one log file.
type Result struct {
	LogPath             string
	Rows                []Row
	TotalStalledSeconds float64
}

// Aggregate streams the log at logPath and groups validate/finalize
// events by (chapter, stage). Failures count failed validates;
// stalled seconds and completion take the values of the last finalize
// seen for the group (last-write-wins, so a retried stage reports only
// its most recent attempt). The total sums the resolved stall times of
// groups that finalized at least once.
func Aggregate(afs afero.Fs, logPath string) (*Result, error) {
	events, err := eventlog.ReadEvents(afs, logPath)
	if err != nil {
		return nil, err
	}

	byStage := map[stage.Key]*Row{}
	for _, ev := range events {
		if ev.Kind != eventlog.KindValidate && ev.Kind != eventlog.KindFinalize {
			continue
		}
		if ev.Chapter < 1 || ev.Stage < 1 {
			continue
		}
		key := stage.NewKey(ev.Chapter, ev.Stage)
		row, ok := byStage[key]
		if !ok {
			row = &Row{Key: key}
			byStage[key] = row
		}
		switch ev.Kind {
		case eventlog.KindValidate:
			if ev.OK != nil && !*ev.OK {
				row.Failures++
			}
		case eventlog.KindFinalize:
			if ev.StalledSeconds != nil {
				v := *ev.StalledSeconds
				row.StalledSeconds = &v
			}
			if ev.Completed != nil {
				v := *ev.Completed
				row.Completed = &v
			}
		}
	}

	rows := make([]Row, 0, len(byStage))
	for _, row := range byStage {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Key.Chapter != rows[j].Key.Chapter {
			return rows[i].Key.Chapter < rows[j].Key.Chapter
		}
		return rows[i].Key.Stage < rows[j].Key.Stage
	})

	total := 0.0
	for _, row := range rows {
		if row.StalledSeconds != nil {
			total += *row.StalledSeconds
		}
	}

	return &Result{LogPath: logPath, Rows: rows, TotalStalledSeconds: total}, nil
}
