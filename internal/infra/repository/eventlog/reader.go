package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/daichi-lab/cgtutor/internal/app"
)

// ReadEvents parses a participant log file line by line. Blank lines
// and lines that fail to parse (a writer crash can truncate the final
// line) are skipped with a warning, never a failure; only opening or
// scanning the file itself can error.
func ReadEvents(afs afero.Fs, path string) ([]Event, error) {
	f, err := afs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("eventlog: open %s: %w", path, err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			app.GetLogger().Warn("skipping corrupted event log line %d in %s: %v", lineNum, path, err)
			continue
		}
		events = append(events, eventFromMap(entry))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("eventlog: read %s: %w", path, err)
	}
	return events, nil
}
