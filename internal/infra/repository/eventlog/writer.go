package eventlog

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"

	"github.com/daichi-lab/cgtutor/internal/buildinfo"
	"github.com/daichi-lab/cgtutor/internal/infra/fs"
)

// SanitizeParticipantID replaces every character that is not
// alphanumeric, '-' or '_' with '_'. An id that sanitizes to the empty
// string is unusable.
func SanitizeParticipantID(id string) string {
	out := make([]rune, 0, len(id))
	for _, ch := range id {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
			out = append(out, ch)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// Writer appends participant events to a per-session JSON Lines file.
// The file is created lazily on the first append, named from the
// sanitized participant id and the creation timestamp, and reused for
// the rest of the session. Writers are single-goroutine by contract;
// events land in invocation order.
type Writer struct {
	fs            afero.Fs
	dir           string
	participantID string
	clock         func() time.Time

	path      string
	sessionID string
}

// NewWriter creates a writer that logs under dir for the given raw
// participant id.
func NewWriter(afs afero.Fs, dir, participantID string) *Writer {
	return NewWriterWithClock(afs, dir, participantID, time.Now)
}

// NewWriterWithClock is NewWriter with an injected clock, used by tests
// and the deterministic replay harness.
func NewWriterWithClock(afs afero.Fs, dir, participantID string, clock func() time.Time) *Writer {
	return &Writer{
		fs:            afs,
		dir:           dir,
		participantID: SanitizeParticipantID(participantID),
		clock:         clock,
	}
}

// ParticipantID returns the sanitized participant id.
func (w *Writer) ParticipantID() string {
	return w.participantID
}

// Path returns the log file path, or "" before the first append.
func (w *Writer) Path() string {
	return w.path
}

// SessionID returns the ULID assigned when the log file was created,
// or "" before the first append.
func (w *Writer) SessionID() string {
	return w.sessionID
}

// Append writes one event as a JSON line. The first successful call
// creates the file and writes a session_start record ahead of the
// event. Errors are returned for the caller to hold as recoverable
// state; they never abort the session.
func (w *Writer) Append(e Event) error {
	if w.participantID == "" {
		return fmt.Errorf("eventlog: participant id is empty after sanitization")
	}
	if err := w.ensureFile(); err != nil {
		return err
	}
	e.ParticipantID = w.participantID
	if err := fs.AppendJSONLine(w.fs, w.path, e.toMap()); err != nil {
		return fmt.Errorf("eventlog: %w", err)
	}
	return nil
}

// ensureFile lazily creates the session log file and its session_start
// record. If the file already exists the established path is kept.
func (w *Writer) ensureFile() error {
	if w.path != "" {
		if ok, _ := afero.Exists(w.fs, w.path); ok {
			return nil
		}
	}

	now := w.clock()
	w.sessionID = newSessionID(now)
	path := filepath.Join(w.dir, fmt.Sprintf("%s_%s.jsonl", w.participantID, now.Format("20060102_150405")))

	start := NewSessionStartEvent(unixSeconds(now), w.participantID, w.sessionID, buildinfo.GetVersion())
	if err := fs.AppendJSONLine(w.fs, path, start.toMap()); err != nil {
		return fmt.Errorf("eventlog: create session log: %w", err)
	}

	w.path = path
	return nil
}

// newSessionID generates a ULID for the session record.
func newSessionID(now time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
