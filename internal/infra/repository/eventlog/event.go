// Package eventlog persists participant telemetry as append-only JSON
// Lines files, one per participant session, and reads them back
// tolerantly for offline aggregation. The line format is a
// compatibility contract with downstream analysis tooling.
package eventlog

import (
	"github.com/daichi-lab/cgtutor/internal/domain/stage"
)

// Event kinds persisted in the "event" field.
const (
	KindSessionStart = "session_start"
	KindSetup        = "setup"
	KindValidate     = "validate"
	KindFinalize     = "finalize"
)

// Event is one participant log record. Kind decides which fields are
// meaningful; optional booleans and floats are pointers so a missing
// field in a hand-edited or older log stays distinguishable from a
// zero value.
type Event struct {
	T             float64 // unix seconds
	ParticipantID string
	Kind          string

	// session_start
	SessionID  string
	AppVersion string

	// setup / validate / finalize
	Chapter int
	Stage   int

	// validate
	OK           *bool
	Reason       string
	Message      string
	FailCount    int
	StallSeconds float64

	// finalize
	Completed      *bool
	FailedCount    int
	StalledSeconds *float64
	LastReason     string
	LastMessage    string
	StageStartedAt float64
}

// NewSessionStartEvent records the creation of a participant log file.
func NewSessionStartEvent(t float64, participantID, sessionID, appVersion string) Event {
	return Event{
		T:             t,
		ParticipantID: participantID,
		Kind:          KindSessionStart,
		SessionID:     sessionID,
		AppVersion:    appVersion,
	}
}

// NewSetupEvent records a stage setup.
func NewSetupEvent(t float64, participantID string, key stage.Key) Event {
	return Event{
		T:             t,
		ParticipantID: participantID,
		Kind:          KindSetup,
		Chapter:       key.Chapter,
		Stage:         key.Stage,
	}
}

// NewValidateEvent records one validation attempt and its outcome.
func NewValidateEvent(t float64, participantID string, key stage.Key, out stage.Outcome, failCount int, stallSeconds float64) Event {
	ok := out.OK
	return Event{
		T:             t,
		ParticipantID: participantID,
		Kind:          KindValidate,
		Chapter:       key.Chapter,
		Stage:         key.Stage,
		OK:            &ok,
		Reason:        string(out.Reason),
		Message:       out.Message,
		FailCount:     failCount,
		StallSeconds:  stallSeconds,
	}
}

// NewFinalizeEvent records the close-out of a stage attempt.
func NewFinalizeEvent(t float64, participantID string, key stage.Key, completed bool, failedCount int, stalledSeconds float64, lastReason stage.ReasonCode, lastMessage string, stageStartedAt float64) Event {
	return Event{
		T:              t,
		ParticipantID:  participantID,
		Kind:           KindFinalize,
		Chapter:        key.Chapter,
		Stage:          key.Stage,
		Completed:      &completed,
		FailedCount:    failedCount,
		StalledSeconds: &stalledSeconds,
		LastReason:     string(lastReason),
		LastMessage:    lastMessage,
		StageStartedAt: stageStartedAt,
	}
}

// toMap flattens the event into the persisted field set for its kind.
func (e Event) toMap() map[string]interface{} {
	m := map[string]interface{}{
		"t":              e.T,
		"participant_id": e.ParticipantID,
		"event":          e.Kind,
	}
	switch e.Kind {
	case KindSessionStart:
		m["session_id"] = e.SessionID
		m["app_version"] = e.AppVersion
	case KindSetup:
		m["chapter"] = e.Chapter
		m["stage"] = e.Stage
	case KindValidate:
		m["chapter"] = e.Chapter
		m["stage"] = e.Stage
		m["ok"] = e.OK != nil && *e.OK
		m["reason"] = e.Reason
		m["message"] = e.Message
		m["fail_count"] = e.FailCount
		m["stall_s"] = e.StallSeconds
	case KindFinalize:
		m["chapter"] = e.Chapter
		m["stage"] = e.Stage
		m["completed"] = e.Completed != nil && *e.Completed
		m["failed_count"] = e.FailedCount
		if e.StalledSeconds != nil {
			m["stalled_seconds"] = *e.StalledSeconds
		} else {
			m["stalled_seconds"] = 0.0
		}
		m["last_reason"] = e.LastReason
		m["last_message"] = e.LastMessage
		m["stage_started_at"] = e.StageStartedAt
	}
	return m
}

// eventFromMap converts a parsed JSON object into an Event, tolerating
// missing fields and the float64 numbers encoding/json produces.
func eventFromMap(entry map[string]interface{}) Event {
	e := Event{}
	if t, ok := entry["t"].(float64); ok {
		e.T = t
	}
	if pid, ok := entry["participant_id"].(string); ok {
		e.ParticipantID = pid
	}
	if kind, ok := entry["event"].(string); ok {
		e.Kind = kind
	}
	if sid, ok := entry["session_id"].(string); ok {
		e.SessionID = sid
	}
	if v, ok := entry["app_version"].(string); ok {
		e.AppVersion = v
	}
	if ch, ok := entry["chapter"].(float64); ok {
		e.Chapter = int(ch)
	}
	if st, ok := entry["stage"].(float64); ok {
		e.Stage = int(st)
	}
	if okv, ok := entry["ok"].(bool); ok {
		e.OK = &okv
	}
	if r, ok := entry["reason"].(string); ok {
		e.Reason = r
	}
	if msg, ok := entry["message"].(string); ok {
		e.Message = msg
	}
	if fc, ok := entry["fail_count"].(float64); ok {
		e.FailCount = int(fc)
	}
	if s, ok := entry["stall_s"].(float64); ok {
		e.StallSeconds = s
	}
	if c, ok := entry["completed"].(bool); ok {
		e.Completed = &c
	}
	if fc, ok := entry["failed_count"].(float64); ok {
		e.FailedCount = int(fc)
	}
	if ss, ok := entry["stalled_seconds"].(float64); ok {
		e.StalledSeconds = &ss
	}
	if lr, ok := entry["last_reason"].(string); ok {
		e.LastReason = lr
	}
	if lm, ok := entry["last_message"].(string); ok {
		e.LastMessage = lm
	}
	if sa, ok := entry["stage_started_at"].(float64); ok {
		e.StageStartedAt = sa
	}
	return e
}
