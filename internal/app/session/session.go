// Package session owns the stage lifecycle state machine: setup,
// validation, hint escalation, finalization, and curriculum
// advancement. One Session instance tracks one participant's
// walk-through; all state lives on the value, never in globals.
package session

import (
	"fmt"
	"time"

	"github.com/daichi-lab/cgtutor/internal/app"
	"github.com/daichi-lab/cgtutor/internal/domain/scene"
	"github.com/daichi-lab/cgtutor/internal/domain/stage"
	"github.com/daichi-lab/cgtutor/internal/infra/repository/eventlog"
	validator "github.com/daichi-lab/cgtutor/internal/validator/stage"
)

// Phase is the lifecycle position of the current stage attempt.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSetup
	PhaseMonitoring
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseSetup:
		return "SETUP"
	case PhaseMonitoring:
		return "MONITORING"
	case PhaseComplete:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// Session drives one curriculum walk-through. It is single-goroutine
// by contract: the host's timer loop and command handlers call it
// cooperatively, never concurrently.
type Session struct {
	scene   scene.Scene
	engine  *validator.Engine
	log     *eventlog.Writer // nil when participant logging is disabled
	history *stage.History
	clock   func() time.Time

	key              stage.Key
	phase            Phase
	failureCount     int
	stageStartedAt   time.Time // zero means no attempt in progress
	stageComplete    bool
	lastOutcome      *stage.Outcome
	lastHints        []string
	monitoringActive bool
	finished         bool

	lastErr error // sticky, recoverable; surfaced to the host UI
}

// New creates a session starting at chapter 1 stage 1. log may be nil
// to run without participant logging.
func New(sc scene.Scene, eng *validator.Engine, log *eventlog.Writer) *Session {
	return NewWithClock(sc, eng, log, time.Now)
}

// NewWithClock is New with an injected clock for deterministic tests
// and replays.
func NewWithClock(sc scene.Scene, eng *validator.Engine, log *eventlog.Writer, clock func() time.Time) *Session {
	return &Session{
		scene:   sc,
		engine:  eng,
		log:     log,
		history: stage.NewHistory(),
		clock:   clock,
		key:     stage.NewKey(1, 1),
		phase:   PhaseIdle,
	}
}

// Key returns the current curriculum position.
func (s *Session) Key() stage.Key { return s.key }

// Phase returns the lifecycle phase of the current attempt.
func (s *Session) Phase() Phase { return s.phase }

// FailureCount returns the failed-validation count for the current attempt.
func (s *Session) FailureCount() int { return s.failureCount }

// StageComplete reports whether the current stage condition has been met.
func (s *Session) StageComplete() bool { return s.stageComplete }

// MonitoringActive reports whether the periodic soft check should run.
func (s *Session) MonitoringActive() bool { return s.monitoringActive }

// Finished reports whether the whole curriculum has been completed.
func (s *Session) Finished() bool { return s.finished }

// LastOutcome returns the most recent validation outcome, or nil.
func (s *Session) LastOutcome() *stage.Outcome {
	if s.lastOutcome == nil {
		return nil
	}
	out := *s.lastOutcome
	return &out
}

// LastHints returns the escalated hints from the most recent failure.
func (s *Session) LastHints() []string {
	out := make([]string, len(s.lastHints))
	copy(out, s.lastHints)
	return out
}

// LastErr returns the sticky recoverable error, or nil.
func (s *Session) LastErr() error { return s.lastErr }

// History returns a read-only snapshot of recorded stage runs.
func (s *Session) History() []stage.Run { return s.history.Runs() }

// HistoryLen returns the number of recorded stage runs.
func (s *Session) HistoryLen() int { return s.history.Len() }

// StallSeconds returns the elapsed wall-clock time since the current
// stage's setup, floored at zero, or 0 when no attempt is in progress.
func (s *Session) StallSeconds() float64 {
	if s.stageStartedAt.IsZero() {
		return 0
	}
	elapsed := s.clock().Sub(s.stageStartedAt).Seconds()
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Setup prepares the current stage: it implicitly finalizes a prior
// unfinished attempt as abandoned, runs the chapter's scene setup
// commands, resets the attempt counters, and starts monitoring. A
// scene failure aborts cleanly with the session state unchanged.
func (s *Session) Setup() error {
	if !s.stageStartedAt.IsZero() {
		s.Finalize(false)
	}

	s.phase = PhaseSetup
	if err := s.scene.RunSetupCommands(s.key.Chapter); err != nil {
		s.phase = PhaseIdle
		return fmt.Errorf("stage setup %s: %w", s.key, err)
	}

	s.failureCount = 0
	s.stageStartedAt = s.clock()
	s.stageComplete = false
	s.lastOutcome = nil
	s.lastHints = nil
	s.monitoringActive = true
	s.finished = false
	s.phase = PhaseMonitoring

	s.appendEvent(eventlog.NewSetupEvent(s.unixNow(), s.participantID(), s.key))
	return nil
}

// Validate runs the stage predicate against a fresh environment
// snapshot. Success marks the stage complete and clears the failure
// count; failure increments it and escalates hints. A Validate event
// is always emitted. Failure never changes the phase.
func (s *Session) Validate() stage.Outcome {
	out := s.evaluate()

	if out.OK {
		s.stageComplete = true
		s.failureCount = 0
		s.lastHints = nil
		s.phase = PhaseComplete
	} else {
		s.failureCount++
		s.lastHints = stage.EscalateHints(out.Hints, s.failureCount)
	}
	s.lastOutcome = &out

	s.appendEvent(eventlog.NewValidateEvent(
		s.unixNow(), s.participantID(), s.key, out, s.failureCount, s.StallSeconds()))
	return out
}

// SoftCheck re-evaluates the stage predicate without touching the
// failure count or the event log, flipping stageComplete the moment
// the environment condition becomes true. Driven by the monitor tick.
func (s *Session) SoftCheck() {
	if !s.monitoringActive || s.stageComplete {
		return
	}
	out := s.evaluate()
	if out.OK {
		s.stageComplete = true
		s.phase = PhaseComplete
	}
}

// evaluate fetches a snapshot and runs the predicate table. A scene
// query failure becomes an UNKNOWN outcome, never a fault.
func (s *Session) evaluate() stage.Outcome {
	snap, err := s.scene.QuerySnapshot(s.key.Chapter, s.key.Stage)
	if err != nil {
		s.lastErr = fmt.Errorf("environment query %s: %w", s.key, err)
		return stage.Fail(stage.ReasonUnknown, "Environment query failed",
			"Run stage setup and try again")
	}
	return s.engine.Evaluate(s.key, snap)
}

// Finalize closes out the current attempt, recording it in the run
// history and the event log. It is a no-op when no attempt is in
// progress, which also guards against double finalization. The caller
// (Advance/Reset/GotoChapter epilogue) clears stageStartedAt.
func (s *Session) Finalize(completed bool) {
	if s.stageStartedAt.IsZero() {
		return
	}

	now := s.clock()
	stalled := now.Sub(s.stageStartedAt).Seconds()
	if stalled < 0 {
		stalled = 0
	}

	var lastReason stage.ReasonCode
	var lastMessage string
	if s.lastOutcome != nil {
		lastReason = s.lastOutcome.Reason
		lastMessage = s.lastOutcome.Message
	}

	s.history.Append(stage.Run{
		Key:            s.key,
		Completed:      completed,
		FailedCount:    s.failureCount,
		StalledSeconds: stalled,
		StartedAt:      s.stageStartedAt,
		EndedAt:        now,
		LastReason:     lastReason,
		LastMessage:    lastMessage,
	})

	s.appendEvent(eventlog.NewFinalizeEvent(
		unixSeconds(now), s.participantID(), s.key, completed, s.failureCount,
		stalled, lastReason, lastMessage, unixSeconds(s.stageStartedAt)))
}

// Advance finalizes the current stage as completed and moves to the
// next curriculum unit. At the last stage of the last chapter it runs
// the scene's session-end cleanup instead and marks the session
// finished.
func (s *Session) Advance() {
	s.Finalize(true)

	next, ok := s.key.Next()
	if !ok {
		if err := s.scene.RunSessionEndCommands(); err != nil {
			s.lastErr = fmt.Errorf("session end cleanup: %w", err)
			app.GetLogger().Warn("session end cleanup failed: %v", err)
		}
		s.finished = true
		s.clearTransients()
		s.phase = PhaseComplete
		return
	}

	s.key = next
	s.clearTransients()
	s.phase = PhaseIdle
}

// Reset finalizes the current stage as abandoned and returns to
// chapter 1 stage 1.
func (s *Session) Reset() {
	s.Finalize(false)
	s.key = stage.NewKey(1, 1)
	s.clearTransients()
	s.phase = PhaseIdle
}

// GotoChapter finalizes the current stage as abandoned and jumps to
// stage 1 of chapter n. An out-of-range chapter is an input error and
// leaves the session untouched.
func (s *Session) GotoChapter(n int) error {
	if _, ok := stage.StageCount[n]; !ok {
		return fmt.Errorf("goto chapter: chapter %d is not part of the curriculum", n)
	}
	s.Finalize(false)
	s.key = stage.NewKey(n, 1)
	s.clearTransients()
	s.phase = PhaseIdle
	return nil
}

// StopMonitoring clears the monitoring flag; the timer loop observes
// it and unregisters itself on the next tick.
func (s *Session) StopMonitoring() {
	s.monitoringActive = false
}

// clearTransients is the shared epilogue of Advance/Reset/GotoChapter.
// Clearing stageStartedAt here (not in Finalize) is what makes a
// second Finalize without an intervening Setup a no-op.
func (s *Session) clearTransients() {
	s.failureCount = 0
	s.stageStartedAt = time.Time{}
	s.stageComplete = false
	s.lastOutcome = nil
	s.lastHints = nil
	s.monitoringActive = false
}

// appendEvent writes to the participant log, demoting failures to the
// sticky last error so the session keeps running without logging.
func (s *Session) appendEvent(e eventlog.Event) {
	if s.log == nil {
		return
	}
	if err := s.log.Append(e); err != nil {
		s.lastErr = err
		app.GetLogger().Warn("participant log append failed: %v", err)
	}
}

func (s *Session) participantID() string {
	if s.log == nil {
		return ""
	}
	return s.log.ParticipantID()
}

func (s *Session) unixNow() float64 {
	return unixSeconds(s.clock())
}

func unixSeconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / float64(time.Second)
}
