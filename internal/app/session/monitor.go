package session

import (
	"context"
	"time"
)

// Default monitoring cadence: the tick recomputes stall time, the
// debounce bounds how often the soft check re-runs potentially
// expensive environment queries.
const (
	DefaultTickInterval = 100 * time.Millisecond
	DefaultDebounce     = 200 * time.Millisecond
)

// Monitor drives the session's periodic soft check. Ticks can come
// from Run's own ticker or from any host loop calling Tick directly,
// which is how tests inject synthetic timestamps.
type Monitor struct {
	session  *Session
	interval time.Duration
	debounce time.Duration

	lastCheck    time.Time
	stallSeconds float64
}

// NewMonitor creates a monitor for s. Non-positive intervals fall back
// to the defaults.
func NewMonitor(s *Session, interval, debounce time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Monitor{session: s, interval: interval, debounce: debounce}
}

// Tick performs one monitoring step at the given time: it refreshes
// the observed stall seconds and, at most once per debounce period,
// soft-checks the stage condition. Ticks while monitoring is inactive
// do nothing.
func (m *Monitor) Tick(now time.Time) {
	if !m.session.MonitoringActive() {
		return
	}
	m.stallSeconds = m.session.StallSeconds()
	if m.lastCheck.IsZero() || now.Sub(m.lastCheck) >= m.debounce {
		m.session.SoftCheck()
		m.lastCheck = now
	}
}

// StallSeconds returns the stall time observed on the last tick.
func (m *Monitor) StallSeconds() float64 {
	return m.stallSeconds
}

// Run drives Tick from a wall-clock ticker until ctx is cancelled or
// the session's monitoring flag is cleared. Ticks are non-blocking and
// fast, so there is no forced mid-tick cancellation.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !m.session.MonitoringActive() {
				return
			}
			m.Tick(now)
		}
	}
}
