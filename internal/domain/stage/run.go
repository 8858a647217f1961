package stage

import "time"

// HistoryCapacity bounds the in-memory run history.
const HistoryCapacity = 500

// Run is an immutable record of one closed-out stage attempt.
type Run struct {
	Key            Key
	Completed      bool
	FailedCount    int
	StalledSeconds float64
	StartedAt      time.Time
	EndedAt        time.Time
	LastReason     ReasonCode
	LastMessage    string
}

// History is a capacity-bounded FIFO of completed and abandoned stage
// attempts. Oldest entries are evicted first. It is mutated only by
// the session's finalize step; readers get copies.
type History struct {
	runs []Run
	cap  int
}

// NewHistory returns an empty history with the default capacity.
func NewHistory() *History {
	return &History{cap: HistoryCapacity}
}

// Append records a run, evicting the oldest entries beyond capacity.
func (h *History) Append(r Run) {
	h.runs = append(h.runs, r)
	if over := len(h.runs) - h.cap; over > 0 {
		h.runs = h.runs[over:]
	}
}

// Len returns the number of recorded runs.
func (h *History) Len() int {
	return len(h.runs)
}

// Runs returns a read-only snapshot of the recorded runs, oldest first.
func (h *History) Runs() []Run {
	out := make([]Run, len(h.runs))
	copy(out, h.runs)
	return out
}
