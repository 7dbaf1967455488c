package domain

import "time"

// RunState enumerates pipeline milestones.
type RunState string

const (
	StatePending    RunState = "pending"
	StateFetching   RunState = "fetching"
	StateExtracting RunState = "extracting"
	StateCleaningUp RunState = "cleaning_up"
	StateDone       RunState = "done"
	StateFailed     RunState = "failed"
)

// Terminal reports whether no further transition can follow.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Run is one ingestion attempt for a single month.
type Run struct {
	ID         string
	Variant    Variant
	Month      Month
	Archive    string
	State      RunState
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}
