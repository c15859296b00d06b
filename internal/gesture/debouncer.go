package gesture

import (
	"fmt"
	"time"
)

// DefaultDwell is how long a label must persist before it fires again.
const DefaultDwell = time.Second

// DebounceState is a snapshot of the debouncer.
type DebounceState struct {
	// Tracking is false until the first label is observed.
	Tracking bool `json:"tracking"`
	// LastStableLabel is the label of the most recent trigger.
	LastStableLabel string `json:"last_stable_label"`
	// CandidateLabel is the label being tracked.
	CandidateLabel string `json:"candidate_label"`
	// CandidateSince is when CandidateLabel was first observed.
	CandidateSince time.Time `json:"candidate_since"`
}

// Debouncer turns a stream of per-frame labels into action triggers.
//
// A label fires as soon as it differs from the tracked one. Once the same
// label has been held for at least the dwell duration it fires on every
// observation, because elapsed time is always measured from when the label
// first appeared.
//
// A Debouncer is not safe for concurrent use; each frame worker owns one.
type Debouncer struct {
	dwell time.Duration
	state DebounceState
}

// NewDebouncer returns an idle Debouncer. dwell must be positive.
func NewDebouncer(dwell time.Duration) (*Debouncer, error) {
	if dwell <= 0 {
		return nil, fmt.Errorf("%w: dwell %v must be positive", ErrInvalidConfiguration, dwell)
	}
	return &Debouncer{dwell: dwell}, nil
}

// Observe records label seen at time at and reports whether a trigger fires.
func (d *Debouncer) Observe(label string, at time.Time) bool {
	if !d.state.Tracking || label != d.state.CandidateLabel {
		d.state = DebounceState{
			Tracking:        true,
			LastStableLabel: label,
			CandidateLabel:  label,
			CandidateSince:  at,
		}
		return true
	}

	if at.Sub(d.state.CandidateSince) >= d.dwell {
		d.state.LastStableLabel = label
		return true
	}
	return false
}

// State returns a copy of the current state.
func (d *Debouncer) State() DebounceState {
	return d.state
}

// Dwell returns the configured dwell duration.
func (d *Debouncer) Dwell() time.Duration {
	return d.dwell
}

// Reset returns the debouncer to its idle state.
func (d *Debouncer) Reset() {
	d.state = DebounceState{}
}
