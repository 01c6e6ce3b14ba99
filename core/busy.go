package core

import "errors"

// ErrBusy is the well-defined refusal returned when a new conversation
// turn arrives while the system is still working on the previous one.
// It is a refusal outcome, not a fault.
var ErrBusy = errors.New("system busy")

// BusyGate is a composite readiness check over three externally owned
// flags. It never mutates them; it only reads.
type BusyGate struct {
	TurnInProgress BoolSource
	Speaking       BoolSource
	AudioPlaying   BoolSource
}

// Busy reports whether any of the three inputs is active. A nil source
// counts as not active.
func (g BusyGate) Busy() bool {
	return active(g.TurnInProgress) || active(g.Speaking) || active(g.AudioPlaying)
}

// Check returns ErrBusy when the gate is busy, nil otherwise.
func (g BusyGate) Check() error {
	if g.Busy() {
		return ErrBusy
	}
	return nil
}

func active(s BoolSource) bool {
	return s != nil && s.Get()
}
