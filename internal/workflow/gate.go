// Package workflow implements the three-state session gate that decides
// when overlays may be edited or exported.
package workflow

import (
	"photo-stamper/internal/apperr"
)

// State is a workflow step.
type State int

const (
	AwaitingImage State = iota
	Editing
	Finalizing
)

func (s State) String() string {
	switch s {
	case AwaitingImage:
		return "AwaitingImage"
	case Editing:
		return "Editing"
	case Finalizing:
		return "Finalizing"
	default:
		return "Unknown"
	}
}

// Gate is the workflow state machine. The zero value is AwaitingImage.
type Gate struct {
	state    State
	onChange func(from, to State)
}

// NewGate returns a gate in AwaitingImage.
func NewGate() *Gate {
	return &Gate{}
}

// OnChange sets the transition callback.
func (g *Gate) OnChange(fn func(from, to State)) {
	g.onChange = fn
}

// State returns the current state.
func (g *Gate) State() State {
	return g.state
}

// CanEdit reports whether manipulation is allowed.
func (g *Gate) CanEdit() bool {
	return g.state == Editing
}

// CanExport reports whether export is allowed.
func (g *Gate) CanExport() bool {
	return g.state == Finalizing
}

func (g *Gate) set(to State) {
	from := g.state
	g.state = to
	if from != to && g.onChange != nil {
		g.onChange(from, to)
	}
}

// ImageLoaded enters Editing from any state. Callers reset the overlay
// store alongside.
func (g *Gate) ImageLoaded() {
	g.set(Editing)
}

// Finalize moves Editing to Finalizing; it needs at least one overlay.
func (g *Gate) Finalize(overlayCount int) error {
	if g.state != Editing {
		return apperr.Newf(apperr.CodeInvalidState, "cannot finalize from %s", g.state)
	}
	if overlayCount < 1 {
		return apperr.New(apperr.CodeNotReady, "add at least one stamp to proceed to the download step")
	}
	g.set(Finalizing)
	return nil
}

// BackToEditing returns from Finalizing to Editing.
func (g *Gate) BackToEditing() error {
	if g.state != Finalizing {
		return apperr.Newf(apperr.CodeInvalidState, "cannot return to editing from %s", g.state)
	}
	g.set(Editing)
	return nil
}

// Reset returns to AwaitingImage from any state.
func (g *Gate) Reset() {
	g.set(AwaitingImage)
}
