// Package manipulate implements the per-overlay gesture state machine that
// turns pointer input into drag, resize, rotate, scale, select and delete.
//
// All positions are in display space. A gesture works on a private copy of
// the overlay and writes it to the store once, on pointer-up.
package manipulate

import (
	"math"

	"photo-stamper/internal/overlay"
	"photo-stamper/pkg/geometry"
)

// State is the gesture state of one overlay.
type State int

const (
	Idle State = iota
	Dragging
	Resizing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Dragging:
		return "Dragging"
	case Resizing:
		return "Resizing"
	default:
		return "Unknown"
	}
}

const (
	// RotateIncrement is the rotation applied by one rotate step, in degrees.
	RotateIncrement = 15.0
	// GrowFactor and ShrinkFactor are the scale-step multipliers.
	GrowFactor   = 1.1
	ShrinkFactor = 0.9
	// MinResizeWidth is the width floor of a handle resize; the height floor
	// follows from the aspect ratio.
	MinResizeWidth = 30.0
	// MinScaleSide is the floor of the smaller side after a scale step.
	MinScaleSide = 20.0
)

// Env is what a controller needs to know about its session.
type Env interface {
	// CanEdit reports whether the session is in Editing.
	CanEdit() bool
	// WorkspaceSize is the display size overlays are clamped into.
	WorkspaceSize() geometry.Size
	// NaturalSize is the base image's natural size, the resize ceiling.
	NaturalSize() geometry.Size
}

// Controller drives one overlay. At most one gesture is active at a time.
type Controller struct {
	store *overlay.Store
	env   Env
	id    string

	state   State
	working overlay.Overlay

	dragOffset  geometry.Point2D
	resizeStart geometry.Point2D
	startSize   geometry.Size
}

// New returns an idle controller for the overlay with the given id.
func New(store *overlay.Store, env Env, id string) *Controller {
	return &Controller{store: store, env: env, id: id}
}

// ID returns the overlay id.
func (c *Controller) ID() string { return c.id }

// State returns the gesture state.
func (c *Controller) State() State { return c.state }

// Selected reports whether the overlay is the store's selection.
func (c *Controller) Selected() bool {
	return c.store.SelectedID() == c.id
}

// View returns what should be drawn on screen: the working copy while a
// gesture is active, the committed overlay otherwise.
func (c *Controller) View() (overlay.Overlay, bool) {
	if c.state != Idle {
		return c.working, true
	}
	return c.store.Get(c.id)
}

// PointerDown starts a gesture. The overlay is selected first; a press on
// the body then starts a drag, a press on the resize handle starts a resize,
// and a press on the control bar only selects. It reports whether the
// event was consumed.
func (c *Controller) PointerDown(p geometry.Point2D, region Region) bool {
	if !c.env.CanEdit() || region == RegionNone {
		return false
	}
	if c.state != Idle {
		return true
	}
	o, ok := c.store.Get(c.id)
	if !ok {
		return false
	}
	if !c.Selected() {
		c.store.Select(c.id)
	}

	switch region {
	case RegionBody:
		c.state = Dragging
		c.working = o
		c.dragOffset = p.Sub(o.Position())
	case RegionResizeHandle:
		c.state = Resizing
		c.working = o
		c.resizeStart = p
		c.startSize = o.Size()
	}
	return true
}

// PointerMove updates the working copy of the active gesture.
func (c *Controller) PointerMove(p geometry.Point2D) {
	if c.state == Idle {
		return
	}
	if !c.env.CanEdit() {
		c.Cancel()
		return
	}

	switch c.state {
	case Dragging:
		pos := p.Sub(c.dragOffset)
		r := geometry.NewRect(pos.X, pos.Y, c.working.Width, c.working.Height).
			ClampInto(c.env.WorkspaceSize())
		c.working.X, c.working.Y = r.X, r.Y
	case Resizing:
		d := p.Sub(c.resizeStart)
		w, h := c.lockedResize(c.startSize.Width+d.X, c.startSize.Height+d.Y)
		c.working.Width, c.working.Height = w, h
	}
}

// PointerUp ends the gesture and commits the working copy to the store.
// It reports whether anything was committed.
func (c *Controller) PointerUp() bool {
	if c.state == Idle {
		return false
	}
	if !c.env.CanEdit() {
		c.Cancel()
		return false
	}

	state := c.state
	c.state = Idle
	switch state {
	case Dragging:
		c.store.Update(c.id, overlay.Move(c.working.X, c.working.Y))
	case Resizing:
		r := c.working.Rect().ClampInto(c.env.WorkspaceSize())
		c.store.Update(c.id, overlay.Bounds(r))
	}
	return true
}

// Cancel abandons the active gesture without committing.
func (c *Controller) Cancel() {
	c.state = Idle
	c.working = overlay.Overlay{}
}

// RotateStep rotates the selected overlay by dir*RotateIncrement degrees.
func (c *Controller) RotateStep(dir int) bool {
	o, ok := c.actionable()
	if !ok {
		return false
	}
	deg := o.RotationDegrees + float64(dir)*RotateIncrement
	c.store.Update(c.id, overlay.Rotate(geometry.NormalizeDegrees(deg)))
	return true
}

// ScaleStep grows (×1.1) or shrinks (×0.9) the selected overlay, keeping its
// aspect ratio and the top-left corner where possible.
func (c *Controller) ScaleStep(grow bool) bool {
	o, ok := c.actionable()
	if !ok {
		return false
	}
	f := ShrinkFactor
	if grow {
		f = GrowFactor
	}
	w, h := o.Width*f, o.Height*f
	if side := math.Min(w, h); side < MinScaleSide {
		k := MinScaleSide / side
		w, h = w*k, h*k
	}
	r := geometry.NewRect(o.X, o.Y, w, h).ClampInto(c.env.WorkspaceSize())
	c.store.Update(c.id, overlay.Bounds(r))
	return true
}

// Delete removes the selected overlay.
func (c *Controller) Delete() bool {
	if !c.env.CanEdit() || !c.Selected() {
		return false
	}
	c.Cancel()
	c.store.Remove(c.id)
	return true
}

// actionable returns the overlay when a discrete action may run on it.
func (c *Controller) actionable() (overlay.Overlay, bool) {
	if !c.env.CanEdit() || c.state != Idle || !c.Selected() {
		return overlay.Overlay{}, false
	}
	return c.store.Get(c.id)
}

// lockedResize turns a free (w, h) proposal into an aspect-locked size.
// The axis that moved further decides; the result respects the width floor
// and the natural-size ceiling.
func (c *Controller) lockedResize(w, h float64) (float64, float64) {
	ratio := c.working.AspectRatio
	if ratio <= 0 {
		ratio = c.startSize.Aspect()
	}
	dw := w - c.startSize.Width
	dh := h - c.startSize.Height
	if math.Abs(dw) > math.Abs(dh*ratio) {
		h = w / ratio
	} else {
		w = h * ratio
	}

	maxW, maxH := math.Inf(1), math.Inf(1)
	if n := c.env.NaturalSize(); !n.Empty() {
		maxW, maxH = n.Width, n.Height
	}
	minW := MinResizeWidth
	minH := MinResizeWidth / ratio
	maxW = math.Max(maxW, minW)
	maxH = math.Max(maxH, minH)

	w = geometry.Clamp(w, minW, maxW)
	h = w / ratio
	if h > maxH {
		h = maxH
		w = h * ratio
	}
	if h < minH {
		h = minH
		w = h * ratio
	}
	return w, h
}
