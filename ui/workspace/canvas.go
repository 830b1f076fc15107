// Package workspace provides the interactive photo workspace: the photo
// contain-fitted into the widget with its stamps, which can be dragged,
// resized and edited through their control bar.
package workspace

import (
	"image"

	"photo-stamper/internal/app"
	img "photo-stamper/internal/image"
	"photo-stamper/internal/manipulate"
	"photo-stamper/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"golang.org/x/image/draw"
)

// Canvas is the workspace widget. It forwards pointer input to the
// session's controllers and renders the session on every refresh. Input
// and rendering run on different goroutines, so every session access goes
// through Session.Do.
type Canvas struct {
	widget.BaseWidget

	session *app.Session
	images  *Images
	raster  *fynecanvas.Raster

	size fyne.Size

	// Scaled copy of the base image for the current display size.
	preview     image.Image
	previewOf   *img.Layer
	previewSize geometry.Size

	// Pointer state
	active    *manipulate.Controller
	dropStamp string

	onDropped func(stampID string)
}

// New creates a workspace bound to session.
func New(session *app.Session, images *Images) *Canvas {
	c := &Canvas{
		session: session,
		images:  images,
	}
	c.raster = fynecanvas.NewRaster(c.draw)
	c.raster.ScaleMode = fynecanvas.ImageScaleSmooth
	if images != nil {
		images.OnReady(c.Refresh)
	}
	c.ExtendBaseWidget(c)
	return c
}

// SetDropStamp arms a stamp to be placed at the next click on an empty
// part of the photo; "" disarms.
func (c *Canvas) SetDropStamp(stampID string) {
	c.dropStamp = stampID
}

// DropStamp returns the armed stamp.
func (c *Canvas) DropStamp() string {
	return c.dropStamp
}

// OnDropped sets the callback run after an armed stamp was placed.
func (c *Canvas) OnDropped(fn func(stampID string)) {
	c.onDropped = fn
}

// interactive reports whether pointer input may reach the controllers.
// Callers hold the session.
func (c *Canvas) interactive() bool {
	return c.session.CanEdit() && !c.session.Exporting()
}

// toWorkspace converts a widget position to workspace coordinates.
func (c *Canvas) toWorkspace(pos fyne.Position) geometry.Point2D {
	d := c.session.DisplayRect()
	return geometry.NewPoint2D(float64(pos.X)-d.X, float64(pos.Y)-d.Y)
}

// MouseDown starts a drag or resize on the topmost stamp under the pointer.
func (c *Canvas) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	c.session.Do(func() {
		if !c.interactive() {
			return
		}
		p := c.toWorkspace(ev.Position)
		o, region := manipulate.Pick(c.session.Store(), c.session.View, p)
		switch region {
		case manipulate.RegionBody, manipulate.RegionResizeHandle:
			if ctrl := c.session.Controller(o.ID); ctrl != nil && ctrl.PointerDown(p, region) {
				c.active = ctrl
			}
		case manipulate.RegionControls:
			c.session.Select(o.ID)
		}
	})
	c.Refresh()
}

// MouseUp ends a press that never turned into a drag.
func (c *Canvas) MouseUp(*desktop.MouseEvent) {
	c.release()
}

// Dragged moves or resizes the working copy of the active stamp.
func (c *Canvas) Dragged(ev *fyne.DragEvent) {
	c.session.Do(func() {
		if c.active != nil {
			c.active.PointerMove(c.toWorkspace(ev.Position))
		}
	})
	c.Refresh()
}

// DragEnd commits the active gesture.
func (c *Canvas) DragEnd() {
	c.release()
}

func (c *Canvas) release() {
	c.session.Do(func() {
		if c.active != nil {
			c.active.PointerUp()
			c.active = nil
		}
	})
	c.Refresh()
}

// Tapped presses control bar buttons, places an armed stamp on the photo
// or clears the selection when the background is clicked.
func (c *Canvas) Tapped(ev *fyne.PointEvent) {
	dropped := ""
	c.session.Do(func() {
		if !c.interactive() {
			return
		}
		p := c.toWorkspace(ev.Position)
		o, region := manipulate.Pick(c.session.Store(), c.session.View, p)
		switch region {
		case manipulate.RegionControls:
			if b, ok := manipulate.ButtonAt(o, p); ok {
				if ctrl := c.session.Controller(o.ID); ctrl != nil {
					ctrl.Press(b)
				}
			}
		case manipulate.RegionNone:
			dropped = c.tapBackground(p)
		}
	})
	if dropped != "" && c.onDropped != nil {
		c.onDropped(dropped)
	}
	c.Refresh()
}

// tapBackground handles a tap that hit no stamp. An armed stamp is dropped
// when the tap is on the photo; anything else deselects. It returns the
// dropped stamp id.
func (c *Canvas) tapBackground(p geometry.Point2D) string {
	ws := c.session.WorkspaceSize()
	onPhoto := geometry.NewRect(0, 0, ws.Width, ws.Height).Contains(p)
	if id := c.dropStamp; id != "" && onPhoto {
		c.dropStamp = ""
		if _, err := c.session.DropStamp(id, p); err == nil {
			return id
		}
		return ""
	}
	c.session.BackgroundClick()
	return ""
}

// Cancel abandons an active gesture, e.g. when the pointer leaves the window.
func (c *Canvas) Cancel() {
	c.session.Do(c.cancel)
	c.Refresh()
}

// cancel abandons the active gesture; the caller holds the session.
func (c *Canvas) cancel() {
	if c.active != nil {
		c.active.Cancel()
		c.active = nil
	}
}

// Refresh redraws the workspace.
func (c *Canvas) Refresh() {
	c.raster.Refresh()
}

// layout refits the photo when the widget is resized.
func (c *Canvas) layout(size fyne.Size) {
	c.raster.Resize(size)
	if size == c.size {
		return
	}
	c.size = size
	c.session.Do(func() {
		c.session.SetContainer(geometry.NewSize(float64(size.Width), float64(size.Height)))
	})
}

// previewImage returns the base image scaled to the display size. The
// caller holds the session.
func (c *Canvas) previewImage(d geometry.Rect) image.Image {
	base := c.session.Base()
	if base.Empty() {
		c.preview, c.previewOf = nil, nil
		return nil
	}
	if base != c.previewOf || d.Size() != c.previewSize {
		c.preview = img.Thumbnail(base.Image, int(d.Width+0.5), int(d.Height+0.5))
		c.previewOf = base
		c.previewSize = d.Size()
	}
	return c.preview
}

// draw is the raster drawing function.
func (c *Canvas) draw(w, h int) image.Image {
	if c.size.Width > 0 && c.size.Height > 0 {
		w, h = int(c.size.Width), int(c.size.Height)
	}
	var frame Frame
	c.session.Do(func() {
		d := c.session.DisplayRect()
		frame = Frame{
			Base:     c.previewImage(d),
			Display:  d,
			Views:    c.session.Views(),
			Selected: c.session.Store().SelectedID(),
			Chrome:   c.interactive(),

			SelectionColor: c.session.Config().Selection(),
		}
	})
	if c.images != nil {
		frame.StampImage = c.images.Get
	}
	return Render(w, h, frame, draw.ApproxBiLinear)
}

// CreateRenderer implements fyne.Widget.
func (c *Canvas) CreateRenderer() fyne.WidgetRenderer {
	return &canvasRenderer{canvas: c}
}

type canvasRenderer struct {
	canvas *Canvas
}

func (r *canvasRenderer) Layout(size fyne.Size) {
	r.canvas.layout(size)
}

func (r *canvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

func (r *canvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *canvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *canvasRenderer) Destroy() {}

var (
	_ fyne.Tappable     = (*Canvas)(nil)
	_ fyne.Draggable    = (*Canvas)(nil)
	_ desktop.Mouseable = (*Canvas)(nil)
)
