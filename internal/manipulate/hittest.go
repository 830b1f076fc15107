package manipulate

import (
	"photo-stamper/internal/overlay"
	"photo-stamper/pkg/geometry"
)

// Region is the part of an overlay under the pointer.
type Region int

const (
	RegionNone Region = iota
	RegionBody
	RegionResizeHandle
	RegionControls
)

func (r Region) String() string {
	switch r {
	case RegionBody:
		return "Body"
	case RegionResizeHandle:
		return "ResizeHandle"
	case RegionControls:
		return "Controls"
	default:
		return "None"
	}
}

// Button is one control on the bar shown above a selected overlay.
type Button int

const (
	ButtonRotateLeft Button = iota
	ButtonRotateRight
	ButtonZoomIn
	ButtonZoomOut
	ButtonDelete
	buttonCount
)

func (b Button) String() string {
	switch b {
	case ButtonRotateLeft:
		return "Rotate Left"
	case ButtonRotateRight:
		return "Rotate Right"
	case ButtonZoomIn:
		return "Zoom In"
	case ButtonZoomOut:
		return "Zoom Out"
	case ButtonDelete:
		return "Delete Stamp"
	default:
		return "Unknown"
	}
}

// Control bar and handle metrics, in display pixels.
const (
	HandleRadius  = 8.0
	ButtonSize    = 32.0
	ButtonGap     = 4.0
	ControlsInset = 4.0
	// ControlsGap separates the bar from the overlay's top edge.
	ControlsGap = 8.0
)

// ControlsRect returns the control bar in the overlay's unrotated frame:
// centered horizontally, just above the top edge.
func ControlsRect(o overlay.Overlay) geometry.Rect {
	w := float64(buttonCount)*ButtonSize + float64(buttonCount-1)*ButtonGap + 2*ControlsInset
	h := ButtonSize + 2*ControlsInset
	c := o.Center()
	return geometry.NewRect(c.X-w/2, o.Y-ControlsGap-h, w, h)
}

// ButtonRect returns one button's rectangle in the overlay's unrotated frame.
func ButtonRect(o overlay.Overlay, b Button) geometry.Rect {
	bar := ControlsRect(o)
	x := bar.X + ControlsInset + float64(b)*(ButtonSize+ButtonGap)
	return geometry.NewRect(x, bar.Y+ControlsInset, ButtonSize, ButtonSize)
}

// HandlePoint returns the south-east resize handle center, unrotated.
func HandlePoint(o overlay.Overlay) geometry.Point2D {
	return o.Rect().BottomRight()
}

// placement maps the overlay's unrotated frame onto the display.
func placement(o overlay.Overlay) geometry.AffineTransform {
	c := o.Center()
	return geometry.Translation(c.X, c.Y).
		Compose(geometry.Rotation(geometry.Radians(o.RotationDegrees))).
		Compose(geometry.Translation(-c.X, -c.Y))
}

// local maps a display point into the overlay's unrotated frame.
func local(o overlay.Overlay, p geometry.Point2D) geometry.Point2D {
	if o.RotationDegrees == 0 {
		return p
	}
	inv, ok := placement(o).Inverse()
	if !ok {
		return p
	}
	return inv.Apply(p)
}

// HitTest classifies p against o. Handle and control bar exist only on the
// selected overlay.
func HitTest(o overlay.Overlay, selected bool, p geometry.Point2D) Region {
	if selected {
		if local(o, p).Distance(HandlePoint(o)) <= HandleRadius {
			return RegionResizeHandle
		}
		if ControlsRect(o).Contains(local(o, p)) {
			return RegionControls
		}
	}
	if geometry.PointInPolygon(p, geometry.Corners(o.Rect(), o.RotationDegrees)) {
		return RegionBody
	}
	return RegionNone
}

// ButtonAt returns the control button under p on the selected overlay o.
func ButtonAt(o overlay.Overlay, p geometry.Point2D) (Button, bool) {
	lp := local(o, p)
	for b := Button(0); b < buttonCount; b++ {
		if ButtonRect(o, b).Contains(lp) {
			return b, true
		}
	}
	return 0, false
}

// Press runs the discrete action bound to b.
func (c *Controller) Press(b Button) bool {
	switch b {
	case ButtonRotateLeft:
		return c.RotateStep(-1)
	case ButtonRotateRight:
		return c.RotateStep(1)
	case ButtonZoomIn:
		return c.ScaleStep(true)
	case ButtonZoomOut:
		return c.ScaleStep(false)
	case ButtonDelete:
		return c.Delete()
	}
	return false
}

// Pick finds the topmost overlay under p in on-screen order, using view to
// obtain the geometry currently drawn for each overlay.
func Pick(store *overlay.Store, view func(id string) overlay.Overlay, p geometry.Point2D) (overlay.Overlay, Region) {
	order := store.DisplayOrder()
	for i := len(order) - 1; i >= 0; i-- {
		o := order[i]
		if view != nil {
			o = view(o.ID)
		}
		if r := HitTest(o, o.ID == store.SelectedID(), p); r != RegionNone {
			return o, r
		}
	}
	return overlay.Overlay{}, RegionNone
}
