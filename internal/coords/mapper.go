// Package coords converts between the on-screen display space of the base
// image and its natural pixel grid.
package coords

import "photo-stamper/pkg/geometry"

// Mapper holds the per-axis scale factors of one measured layout.
type Mapper struct {
	Natural geometry.Size
	Display geometry.Size
	ScaleX  float64
	ScaleY  float64
}

// NewMapper computes scale factors from the live display size. ok is false
// when the image is not laid out yet (a zero display dimension); the Mapper
// must not be used in that case.
func NewMapper(natural, display geometry.Size) (m Mapper, ok bool) {
	if display.Empty() || natural.Empty() {
		return Mapper{}, false
	}
	return Mapper{
		Natural: natural,
		Display: display,
		ScaleX:  natural.Width / display.Width,
		ScaleY:  natural.Height / display.Height,
	}, true
}

// ToNatural maps a display-space point onto the natural grid.
func (m Mapper) ToNatural(p geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{X: p.X * m.ScaleX, Y: p.Y * m.ScaleY}
}

// ToDisplay is the inverse of ToNatural.
func (m Mapper) ToDisplay(p geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{X: p.X / m.ScaleX, Y: p.Y / m.ScaleY}
}

// RectToNatural maps origin and size independently per axis.
func (m Mapper) RectToNatural(r geometry.Rect) geometry.Rect {
	return geometry.Rect{
		X:      r.X * m.ScaleX,
		Y:      r.Y * m.ScaleY,
		Width:  r.Width * m.ScaleX,
		Height: r.Height * m.ScaleY,
	}
}

// FitContain returns the rectangle an image of the natural size occupies
// inside container under "contain" fitting: the largest uniformly scaled
// copy that fits, centered, letterboxed on the short axis.
func FitContain(natural, container geometry.Size) geometry.Rect {
	if natural.Empty() || container.Empty() {
		return geometry.Rect{}
	}
	scale := container.Width / natural.Width
	if s := container.Height / natural.Height; s < scale {
		scale = s
	}
	w := natural.Width * scale
	h := natural.Height * scale
	return geometry.Rect{
		X:      (container.Width - w) / 2,
		Y:      (container.Height - h) / 2,
		Width:  w,
		Height: h,
	}
}
