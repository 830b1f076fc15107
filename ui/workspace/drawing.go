package workspace

import (
	"image"
	"image/color"
	"math"

	img "photo-stamper/internal/image"
	"photo-stamper/internal/manipulate"
	"photo-stamper/internal/overlay"
	"photo-stamper/pkg/colorutil"
	"photo-stamper/pkg/geometry"

	"golang.org/x/image/draw"
)

// glyphPatterns are 3x5 pixel patterns for the control bar buttons.
// Each glyph is 5 rows of 3 bits.
var glyphPatterns = map[manipulate.Button][5]uint8{
	manipulate.ButtonRotateLeft:  {0b001, 0b010, 0b100, 0b010, 0b001}, // <
	manipulate.ButtonRotateRight: {0b100, 0b010, 0b001, 0b010, 0b100}, // >
	manipulate.ButtonZoomIn:      {0b000, 0b010, 0b111, 0b010, 0b000}, // +
	manipulate.ButtonZoomOut:     {0b000, 0b000, 0b111, 0b000, 0b000}, // -
	manipulate.ButtonDelete:      {0b101, 0b101, 0b010, 0b101, 0b101}, // X
}

const (
	outlineThickness = 2
	glyphScale       = 3
)

// Frame is everything needed to paint the workspace once.
type Frame struct {
	// Base is the photo, or a preview of it; it is stretched into Display.
	Base image.Image
	// Display is where the photo sits inside the widget.
	Display geometry.Rect
	// Views are the overlays in on-screen order, in workspace coordinates.
	Views    []overlay.Overlay
	Selected string
	// Chrome enables the selection outline, handle and control bar.
	Chrome bool
	// SelectionColor strokes the chrome; the zero value uses colorutil.Selection.
	SelectionColor color.RGBA
	// StampImage returns the stamp image for a reference, or nil while it
	// is not loaded yet.
	StampImage func(ref string) image.Image
}

// Render paints f into a w×h raster.
func Render(w, h int, f Frame, interp draw.Interpolator) *image.RGBA {
	c := img.NewCanvas(w, h, interp)
	c.Fill(colorutil.Letterbox)
	if f.Base == nil {
		return c.RGBA
	}
	c.DrawScaled(f.Base, f.Display)

	origin := f.Display.TopLeft()
	for _, o := range f.Views {
		o.X += origin.X
		o.Y += origin.Y

		var stampImg image.Image
		if f.StampImage != nil {
			stampImg = f.StampImage(o.ImageRef)
		}
		if stampImg != nil {
			c.DrawStamp(stampImg, o.Rect(), o.RotationDegrees)
		} else {
			drawOutline(c.RGBA, o, colorutil.Magenta)
		}

		if f.Chrome && o.ID == f.Selected {
			drawChrome(c.RGBA, o, f.selection())
		}
	}
	return c.RGBA
}

func (f Frame) selection() color.RGBA {
	if f.SelectionColor == (color.RGBA{}) {
		return colorutil.Selection
	}
	return f.SelectionColor
}

// drawChrome draws the selection outline, the resize handle and the
// control bar of the selected overlay, all rotated with it.
func drawChrome(output *image.RGBA, o overlay.Overlay, sel color.RGBA) {
	drawOutline(output, o, sel)

	center := o.Center()
	h := manipulate.HandlePoint(o).RotateAbout(center, o.RotationDegrees)
	fillDisc(output, h, manipulate.HandleRadius, sel)
	fillDisc(output, h, manipulate.HandleRadius-2, colorutil.Handle)

	bar := geometry.Corners(manipulate.ControlsRect(o), 0)
	for i := range bar {
		bar[i] = bar[i].RotateAbout(center, o.RotationDegrees)
	}
	fillPolygon(output, bar, colorutil.ControlsBackground)

	for b, pattern := range glyphPatterns {
		r := manipulate.ButtonRect(o, b)
		p := r.Center().RotateAbout(center, o.RotationDegrees)
		drawGlyph(output, pattern, int(math.Round(p.X)), int(math.Round(p.Y)), colorutil.White, glyphScale)
	}
}

// drawOutline strokes the rotated rectangle of o.
func drawOutline(output *image.RGBA, o overlay.Overlay, col color.RGBA) {
	pts := geometry.Corners(o.Rect(), o.RotationDegrees)
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		drawLine(output,
			int(math.Round(a.X)), int(math.Round(a.Y)),
			int(math.Round(b.X)), int(math.Round(b.Y)),
			col, outlineThickness)
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	bounds := output.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if image.Pt(px, py).In(bounds) {
					output.SetRGBA(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// fillDisc fills a circle, blending by the color's alpha.
func fillDisc(output *image.RGBA, c geometry.Point2D, radius float64, col color.RGBA) {
	r := image.Rect(
		int(math.Floor(c.X-radius)), int(math.Floor(c.Y-radius)),
		int(math.Ceil(c.X+radius))+1, int(math.Ceil(c.Y+radius))+1,
	).Intersect(output.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if math.Hypot(float64(x)-c.X, float64(y)-c.Y) <= radius {
				blend(output, x, y, col)
			}
		}
	}
}

// fillPolygon fills a convex or concave polygon, blending by the color's alpha.
func fillPolygon(output *image.RGBA, pts []geometry.Point2D, col color.RGBA) {
	bb := geometry.BoundingBox(pts)
	r := image.Rect(
		int(math.Floor(bb.X)), int(math.Floor(bb.Y)),
		int(math.Ceil(bb.X+bb.Width))+1, int(math.Ceil(bb.Y+bb.Height))+1,
	).Intersect(output.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p := geometry.NewPoint2D(float64(x)+0.5, float64(y)+0.5)
			if geometry.PointInPolygon(p, pts) {
				blend(output, x, y, col)
			}
		}
	}
}

// blend composites a non-premultiplied color over one pixel.
func blend(output *image.RGBA, x, y int, col color.RGBA) {
	if col.A == 255 {
		output.SetRGBA(x, y, col)
		return
	}
	dst := output.RGBAAt(x, y)
	a := uint32(col.A)
	mix := func(s, d uint8) uint8 {
		return uint8((uint32(s)*a + uint32(d)*(255-a)) / 255)
	}
	output.SetRGBA(x, y, color.RGBA{
		R: mix(col.R, dst.R),
		G: mix(col.G, dst.G),
		B: mix(col.B, dst.B),
		A: uint8(a + uint32(dst.A)*(255-a)/255),
	})
}

// drawGlyph draws a 3x5 pattern centered on (centerX, centerY).
func drawGlyph(output *image.RGBA, pattern [5]uint8, centerX, centerY int, col color.RGBA, scale int) {
	startX := centerX - 3*scale/2
	startY := centerY - 5*scale/2
	bounds := output.Bounds()
	for row := 0; row < 5; row++ {
		for c := 0; c < 3; c++ {
			if pattern[row]&(1<<(2-c)) == 0 {
				continue
			}
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					px := startX + c*scale + dx
					py := startY + row*scale + dy
					if image.Pt(px, py).In(bounds) {
						output.SetRGBA(px, py, col)
					}
				}
			}
		}
	}
}
