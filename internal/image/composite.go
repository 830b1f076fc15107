package image

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"photo-stamper/pkg/geometry"

	"golang.org/x/image/draw"
)

// Interpolator names accepted by ParseInterpolator.
const (
	InterpNearest        = "nearest"
	InterpApproxBiLinear = "approx-bilinear"
	InterpBiLinear       = "bilinear"
	InterpCatmullRom     = "catmull-rom"
)

// ParseInterpolator maps a configuration name to a resampling kernel.
// "" selects bilinear.
func ParseInterpolator(name string) (draw.Interpolator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", InterpBiLinear:
		return draw.BiLinear, nil
	case InterpNearest:
		return draw.NearestNeighbor, nil
	case InterpApproxBiLinear:
		return draw.ApproxBiLinear, nil
	case InterpCatmullRom:
		return draw.CatmullRom, nil
	default:
		return nil, fmt.Errorf("unknown interpolator %q", name)
	}
}

// StampTransform returns the source→destination mapping that paints a
// source image of bounds src into rect r rotated clockwise by degrees about
// its center:
//
//	T(center) · R(rad) · T(-w/2, -h/2) · S(w/srcW, h/srcH) · T(-src.Min)
func StampTransform(r geometry.Rect, degrees float64, src image.Rectangle) geometry.AffineTransform {
	c := r.Center()
	sx := r.Width / float64(src.Dx())
	sy := r.Height / float64(src.Dy())
	return geometry.Translation(c.X, c.Y).
		Compose(geometry.Rotation(geometry.Radians(degrees))).
		Compose(geometry.Translation(-r.Width/2, -r.Height/2)).
		Compose(geometry.Scale(sx, sy)).
		Compose(geometry.Translation(-float64(src.Min.X), -float64(src.Min.Y)))
}

// Canvas is an RGBA raster that base images and stamps are painted onto.
type Canvas struct {
	RGBA   *image.RGBA
	Interp draw.Interpolator
}

// NewCanvas allocates a transparent canvas. A nil interpolator selects
// bilinear.
func NewCanvas(width, height int, interp draw.Interpolator) *Canvas {
	if interp == nil {
		interp = draw.BiLinear
	}
	return &Canvas{
		RGBA:   image.NewRGBA(image.Rect(0, 0, width, height)),
		Interp: interp,
	}
}

// Bounds returns the canvas bounds.
func (c *Canvas) Bounds() image.Rectangle {
	return c.RGBA.Bounds()
}

// Fill paints the whole canvas with col.
func (c *Canvas) Fill(col color.Color) {
	draw.Draw(c.RGBA, c.RGBA.Bounds(), &image.Uniform{C: col}, image.Point{}, draw.Src)
}

// DrawBase blits img at the origin, unscaled.
func (c *Canvas) DrawBase(img image.Image) {
	b := img.Bounds()
	draw.Draw(c.RGBA, image.Rect(0, 0, b.Dx(), b.Dy()), img, b.Min, draw.Src)
}

// DrawScaled paints img stretched into dst, used for the editor preview.
func (c *Canvas) DrawScaled(img image.Image, dst geometry.Rect) {
	r := image.Rect(
		int(dst.X+0.5), int(dst.Y+0.5),
		int(dst.X+dst.Width+0.5), int(dst.Y+dst.Height+0.5),
	)
	c.Interp.Scale(c.RGBA, r, img, img.Bounds(), draw.Over, nil)
}

// DrawStamp paints src into r rotated by degrees, alpha-composited over
// what is already on the canvas. Each call computes its own transform.
func (c *Canvas) DrawStamp(src image.Image, r geometry.Rect, degrees float64) {
	sb := src.Bounds()
	if sb.Empty() || r.Width <= 0 || r.Height <= 0 {
		return
	}
	m := StampTransform(r, degrees, sb)
	c.Interp.Transform(c.RGBA, m.Aff3(), src, sb, draw.Over, nil)
}

// Thumbnail returns img scaled to fit inside maxW×maxH, keeping its aspect.
func Thumbnail(img image.Image, maxW, maxH int) *image.RGBA {
	b := img.Bounds()
	if b.Empty() || maxW <= 0 || maxH <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	scale := float64(maxW) / float64(b.Dx())
	if s := float64(maxH) / float64(b.Dy()); s < scale {
		scale = s
	}
	w := max(1, int(float64(b.Dx())*scale+0.5))
	h := max(1, int(float64(b.Dy())*scale+0.5))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
