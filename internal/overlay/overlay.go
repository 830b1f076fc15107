// Package overlay holds the placed-stamp data model and the store that owns it.
package overlay

import (
	"photo-stamper/pkg/geometry"
)

// Overlay is one placed, independently transformable stamp instance.
// Positions and sizes are in display space.
type Overlay struct {
	ID       string `json:"id" yaml:"id"`
	AssetID  string `json:"asset_id" yaml:"asset_id"`
	ImageRef string `json:"image_ref" yaml:"image_ref"`
	AltText  string `json:"alt" yaml:"alt"`

	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`

	// AspectRatio is width/height at creation; resizes preserve it.
	AspectRatio float64 `json:"aspect_ratio" yaml:"aspect_ratio"`

	// RotationDegrees is clockwise about the overlay center, in [0,360).
	RotationDegrees float64 `json:"rotation" yaml:"rotation"`

	ZIndex int `json:"z_index" yaml:"z_index"`
}

// Rect returns the unrotated display-space bounds.
func (o Overlay) Rect() geometry.Rect {
	return geometry.NewRect(o.X, o.Y, o.Width, o.Height)
}

// Position returns the top-left corner.
func (o Overlay) Position() geometry.Point2D {
	return geometry.NewPoint2D(o.X, o.Y)
}

// Size returns the display size.
func (o Overlay) Size() geometry.Size {
	return geometry.NewSize(o.Width, o.Height)
}

// Center returns the rotation center.
func (o Overlay) Center() geometry.Point2D {
	return o.Rect().Center()
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	X        *float64
	Y        *float64
	Width    *float64
	Height   *float64
	Rotation *float64
}

// Move returns a patch setting the position.
func Move(x, y float64) Patch {
	return Patch{X: &x, Y: &y}
}

// Resize returns a patch setting the size.
func Resize(width, height float64) Patch {
	return Patch{Width: &width, Height: &height}
}

// Rotate returns a patch setting the rotation.
func Rotate(degrees float64) Patch {
	return Patch{Rotation: &degrees}
}

// Bounds returns a patch setting position and size together.
func Bounds(r geometry.Rect) Patch {
	return Patch{X: &r.X, Y: &r.Y, Width: &r.Width, Height: &r.Height}
}

// apply merges p into o. Non-positive sizes are ignored.
func (p Patch) apply(o *Overlay) {
	if p.X != nil {
		o.X = *p.X
	}
	if p.Y != nil {
		o.Y = *p.Y
	}
	if p.Width != nil && *p.Width > 0 {
		o.Width = *p.Width
	}
	if p.Height != nil && *p.Height > 0 {
		o.Height = *p.Height
	}
	if p.Rotation != nil {
		o.RotationDegrees = geometry.NormalizeDegrees(*p.Rotation)
	}
}
