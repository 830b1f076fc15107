package geometry

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestNormalizeDegrees(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{15, 15},
		{360, 0},
		{365, 5},
		{-15, 345},
		{-360, 0},
		{725, 5},
		{350 + 15, 5},
	}
	for _, tt := range tests {
		if got := NormalizeDegrees(tt.in); !near(got, tt.want) {
			t.Errorf("NormalizeDegrees(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClampInto(t *testing.T) {
	bounds := NewSize(500, 400)
	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"inside", NewRect(10, 10, 50, 50), NewRect(10, 10, 50, 50)},
		{"negative", NewRect(-5, -20, 50, 50), NewRect(0, 0, 50, 50)},
		{"past far edge", NewRect(480, 390, 50, 50), NewRect(450, 350, 50, 50)},
		{"larger than bounds", NewRect(30, 30, 600, 500), NewRect(0, 0, 600, 500)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.ClampInto(bounds); got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRotationIsClockwiseOnScreen(t *testing.T) {
	// A point to the right of the origin rotates to below it for +90°.
	p := Rotation(Radians(90)).Apply(NewPoint2D(1, 0))
	if !near(p.X, 0) || !near(p.Y, 1) {
		t.Fatalf("got %+v, want (0,1)", p)
	}

	q := NewPoint2D(2, 1).RotateAbout(NewPoint2D(1, 1), 90)
	if !near(q.X, 1) || !near(q.Y, 2) {
		t.Fatalf("RotateAbout got %+v, want (1,2)", q)
	}
}

func TestComposeAndInverse(t *testing.T) {
	m := Translation(120, 120).Compose(Rotation(Radians(30))).Compose(Scale(2, 3))
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("expected invertible transform")
	}
	p := NewPoint2D(7, -4)
	back := inv.Apply(m.Apply(p))
	if !near(back.X, p.X) || !near(back.Y, p.Y) {
		t.Fatalf("round trip got %+v, want %+v", back, p)
	}

	if _, ok := Scale(0, 1).Inverse(); ok {
		t.Fatal("expected singular transform")
	}
}

func TestCornersAndPointInPolygon(t *testing.T) {
	r := NewRect(0, 0, 100, 20)
	square := Corners(r, 0)
	if !PointInPolygon(NewPoint2D(90, 10), square) {
		t.Fatal("expected point inside unrotated rect")
	}

	rotated := Corners(r, 90)
	// Rotated about (50,10) the bar becomes vertical: x in [40,60], y in [-40,60].
	if PointInPolygon(NewPoint2D(90, 10), rotated) {
		t.Fatal("expected point outside rotated rect")
	}
	if !PointInPolygon(NewPoint2D(50, 55), rotated) {
		t.Fatal("expected point inside rotated rect")
	}

	bb := BoundingBox(rotated)
	if !near(bb.X, 40) || !near(bb.Y, -40) || !near(bb.Width, 20) || !near(bb.Height, 100) {
		t.Fatalf("bounding box got %+v", bb)
	}
}
