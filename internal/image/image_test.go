package image

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"photo-stamper/internal/apperr"
	"photo-stamper/pkg/geometry"

	"golang.org/x/image/draw"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

var (
	red   = color.RGBA{R: 255, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

func TestDecode(t *testing.T) {
	data := encodePNG(t, solid(4, 3, red))
	l, err := Decode(data, "mem")
	if err != nil {
		t.Fatal(err)
	}
	if l.Width() != 4 || l.Height() != 3 || l.Format != "png" {
		t.Fatalf("got %dx%d %s", l.Width(), l.Height(), l.Format)
	}
	if l.Size() != geometry.NewSize(4, 3) {
		t.Fatalf("size = %+v", l.Size())
	}

	if _, err := Decode([]byte("not an image"), "mem"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, encodePNG(t, solid(10, 8, white)), 0o644); err != nil {
		t.Fatal(err)
	}
	l, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if l.Source != path || l.Width() != 10 {
		t.Fatalf("layer = %+v", l)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateUpload(t *testing.T) {
	data := encodePNG(t, solid(2, 2, red))
	tests := []struct {
		name string
		u    Upload
		max  int64
		ok   bool
	}{
		{"png", Upload{ContentType: "image/png", Data: data}, 1 << 20, true},
		{"sniffed", Upload{Data: data}, 1 << 20, true},
		{"no limit", Upload{ContentType: "image/png", Data: data}, 0, true},
		{"too large", Upload{ContentType: "image/png", Data: data}, 10, false},
		{"not an image type", Upload{ContentType: "application/pdf", Data: data}, 1 << 20, false},
		{"sniffed text", Upload{Data: []byte("hello")}, 1 << 20, false},
		{"bad content type", Upload{ContentType: ";;", Data: data}, 1 << 20, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.u, tt.max)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("err = %v, want validation", err)
			}
		})
	}
}

func TestFromUploadUndecodable(t *testing.T) {
	_, err := FromUpload(Upload{ContentType: "image/png", Data: []byte("garbage")}, DefaultMaxUploadBytes)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestParseDataURI(t *testing.T) {
	tests := []struct {
		uri      string
		wantType string
		want     string
		wantErr  bool
	}{
		{"data:text/plain;base64,aGVsbG8=", "text/plain", "hello", false},
		{"data:;base64,aGVsbG8", "text/plain", "hello", false},
		{"data:,hello%20world", "text/plain", "hello world", false},
		{"data:image/svg+xml;charset=utf-8,%3Csvg%3E", "image/svg+xml", "<svg>", false},
		{"https://example.com/x.png", "", "", true},
		{"data:image/png;base64", "", "", true},
		{"data:image/png;base64,!!!", "", "", true},
	}
	for _, tt := range tests {
		mt, data, err := ParseDataURI(tt.uri)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseDataURI(%q) err = %v", tt.uri, err)
		}
		if tt.wantErr {
			continue
		}
		if mt != tt.wantType || string(data) != tt.want {
			t.Errorf("ParseDataURI(%q) = %q, %q", tt.uri, mt, data)
		}
	}
}

func TestFromDataURI(t *testing.T) {
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(encodePNG(t, solid(3, 3, red)))
	l, err := FromDataURI(uri, DefaultMaxUploadBytes)
	if err != nil {
		t.Fatal(err)
	}
	if l.Width() != 3 {
		t.Fatalf("width = %d", l.Width())
	}
}

func TestStampTransformMapsCorners(t *testing.T) {
	m := StampTransform(geometry.NewRect(40, 40, 160, 160), 0, image.Rect(0, 0, 10, 10))
	if p := m.Apply(geometry.NewPoint2D(0, 0)); p != geometry.NewPoint2D(40, 40) {
		t.Fatalf("origin -> %+v", p)
	}
	if p := m.Apply(geometry.NewPoint2D(10, 10)); p != geometry.NewPoint2D(200, 200) {
		t.Fatalf("far corner -> %+v", p)
	}
}

func TestDrawStamp(t *testing.T) {
	tests := []struct {
		name    string
		degrees float64
		redAt   []image.Point
		whiteAt []image.Point
	}{
		{
			name:    "axis aligned",
			degrees: 0,
			redAt:   []image.Point{{120, 120}, {45, 45}, {195, 195}},
			whiteAt: []image.Point{{20, 20}, {210, 120}, {120, 210}},
		},
		{
			name:    "45 degrees",
			degrees: 45,
			redAt:   []image.Point{{120, 120}, {120, 20}},
			whiteAt: []image.Point{{45, 45}, {195, 195}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanvas(300, 300, nil)
			c.DrawBase(solid(300, 300, white))
			c.DrawStamp(solid(10, 10, red), geometry.NewRect(40, 40, 160, 160), tt.degrees)

			for _, p := range tt.redAt {
				if got := c.RGBA.RGBAAt(p.X, p.Y); got != red {
					t.Errorf("pixel %v = %v, want red", p, got)
				}
			}
			for _, p := range tt.whiteAt {
				if got := c.RGBA.RGBAAt(p.X, p.Y); got != white {
					t.Errorf("pixel %v = %v, want white", p, got)
				}
			}
		})
	}
}

func TestParseInterpolator(t *testing.T) {
	for _, name := range []string{"", "nearest", "approx-bilinear", "BiLinear", "catmull-rom"} {
		if _, err := ParseInterpolator(name); err != nil {
			t.Errorf("ParseInterpolator(%q): %v", name, err)
		}
	}
	if _, err := ParseInterpolator("lanczos"); err == nil {
		t.Fatal("expected error")
	}
}

func TestThumbnail(t *testing.T) {
	th := Thumbnail(solid(200, 100, red), 50, 50)
	if th.Bounds().Dx() != 50 || th.Bounds().Dy() != 25 {
		t.Fatalf("thumbnail = %v", th.Bounds())
	}
}
