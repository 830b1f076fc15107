// Package export rasterizes a stamped scene at the base photo's natural
// resolution and hands the encoded file to a Saver.
package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"time"

	"photo-stamper/internal/apperr"
	"photo-stamper/internal/asset"
	"photo-stamper/internal/coords"
	img "photo-stamper/internal/image"
	"photo-stamper/internal/overlay"
	"photo-stamper/pkg/geometry"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// BaseName is the suggested output file name without extension.
const BaseName = "stamped-image"

// Format is an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// ParseFormat accepts png, jpeg or jpg.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", s)
	}
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return ".png"
}

// FileName returns the suggested output file name.
func (f Format) FileName() string {
	return BaseName + f.Ext()
}

// Options configures a Rasterizer.
type Options struct {
	Format      Format
	JPEGQuality int
	Interp      draw.Interpolator
	// LoadTimeout bounds each asset load; zero means no timeout.
	LoadTimeout time.Duration
}

// Scene is the snapshot a render works on.
type Scene struct {
	Base     image.Image
	Display  geometry.Size // measured display size of the base image
	Overlays []overlay.Overlay
}

// Result describes a saved export.
type Result struct {
	Name  string
	Bytes int
	Size  image.Point
}

// Rasterizer composes scenes into output files.
type Rasterizer struct {
	loader asset.Loader
	opts   Options
	logger *zap.Logger
}

// New creates a rasterizer loading stamp images through loader.
func New(loader asset.Loader, opts Options, logger *zap.Logger) *Rasterizer {
	if opts.Format == "" {
		opts.Format = FormatPNG
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = jpeg.DefaultQuality
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rasterizer{loader: loader, opts: opts, logger: logger}
}

// Format returns the configured output format.
func (r *Rasterizer) Format() Format {
	return r.opts.Format
}

// Render produces the composite raster. Every stamp image is loaded before
// anything is drawn; a failed load returns an AssetLoadFailed error naming
// the first failing overlay in paint order.
func (r *Rasterizer) Render(ctx context.Context, scene Scene) (*image.RGBA, error) {
	if scene.Base == nil || scene.Base.Bounds().Empty() {
		return nil, apperr.New(apperr.CodeNotReady, "no base image")
	}
	if len(scene.Overlays) == 0 {
		return nil, apperr.New(apperr.CodeNotReady, "image must have at least one stamp to download")
	}
	nb := scene.Base.Bounds()
	natural := geometry.NewSize(float64(nb.Dx()), float64(nb.Dy()))
	mapper, ok := coords.NewMapper(natural, scene.Display)
	if !ok {
		return nil, apperr.New(apperr.CodeNotReady, "image is not laid out")
	}

	ordered := make([]overlay.Overlay, len(scene.Overlays))
	copy(ordered, scene.Overlays)
	overlay.SortByZ(ordered)

	reqs := make([]asset.Request, len(ordered))
	for i, o := range ordered {
		reqs[i] = asset.Request{OverlayID: o.ID, Ref: o.ImageRef, Alt: o.AltText}
	}
	start := time.Now()
	stamps, err := asset.LoadAll(ctx, r.loader, reqs, r.opts.LoadTimeout)
	if err != nil {
		r.logger.Warn("stamp images failed to load", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("stamp images loaded",
		zap.Int("count", len(stamps)),
		zap.Duration("elapsed", time.Since(start)))

	canvas := img.NewCanvas(nb.Dx(), nb.Dy(), r.opts.Interp)
	canvas.DrawBase(scene.Base)
	for i, o := range ordered {
		canvas.DrawStamp(stamps[i], mapper.RectToNatural(o.Rect()), o.RotationDegrees)
	}
	return canvas.RGBA, nil
}

// Encode writes m in the configured format.
func (r *Rasterizer) Encode(w io.Writer, m image.Image) error {
	switch r.opts.Format {
	case FormatJPEG:
		return jpeg.Encode(w, m, &jpeg.Options{Quality: r.opts.JPEGQuality})
	default:
		return png.Encode(w, m)
	}
}

// Export renders, encodes and saves the scene. Nothing reaches the saver
// unless every step succeeded.
func (r *Rasterizer) Export(ctx context.Context, scene Scene, saver Saver) (Result, error) {
	m, err := r.Render(ctx, scene)
	if err != nil {
		return Result{}, err
	}
	var buf bytes.Buffer
	if err := r.Encode(&buf, m); err != nil {
		return Result{}, fmt.Errorf("failed to encode %s: %w", r.opts.Format, err)
	}
	name := r.opts.Format.FileName()
	if err := saver.Save(name, buf.Bytes()); err != nil {
		return Result{}, fmt.Errorf("failed to save %s: %w", name, err)
	}
	r.logger.Info("image exported",
		zap.String("file", name),
		zap.Int("bytes", buf.Len()),
		zap.Int("stamps", len(scene.Overlays)))
	return Result{Name: name, Bytes: buf.Len(), Size: m.Bounds().Size()}, nil
}
