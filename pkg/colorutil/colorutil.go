// Package colorutil provides shared colors and color parsing for the editor.
package colorutil

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Common colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Blue    = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
)

// Editor chrome.
var (
	// Selection outlines the selected stamp.
	Selection = color.RGBA{R: 59, G: 130, B: 246, A: 255}
	// Handle fills the resize handle.
	Handle = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	// ControlsBackground is the translucent bar behind the stamp buttons.
	ControlsBackground = color.RGBA{R: 17, G: 24, B: 39, A: 200}
	// Letterbox fills the workspace around a contain-fitted photo.
	Letterbox = color.RGBA{R: 40, G: 40, B: 40, A: 255}
)

// WithAlpha returns c with its alpha replaced, premultiplying the channels.
func WithAlpha(c color.Color, a uint8) color.RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = a
	return color.RGBAModel.Convert(n).(color.RGBA)
}

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa" (the # is optional).
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	n := color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	return color.RGBAModel.Convert(n).(color.RGBA), nil
}
