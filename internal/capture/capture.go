// Package capture takes a single still from a capture device and always
// releases the device afterwards.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"

	"photo-stamper/internal/apperr"
)

// ErrNoFrame is returned when the device delivered no usable frame.
var ErrNoFrame = errors.New("could not capture image")

// Device is a capture source. Close must be safe to call after a failed or
// partial Open.
type Device interface {
	Open(ctx context.Context) error
	Read() (image.Image, error)
	Close() error
}

// Capture opens dev, reads one frame and closes dev on every path,
// including a failed open and a cancelled context.
func Capture(ctx context.Context, dev Device) (frame image.Image, err error) {
	defer func() {
		if cerr := dev.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to release camera: %w", cerr)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := dev.Open(ctx); err != nil {
		return nil, apperr.Wrap(apperr.CodeValidation, "failed to access camera, check permissions", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frame, err = dev.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoFrame, err)
	}
	if frame == nil || frame.Bounds().Empty() {
		return nil, ErrNoFrame
	}
	return frame, nil
}
