package capture

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// warmupFrames are read and discarded so auto exposure can settle.
const warmupFrames = 5

// videoSource is the part of gocv.VideoCapture the camera uses.
type videoSource interface {
	IsOpened() bool
	Read(m *gocv.Mat) bool
	Close() error
}

// Camera is a Device backed by an OpenCV video capture.
type Camera struct {
	DeviceID int

	open   func(deviceID int) (videoSource, error)
	webcam videoSource
}

// NewCamera returns a camera for the given device index.
func NewCamera(deviceID int) *Camera {
	return &Camera{DeviceID: deviceID, open: openVideoCapture}
}

// openVideoCapture opens an OpenCV capture. gocv returns the native
// capture together with the error when opening fails; it still has to be
// closed.
func openVideoCapture(deviceID int) (videoSource, error) {
	vc, err := gocv.OpenVideoCapture(deviceID)
	if vc == nil {
		return nil, err
	}
	return vc, err
}

// Open implements Device. Whatever was acquired is kept for Close, also
// when Open fails.
func (c *Camera) Open(ctx context.Context) error {
	webcam, err := c.open(c.DeviceID)
	if webcam != nil {
		c.webcam = webcam
	}
	if err != nil {
		return fmt.Errorf("failed to open camera %d: %w", c.DeviceID, err)
	}
	if webcam == nil || !webcam.IsOpened() {
		return fmt.Errorf("camera %d is not available", c.DeviceID)
	}
	return ctx.Err()
}

// Read implements Device.
func (c *Camera) Read() (image.Image, error) {
	if c.webcam == nil {
		return nil, fmt.Errorf("camera not open")
	}
	mat := gocv.NewMat()
	defer mat.Close()

	for i := 0; i <= warmupFrames; i++ {
		if ok := c.webcam.Read(&mat); !ok {
			return nil, fmt.Errorf("camera %d stopped delivering frames", c.DeviceID)
		}
	}
	if mat.Empty() {
		return nil, ErrNoFrame
	}
	return mat.ToImage()
}

// Close implements Device.
func (c *Camera) Close() error {
	if c.webcam == nil {
		return nil
	}
	err := c.webcam.Close()
	c.webcam = nil
	return err
}
