// Package image provides base-image loading and validation, and the raster
// primitives used by the compositor and the editor preview.
package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"photo-stamper/internal/apperr"
	"photo-stamper/pkg/geometry"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxUploadBytes is the upload size limit (5 MiB).
const DefaultMaxUploadBytes = 5 << 20

// Layer is a decoded raster with known natural dimensions: the base photo
// of a session or a loaded stamp asset.
type Layer struct {
	Source string      // path, data URI prefix, upload name or "camera"
	Format string      // decoder name reported by image.Decode
	Image  image.Image // decoded pixels
}

// NewLayer wraps an already decoded image.
func NewLayer(img image.Image, source string) *Layer {
	return &Layer{Source: source, Image: img}
}

// Width returns the image width in pixels.
func (l *Layer) Width() int {
	if l == nil || l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (l *Layer) Height() int {
	if l == nil || l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dy()
}

// Size returns the natural dimensions.
func (l *Layer) Size() geometry.Size {
	return geometry.Size{
		Width:  float64(l.Width()),
		Height: float64(l.Height()),
	}
}

// Empty reports whether the layer has no pixels.
func (l *Layer) Empty() bool {
	return l.Width() == 0 || l.Height() == 0
}

// Decode decodes raw image bytes.
func Decode(data []byte, source string) (*Layer, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeValidation, "could not decode image", err)
	}
	if img.Bounds().Empty() {
		return nil, apperr.New(apperr.CodeValidation, "image has no pixels")
	}
	return &Layer{Source: source, Format: format, Image: img}, nil
}

// Load loads an image from the specified path.
func Load(path string) (*Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return Decode(data, path)
}

// Upload is a user-supplied file with its declared content type.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// ValidateUpload checks the size limit and that the content type is image/*.
// An empty content type is sniffed from the data. maxBytes <= 0 disables the
// size check.
func ValidateUpload(u Upload, maxBytes int64) error {
	if maxBytes > 0 && int64(len(u.Data)) > maxBytes {
		return apperr.Newf(apperr.CodeValidation, "file is too large: %d bytes exceeds the %d byte limit", len(u.Data), maxBytes)
	}
	ct := u.ContentType
	if ct == "" {
		ct = http.DetectContentType(u.Data)
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return apperr.Wrap(apperr.CodeValidation, "invalid content type", err)
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return apperr.Newf(apperr.CodeValidation, "please upload an image file (got %s)", mediaType)
	}
	return nil
}

// FromUpload validates and decodes an upload.
func FromUpload(u Upload, maxBytes int64) (*Layer, error) {
	if err := ValidateUpload(u, maxBytes); err != nil {
		return nil, err
	}
	return Decode(u.Data, u.Name)
}

// ParseDataURI splits a data: URI into its media type and payload.
func ParseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, apperr.New(apperr.CodeValidation, "not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, apperr.New(apperr.CodeValidation, "data URI has no payload")
	}

	isBase64 := false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		meta, isBase64 = m, true
	}
	mediaType := "text/plain"
	if meta != "" {
		mt, _, err := mime.ParseMediaType(meta)
		if err != nil {
			return "", nil, apperr.Wrap(apperr.CodeValidation, "invalid data URI media type", err)
		}
		mediaType = mt
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some encoders drop the padding.
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return "", nil, apperr.Wrap(apperr.CodeValidation, "invalid base64 in data URI", err)
		}
		return mediaType, data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, apperr.Wrap(apperr.CodeValidation, "invalid escape in data URI", err)
	}
	return mediaType, []byte(s), nil
}

// FromDataURI decodes an image carried in a data: URI.
func FromDataURI(uri string, maxBytes int64) (*Layer, error) {
	mediaType, data, err := ParseDataURI(uri)
	if err != nil {
		return nil, err
	}
	return FromUpload(Upload{Name: "data-uri", ContentType: mediaType, Data: data}, maxBytes)
}

// SupportedFormats returns the list of supported image file extensions.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif", ".webp"}
}

// IsSupportedFormat reports whether path has one of the SupportedFormats
// extensions.
func IsSupportedFormat(path string) bool {
	return slices.Contains(SupportedFormats(), strings.ToLower(filepath.Ext(path)))
}

// ContentTypeFor guesses the content type of a file from its extension.
func ContentTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".tif", ".tiff":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	}
	return mime.TypeByExtension(ext)
}
