// Package asset resolves stamp image references to decoded images.
//
// A reference is a data: URI, an http(s) URL, a file:// URL or a plain file
// path (relative paths resolve against the loader's base directory).
package asset

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	img "photo-stamper/internal/image"

	"go.uber.org/zap"
)

// DefaultMaxBytes caps a single remote or file asset.
const DefaultMaxBytes = 16 << 20

// Loader loads the image behind a reference.
type Loader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, ref string) (image.Image, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, ref string) (image.Image, error) {
	return f(ctx, ref)
}

// Resolver is the Loader that understands every supported reference scheme.
type Resolver struct {
	Client   *http.Client
	BaseDir  string
	MaxBytes int64
	Logger   *zap.Logger
}

// NewResolver returns a resolver using http.DefaultClient.
func NewResolver(baseDir string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		Client:   http.DefaultClient,
		BaseDir:  baseDir,
		MaxBytes: DefaultMaxBytes,
		Logger:   logger,
	}
}

// Load implements Loader.
func (r *Resolver) Load(ctx context.Context, ref string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case ref == "":
		return nil, fmt.Errorf("empty image reference")
	case strings.HasPrefix(ref, "data:"):
		l, err := img.FromDataURI(ref, r.MaxBytes)
		if err != nil {
			return nil, err
		}
		return l.Image, nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return r.fetch(ctx, ref)
	case strings.HasPrefix(ref, "file://"):
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("invalid file URL: %w", err)
		}
		return r.file(u.Path)
	default:
		return r.file(ref)
	}
}

func (r *Resolver) file(path string) (image.Image, error) {
	if !filepath.IsAbs(path) && r.BaseDir != "" {
		path = filepath.Join(r.BaseDir, path)
	}
	l, err := img.Load(path)
	if err != nil {
		return nil, err
	}
	return l.Image, nil
}

func (r *Resolver) fetch(ctx context.Context, ref string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	r.Logger.Debug("fetching stamp image", zap.String("url", ref))
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: %s", ref, resp.Status)
	}

	body := io.Reader(resp.Body)
	if r.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, r.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	if r.MaxBytes > 0 && int64(len(data)) > r.MaxBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", ref, r.MaxBytes)
	}

	l, err := img.Decode(data, ref)
	if err != nil {
		return nil, err
	}
	return l.Image, nil
}
