package workspace

import (
	"context"
	"image"
	"sync"

	"photo-stamper/internal/asset"

	"go.uber.org/zap"
)

// Images serves stamp images to the renderer without blocking it. A miss
// starts a background load and returns nil; onReady runs once the image
// is cached.
type Images struct {
	cache   *asset.Cache
	logger  *zap.Logger
	onReady func()

	mu      sync.Mutex
	pending map[string]bool
	failed  map[string]bool
}

// NewImages creates an image source over cache.
func NewImages(cache *asset.Cache, logger *zap.Logger) *Images {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Images{
		cache:   cache,
		logger:  logger,
		pending: make(map[string]bool),
		failed:  make(map[string]bool),
	}
}

// OnReady sets the callback run after a background load succeeds.
func (m *Images) OnReady(fn func()) {
	m.onReady = fn
}

// Get returns the cached image for ref, or nil while it is loading or
// after it failed.
func (m *Images) Get(ref string) image.Image {
	if im, ok := m.cache.Peek(ref); ok {
		return im
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending[ref] || m.failed[ref] {
		return nil
	}
	m.pending[ref] = true
	go m.load(ref)
	return nil
}

// Retry forgets earlier failures so they are loaded again.
func (m *Images) Retry() {
	m.mu.Lock()
	m.failed = make(map[string]bool)
	m.mu.Unlock()
}

func (m *Images) load(ref string) {
	_, err := m.cache.Load(context.Background(), ref)

	m.mu.Lock()
	delete(m.pending, ref)
	if err != nil {
		m.failed[ref] = true
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("stamp preview load failed", zap.String("ref", ref), zap.Error(err))
		return
	}
	if m.onReady != nil {
		m.onReady()
	}
}
