package asset

import (
	"context"
	"image"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes successful loads and collapses concurrent loads of the
// same reference into one call. Failures are not cached.
type Cache struct {
	next  Loader
	group singleflight.Group

	mu     sync.RWMutex
	images map[string]image.Image
}

// NewCache wraps next.
func NewCache(next Loader) *Cache {
	return &Cache{next: next, images: make(map[string]image.Image)}
}

// Load implements Loader.
func (c *Cache) Load(ctx context.Context, ref string) (image.Image, error) {
	c.mu.RLock()
	im, ok := c.images[ref]
	c.mu.RUnlock()
	if ok {
		return im, nil
	}

	v, err, _ := c.group.Do(ref, func() (any, error) {
		im, err := c.next.Load(ctx, ref)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.images[ref] = im
		c.mu.Unlock()
		return im, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

// Peek returns a cached image without loading.
func (c *Cache) Peek(ref string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	im, ok := c.images[ref]
	return im, ok
}

// Forget drops a cached reference.
func (c *Cache) Forget(ref string) {
	c.mu.Lock()
	delete(c.images, ref)
	c.mu.Unlock()
	c.group.Forget(ref)
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}
