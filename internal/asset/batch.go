package asset

import (
	"context"
	"image"
	"time"

	"photo-stamper/internal/apperr"

	"golang.org/x/sync/errgroup"
)

// Request is one image to load as part of a batch.
type Request struct {
	OverlayID string
	Ref       string
	Alt       string
}

// LoadAll loads every request concurrently and waits for all of them to
// settle; a failure does not cancel the loads still in flight. The result
// is index-aligned with reqs. When any load fails the error names the first
// failing request in slice order. timeout > 0 bounds each load.
func LoadAll(ctx context.Context, l Loader, reqs []Request, timeout time.Duration) ([]image.Image, error) {
	images := make([]image.Image, len(reqs))
	errs := make([]error, len(reqs))

	var g errgroup.Group
	for i, req := range reqs {
		g.Go(func() error {
			lctx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				lctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			images[i], errs[i] = l.Load(lctx, req.Ref)
			return errs[i]
		})
	}
	if g.Wait() == nil {
		return images, nil
	}

	for i, err := range errs {
		if err != nil {
			return nil, apperr.AssetLoad(reqs[i].OverlayID, reqs[i].Alt, err)
		}
	}
	return images, nil
}
