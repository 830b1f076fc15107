package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"photo-stamper/internal/apperr"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	im := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range im.Pix {
		im.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, im); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestResolverSchemes(t *testing.T) {
	data := pngBytes(t, 6, 4)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/logo.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(data)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "local.png"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(dir, nil)
	r.Client = srv.Client()

	refs := []string{
		srv.URL + "/logo.png",
		"data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
		"local.png",
		filepath.Join(dir, "local.png"),
		"file://" + filepath.Join(dir, "local.png"),
	}
	for _, ref := range refs {
		im, err := r.Load(context.Background(), ref)
		if err != nil {
			t.Fatalf("Load(%.40s): %v", ref, err)
		}
		if im.Bounds().Dx() != 6 || im.Bounds().Dy() != 4 {
			t.Fatalf("Load(%.40s) bounds = %v", ref, im.Bounds())
		}
	}

	for _, ref := range []string{"", srv.URL + "/missing.png", "nope.png", "data:image/png;base64,AAAA"} {
		if _, err := r.Load(context.Background(), ref); err == nil {
			t.Errorf("Load(%q): expected error", ref)
		}
	}
}

func TestResolverMaxBytes(t *testing.T) {
	data := pngBytes(t, 64, 64)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	r := NewResolver("", nil)
	r.MaxBytes = 16
	if _, err := r.Load(context.Background(), srv.URL); err == nil {
		t.Fatal("expected size limit error")
	}
}

func TestCacheCollapsesConcurrentLoads(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	slow := LoaderFunc(func(ctx context.Context, ref string) (image.Image, error) {
		calls.Add(1)
		<-release
		return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
	})
	c := NewCache(slow)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Load(context.Background(), "same"); err != nil {
				t.Error(err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Fatalf("underlying loads = %d, want 1", n)
	}
	if _, err := c.Load(context.Background(), "same"); err != nil || calls.Load() != 1 {
		t.Fatal("second load must be served from cache")
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d", c.Len())
	}
	if _, ok := c.Peek("same"); !ok {
		t.Fatal("Peek must see the cached image")
	}
	c.Forget("same")
	if c.Len() != 0 {
		t.Fatal("Forget must drop the entry")
	}
}

func TestCacheDoesNotKeepFailures(t *testing.T) {
	var calls atomic.Int32
	failing := LoaderFunc(func(ctx context.Context, ref string) (image.Image, error) {
		calls.Add(1)
		return nil, errors.New("boom")
	})
	c := NewCache(failing)
	c.Load(context.Background(), "x")
	c.Load(context.Background(), "x")
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
	if _, ok := c.Peek("x"); ok {
		t.Fatal("failed load must not be cached")
	}
}

func TestLoadAllWaitsForEveryLoad(t *testing.T) {
	var finished atomic.Int32
	l := LoaderFunc(func(ctx context.Context, ref string) (image.Image, error) {
		switch ref {
		case "bad-fast":
			return nil, errors.New("404")
		case "bad-slow":
			time.Sleep(30 * time.Millisecond)
			finished.Add(1)
			return nil, errors.New("timeout")
		}
		time.Sleep(50 * time.Millisecond)
		finished.Add(1)
		return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
	})

	reqs := []Request{
		{OverlayID: "o1", Ref: "ok"},
		{OverlayID: "o2", Ref: "bad-slow", Alt: "slow"},
		{OverlayID: "o3", Ref: "bad-fast", Alt: "fast"},
		{OverlayID: "o4", Ref: "ok"},
	}
	_, err := LoadAll(context.Background(), l, reqs, 0)
	if !errors.Is(err, apperr.ErrAssetLoadFailed) {
		t.Fatalf("err = %v, want asset load failure", err)
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.OverlayID != "o2" {
		t.Fatalf("failing overlay = %+v, want o2 (first in order)", ae)
	}
	if n := finished.Load(); n != 3 {
		t.Fatalf("finished = %d, want all 3 slow loads settled", n)
	}
}

func TestLoadAllSuccess(t *testing.T) {
	l := LoaderFunc(func(ctx context.Context, ref string) (image.Image, error) {
		var n int
		fmt.Sscanf(ref, "%d", &n)
		return image.NewRGBA(image.Rect(0, 0, n, n)), nil
	})
	ims, err := LoadAll(context.Background(), l, []Request{{Ref: "1"}, {Ref: "2"}, {Ref: "3"}}, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i, im := range ims {
		if im.Bounds().Dx() != i+1 {
			t.Fatalf("result %d misaligned: %v", i, im.Bounds())
		}
	}
}

func TestLoadAllTimeout(t *testing.T) {
	l := LoaderFunc(func(ctx context.Context, ref string) (image.Image, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
		}
	})
	_, err := LoadAll(context.Background(), l, []Request{{OverlayID: "o1", Ref: "slow"}}, 10*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) || !errors.Is(err, apperr.ErrAssetLoadFailed) {
		t.Fatalf("err = %v", err)
	}
}
