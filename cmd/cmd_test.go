package cmd

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func pngFile(t *testing.T, path string, w, h int, c color.RGBA) []byte {
	t.Helper()
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, m); err != nil {
		t.Fatal(err)
	}
	if path != "" {
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return buf.Bytes()
}

// setupCatalog writes an offline catalog and points the environment at it.
func setupCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	logo := "data:image/png;base64," + base64.StdEncoding.EncodeToString(
		pngFile(t, "", 4, 4, color.RGBA{R: 255, A: 255}))
	pngFile(t, filepath.Join(dir, "star.png"), 4, 4, color.RGBA{B: 255, A: 255})

	doc := fmt.Sprintf(`stamps:
  - {id: logo, name: Logo, image: "%s", width: 80, height: 80}
  - {id: star, name: Star, image: star.png, width: 40, height: 40}
`, logo)
	path := filepath.Join(dir, "stamps.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STAMPER_CATALOG", path)
	t.Setenv("STAMPER_DEFAULT_STAMP", "logo")
	t.Setenv("STAMPER_LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCatalogList(t *testing.T) {
	setupCatalog(t)
	out, err := run(t, "catalog", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "logo") || !strings.Contains(out, "40x40") {
		t.Fatalf("unexpected listing:\n%s", out)
	}
}

func TestCatalogExportBuiltin(t *testing.T) {
	t.Setenv("STAMPER_LOG_LEVEL", "error")
	out, err := run(t, "catalog", "export")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "default-adsux-logo") || !strings.Contains(out, "cool-shades") {
		t.Fatalf("built-in presets missing:\n%s", out)
	}
}

func TestCatalogValidate(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("stamps:\n  - {id: a, image: a.png, width: 0, height: 1}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STAMPER_LOG_LEVEL", "error")
	if _, err := run(t, "catalog", "validate", bad); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestCatalogCheck(t *testing.T) {
	setupCatalog(t)
	out, err := run(t, "catalog", "check")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "logo: 4x4") || !strings.Contains(out, "star: 4x4") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCompose(t *testing.T) {
	dir := setupCatalog(t)
	pngFile(t, filepath.Join(dir, "photo.png"), 200, 100, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	scenePath := filepath.Join(dir, "scene.yaml")
	doc := "image: photo.png\nworkspace: {width: 400, height: 200}\nstamps:\n  - {stamp: star, x: 300, y: 100}\n"
	if err := os.WriteFile(scenePath, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STAMPER_OUTPUT_DIR", filepath.Join(dir, "out"))

	out, err := run(t, "compose", "--scene", scenePath)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "out", "stamped-image.png")
	if !strings.Contains(out, want) || !strings.Contains(out, "2 stamps") {
		t.Fatalf("output = %q", out)
	}

	f, err := os.Open(want)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	m, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if m.Bounds().Dx() != 200 || m.Bounds().Dy() != 100 {
		t.Fatalf("export size %v, want natural 200x100", m.Bounds())
	}
	// Star at display (300,100) 40x40 maps to natural (150,50) 20x20.
	if r, g, b, _ := m.At(160, 60).RGBA(); r != 0 || g != 0 || b>>8 != 255 {
		t.Fatalf("star pixel = %v", m.At(160, 60))
	}
	// Logo at display (20,20) 80x80 maps to natural (10,10) 40x40.
	if r, g, _, _ := m.At(30, 30).RGBA(); r>>8 != 255 || g != 0 {
		t.Fatalf("logo pixel = %v", m.At(30, 30))
	}
}

func TestComposeRequiresScene(t *testing.T) {
	t.Setenv("STAMPER_LOG_LEVEL", "error")
	if _, err := run(t, "compose"); err == nil {
		t.Fatal("expected missing flag error")
	}
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("STAMPER_OUTPUT_FORMAT", "gif")
	if _, err := run(t, "catalog", "list"); err == nil {
		t.Fatal("expected config error")
	}
}
