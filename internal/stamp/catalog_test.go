package stamp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"photo-stamper/internal/apperr"
)

func TestBuiltin(t *testing.T) {
	c := Builtin()
	if c.Len() != 6 {
		t.Fatalf("Len = %d, want 6", c.Len())
	}
	a, ok := c.Lookup(DefaultStampID)
	if !ok {
		t.Fatal("default stamp missing")
	}
	if a.DefaultWidth != 80 || a.DefaultHeight != 80 {
		t.Fatalf("default stamp size = %vx%v", a.DefaultWidth, a.DefaultHeight)
	}
	if got := c.Assets()[0].ID; got != DefaultStampID {
		t.Fatalf("first asset = %q, catalog order not preserved", got)
	}
	if _, ok := c.Lookup("nope"); ok {
		t.Fatal("unexpected lookup hit")
	}
}

func TestParse(t *testing.T) {
	doc := []byte(`
stamps:
  - id: logo
    name: Logo
    image: data:image/png;base64,AAAA
    alt: Company logo
    width: 120
    height: 40
  - id: dot
    image: ./dot.png
    width: 10
    height: 10
`)
	c, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	logo, _ := c.Lookup("logo")
	if logo.DisplayName != "Logo" || logo.DefaultSize().Aspect() != 3 {
		t.Fatalf("logo = %+v", logo)
	}
	dot, _ := c.Lookup("dot")
	if dot.DisplayName != "dot" {
		t.Fatalf("display name should default to id, got %q", dot.DisplayName)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"duplicate", "stamps:\n  - {id: a, image: x, width: 1, height: 1}\n  - {id: a, image: y, width: 1, height: 1}\n"},
		{"zero size", "stamps:\n  - {id: a, image: x, width: 0, height: 1}\n"},
		{"missing id", "stamps:\n  - {image: x, width: 1, height: 1}\n"},
		{"missing image", "stamps:\n  - {id: a, width: 1, height: 1}\n"},
		{"bad yaml", "stamps: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestLoadFileRoundTrip(t *testing.T) {
	data, err := Builtin().Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "stamps.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != Builtin().Len() {
		t.Fatalf("Len = %d", c.Len())
	}
	if b, err := Load(""); err != nil || b.Len() != 6 {
		t.Fatalf("Load(\"\") = %v, %v", b, err)
	}
}
