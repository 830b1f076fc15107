package config

import (
	"strings"
	"testing"
	"time"

	"photo-stamper/internal/export"
	"photo-stamper/pkg/colorutil"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("defaults differ:\n got %+v\nwant %+v", cfg, Default())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STAMPER_DEFAULT_OFFSET", "35")
	t.Setenv("STAMPER_ASSET_TIMEOUT", "3s")
	t.Setenv("STAMPER_OUTPUT_FORMAT", "jpg")
	t.Setenv("STAMPER_INTERPOLATOR", "nearest")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultOffset != 35 || cfg.AssetTimeout != 3*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
	opts := cfg.ExportOptions()
	if opts.Format != export.FormatJPEG || opts.LoadTimeout != 3*time.Second || opts.Interp == nil {
		t.Fatalf("options = %+v", opts)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"STAMPER_MAX_UPLOAD_BYTES", "lots", "parse env:"},
		{"STAMPER_JPEG_QUALITY", "0", "JPEG_QUALITY"},
		{"STAMPER_OUTPUT_FORMAT", "gif", "unsupported output format"},
		{"STAMPER_INTERPOLATOR", "lanczos", "unknown interpolator"},
		{"STAMPER_WORKSPACE_WIDTH", "0", "workspace size"},
		{"STAMPER_ASSET_TIMEOUT", "-1s", "ASSET_TIMEOUT"},
		{"STAMPER_SELECTION_COLOR", "#blue", "SELECTION_COLOR"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestSelectionColor(t *testing.T) {
	if got := Default().Selection(); got != colorutil.Selection {
		t.Fatalf("default selection = %v, want %v", got, colorutil.Selection)
	}

	t.Setenv("STAMPER_SELECTION_COLOR", "#f00")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Selection(); got != colorutil.Red {
		t.Fatalf("selection = %v, want red", got)
	}

	cfg.SelectionColor = "nope"
	if got := cfg.Selection(); got != colorutil.Selection {
		t.Fatalf("unparsable selection = %v, want fallback", got)
	}
}
