// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"image/color"
	"time"

	"photo-stamper/internal/export"
	img "photo-stamper/internal/image"
	"photo-stamper/internal/stamp"
	"photo-stamper/pkg/colorutil"

	"github.com/caarlos0/env/v11"
)

// Config holds every STAMPER_* setting.
type Config struct {
	LogLevel string `env:"STAMPER_LOG_LEVEL" envDefault:"info"`

	// Catalog is a YAML stamp catalog; empty uses the built-in presets.
	Catalog       string  `env:"STAMPER_CATALOG"`
	DefaultStamp  string  `env:"STAMPER_DEFAULT_STAMP"  envDefault:"default-adsux-logo"`
	DefaultOffset float64 `env:"STAMPER_DEFAULT_OFFSET" envDefault:"20"`

	MaxUploadBytes int64         `env:"STAMPER_MAX_UPLOAD_BYTES" envDefault:"5242880"`
	AssetTimeout   time.Duration `env:"STAMPER_ASSET_TIMEOUT"    envDefault:"0s"`

	WorkspaceWidth  float64 `env:"STAMPER_WORKSPACE_WIDTH"  envDefault:"800"`
	WorkspaceHeight float64 `env:"STAMPER_WORKSPACE_HEIGHT" envDefault:"600"`

	OutputDir    string `env:"STAMPER_OUTPUT_DIR"    envDefault:"."`
	OutputFormat string `env:"STAMPER_OUTPUT_FORMAT" envDefault:"png"`
	JPEGQuality  int    `env:"STAMPER_JPEG_QUALITY"  envDefault:"92"`
	Interpolator string `env:"STAMPER_INTERPOLATOR"  envDefault:"bilinear"`

	CameraDevice int `env:"STAMPER_CAMERA_DEVICE" envDefault:"0"`

	// SelectionColor outlines the selected stamp, as #rgb, #rrggbb or #rrggbbaa.
	SelectionColor string `env:"STAMPER_SELECTION_COLOR" envDefault:"#3b82f6"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration with every default applied, ignoring
// the environment.
func Default() Config {
	return Config{
		LogLevel:        "info",
		DefaultStamp:    stamp.DefaultStampID,
		DefaultOffset:   20,
		MaxUploadBytes:  img.DefaultMaxUploadBytes,
		WorkspaceWidth:  800,
		WorkspaceHeight: 600,
		OutputDir:       ".",
		OutputFormat:    string(export.FormatPNG),
		JPEGQuality:     92,
		Interpolator:    img.InterpBiLinear,
		SelectionColor:  "#3b82f6",
	}
}

// Validate checks values the tags cannot express.
func (c Config) Validate() error {
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("STAMPER_MAX_UPLOAD_BYTES must not be negative")
	}
	if c.AssetTimeout < 0 {
		return fmt.Errorf("STAMPER_ASSET_TIMEOUT must not be negative")
	}
	if c.WorkspaceWidth <= 0 || c.WorkspaceHeight <= 0 {
		return fmt.Errorf("workspace size must be positive, got %gx%g", c.WorkspaceWidth, c.WorkspaceHeight)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("STAMPER_JPEG_QUALITY must be in [1,100], got %d", c.JPEGQuality)
	}
	if _, err := export.ParseFormat(c.OutputFormat); err != nil {
		return err
	}
	if _, err := img.ParseInterpolator(c.Interpolator); err != nil {
		return err
	}
	if _, err := colorutil.ParseHex(c.SelectionColor); err != nil {
		return fmt.Errorf("STAMPER_SELECTION_COLOR: %w", err)
	}
	return nil
}

// Selection returns the selection outline color, falling back to the
// built-in blue when SelectionColor does not parse.
func (c Config) Selection() color.RGBA {
	col, err := colorutil.ParseHex(c.SelectionColor)
	if err != nil {
		return colorutil.Selection
	}
	return col
}

// ExportOptions builds rasterizer options from the output settings.
func (c Config) ExportOptions() export.Options {
	format, _ := export.ParseFormat(c.OutputFormat)
	interp, _ := img.ParseInterpolator(c.Interpolator)
	return export.Options{
		Format:      format,
		JPEGQuality: c.JPEGQuality,
		Interp:      interp,
		LoadTimeout: c.AssetTimeout,
	}
}
