// Package stamp provides the stamp catalog: the presets a user can place on
// a photo.
package stamp

import (
	"fmt"
	"os"

	"photo-stamper/internal/apperr"
	"photo-stamper/pkg/geometry"

	"gopkg.in/yaml.v3"
)

// DefaultStampID is the branding stamp placed automatically on every new image.
const DefaultStampID = "default-adsux-logo"

// Asset is one immutable catalog entry.
type Asset struct {
	ID            string  `yaml:"id"`
	DisplayName   string  `yaml:"name"`
	ImageRef      string  `yaml:"image"`
	AltText       string  `yaml:"alt"`
	DefaultWidth  float64 `yaml:"width"`
	DefaultHeight float64 `yaml:"height"`
}

// DefaultSize returns the asset's default display size.
func (a Asset) DefaultSize() geometry.Size {
	return geometry.NewSize(a.DefaultWidth, a.DefaultHeight)
}

// Catalog is an ordered, read-only set of assets.
type Catalog struct {
	assets []Asset
	byID   map[string]int
}

// NewCatalog validates assets and builds a catalog preserving their order.
func NewCatalog(assets []Asset) (*Catalog, error) {
	c := &Catalog{
		assets: make([]Asset, 0, len(assets)),
		byID:   make(map[string]int, len(assets)),
	}
	for i, a := range assets {
		if a.ID == "" {
			return nil, apperr.Newf(apperr.CodeValidation, "stamp %d has no id", i)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, apperr.Newf(apperr.CodeValidation, "duplicate stamp id %q", a.ID)
		}
		if a.DefaultSize().Empty() {
			return nil, apperr.Newf(apperr.CodeValidation, "stamp %q must have a positive default size", a.ID)
		}
		if a.ImageRef == "" {
			return nil, apperr.Newf(apperr.CodeValidation, "stamp %q has no image", a.ID)
		}
		if a.DisplayName == "" {
			a.DisplayName = a.ID
		}
		c.byID[a.ID] = len(c.assets)
		c.assets = append(c.assets, a)
	}
	return c, nil
}

// Lookup returns the asset with the given id.
func (c *Catalog) Lookup(id string) (Asset, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Asset{}, false
	}
	return c.assets[i], true
}

// Assets returns a copy of all assets in catalog order.
func (c *Catalog) Assets() []Asset {
	out := make([]Asset, len(c.assets))
	copy(out, c.assets)
	return out
}

// Len returns the number of assets.
func (c *Catalog) Len() int {
	return len(c.assets)
}

type catalogFile struct {
	Stamps []Asset `yaml:"stamps"`
}

// Parse reads a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, apperr.Wrap(apperr.CodeValidation, "invalid stamp catalog", err)
	}
	return NewCatalog(f.Stamps)
}

// LoadFile reads a YAML catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Load returns the catalog at path, or the built-in presets when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Builtin(), nil
	}
	return LoadFile(path)
}

// Marshal renders the catalog as a YAML document accepted by Parse.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(catalogFile{Stamps: c.assets})
}
