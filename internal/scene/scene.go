// Package scene replays a YAML description of a stamped photo through an
// editing session, for headless composition.
package scene

import (
	"fmt"
	"os"
	"path/filepath"

	"photo-stamper/internal/app"
	"photo-stamper/internal/coords"
	"photo-stamper/internal/manipulate"
	"photo-stamper/internal/overlay"
	"photo-stamper/pkg/geometry"

	"gopkg.in/yaml.v3"
)

// Units of placement coordinates.
const (
	// UnitsDisplay places stamps in workspace pixels, like the editor.
	UnitsDisplay = "display"
	// UnitsNatural places stamps in photo pixels.
	UnitsNatural = "natural"
)

// Workspace is the container the photo is fitted into.
type Workspace struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Placement is one stamp to add.
type Placement struct {
	Stamp string  `yaml:"stamp"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	// Width drags the resize handle until the stamp is this wide.
	Width float64 `yaml:"width,omitempty"`
	// RotateSteps and ScaleSteps press the rotate and zoom buttons;
	// negative values rotate left or shrink.
	RotateSteps int `yaml:"rotate_steps,omitempty"`
	ScaleSteps  int `yaml:"scale_steps,omitempty"`
	// Rotation sets an absolute angle in degrees after the steps.
	Rotation *float64 `yaml:"rotation,omitempty"`
}

// Scene is a compose file.
type Scene struct {
	// Image is the base photo, relative to the scene file.
	Image        string      `yaml:"image,omitempty"`
	Workspace    *Workspace  `yaml:"workspace,omitempty"`
	DefaultStamp *bool       `yaml:"default_stamp,omitempty"`
	// Units of x, y and width: display (default) or natural.
	Units        string      `yaml:"units,omitempty"`
	Stamps       []Placement `yaml:"stamps"`
}

// Parse reads a scene document.
func Parse(data []byte) (*Scene, error) {
	var sc Scene
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("invalid scene: %w", err)
	}
	for i, p := range sc.Stamps {
		if p.Stamp == "" {
			return nil, fmt.Errorf("scene stamp %d has no stamp id", i)
		}
		if p.Width < 0 {
			return nil, fmt.Errorf("scene stamp %d has a negative width", i)
		}
	}
	switch sc.Units {
	case "", UnitsDisplay, UnitsNatural:
	default:
		return nil, fmt.Errorf("scene units must be %s or %s, got %q", UnitsDisplay, UnitsNatural, sc.Units)
	}
	if w := sc.Workspace; w != nil && (w.Width <= 0 || w.Height <= 0) {
		return nil, fmt.Errorf("scene workspace must be positive, got %gx%g", w.Width, w.Height)
	}
	return &sc, nil
}

// Load reads a scene file and resolves its image path.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if sc.Image != "" && !filepath.IsAbs(sc.Image) {
		sc.Image = filepath.Join(filepath.Dir(path), sc.Image)
	}
	return sc, nil
}

// Apply loads the base image into s and replays every placement. It
// leaves the session in Editing with nothing selected.
func Apply(s *app.Session, sc *Scene, imagePath string) error {
	if imagePath == "" {
		imagePath = sc.Image
	}
	if imagePath == "" {
		return fmt.Errorf("scene has no image")
	}
	if sc.Workspace != nil {
		s.SetContainer(geometry.NewSize(sc.Workspace.Width, sc.Workspace.Height))
	}
	if err := s.LoadImage(imagePath); err != nil {
		return err
	}
	if sc.DefaultStamp != nil && !*sc.DefaultStamp {
		for _, o := range s.Store().Overlays() {
			if err := s.RemoveStamp(o.ID); err != nil {
				return err
			}
		}
	}
	toDisplay := func(p Placement) Placement { return p }
	if sc.Units == UnitsNatural {
		m, ok := s.Mapper()
		if !ok {
			return fmt.Errorf("workspace is not laid out")
		}
		toDisplay = func(p Placement) Placement { return p.toDisplay(m) }
	}
	for i, p := range sc.Stamps {
		if err := place(s, toDisplay(p)); err != nil {
			return fmt.Errorf("scene stamp %d (%s): %w", i, p.Stamp, err)
		}
	}
	s.BackgroundClick()
	return nil
}

// toDisplay converts a placement given in photo pixels to workspace pixels.
func (p Placement) toDisplay(m coords.Mapper) Placement {
	pos := m.ToDisplay(geometry.NewPoint2D(p.X, p.Y))
	p.X, p.Y = pos.X, pos.Y
	if p.Width > 0 {
		p.Width = m.ToDisplay(geometry.NewPoint2D(p.Width, 0)).X
	}
	return p
}

func place(s *app.Session, p Placement) error {
	o, err := s.PlaceStamp(p.Stamp, p.X, p.Y)
	if err != nil {
		return err
	}
	c := s.Controller(o.ID)
	if p.Width > 0 && p.Width != o.Width {
		start := manipulate.HandlePoint(o)
		c.PointerDown(start, manipulate.RegionResizeHandle)
		c.PointerMove(start.Add(geometry.NewPoint2D(p.Width-o.Width, 0)))
		c.PointerUp()
	}
	for n := p.RotateSteps; n != 0; {
		dir := 1
		if n < 0 {
			dir = -1
		}
		c.RotateStep(dir)
		n -= dir
	}
	for n := p.ScaleSteps; n != 0; {
		grow := n > 0
		c.ScaleStep(grow)
		if grow {
			n--
		} else {
			n++
		}
	}
	if p.Rotation != nil {
		s.Store().Update(o.ID, overlay.Rotate(geometry.NormalizeDegrees(*p.Rotation)))
	}
	return nil
}
