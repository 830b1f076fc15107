// Package prefs persists editor preferences as JSON.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

const (
	prefsFile = "preferences.json"

	// MaxRecentStamps bounds the recently used stamp list.
	MaxRecentStamps = 6
)

// Dir names a remembered file dialog location.
type Dir int

const (
	OpenDir Dir = iota
	SaveDir
)

type values struct {
	WindowWidth  float32  `json:"windowWidth,omitempty"`
	WindowHeight float32  `json:"windowHeight,omitempty"`
	OpenDir      string   `json:"lastDirectory,omitempty"`
	SaveDir      string   `json:"lastSaveDirectory,omitempty"`
	RecentStamps []string `json:"recentStamps,omitempty"`
}

// Prefs holds the editor preferences bound to one file.
type Prefs struct {
	mu   sync.RWMutex
	path string
	v    values
}

// Load reads preferences from ~/.config/photo-stamper/preferences.json.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	return LoadFrom(filepath.Join(configDir, "photo-stamper", prefsFile))
}

// LoadFrom reads preferences from path. A missing or unreadable file
// yields empty preferences that are written to path on Save.
func LoadFrom(path string) *Prefs {
	p := &Prefs{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	if err := json.Unmarshal(data, &p.v); err != nil {
		p.v = values{}
	}
	return p
}

// Path returns the backing file.
func (p *Prefs) Path() string {
	return p.path
}

// Save writes the preferences, creating the directory when needed.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.v, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// WindowSize returns the remembered window size, or the fallback when none
// was stored.
func (p *Prefs) WindowSize(fallbackW, fallbackH float32) (float32, float32) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.v.WindowWidth <= 0 || p.v.WindowHeight <= 0 {
		return fallbackW, fallbackH
	}
	return p.v.WindowWidth, p.v.WindowHeight
}

// SetWindowSize remembers the window size.
func (p *Prefs) SetWindowSize(w, h float32) {
	p.mu.Lock()
	p.v.WindowWidth, p.v.WindowHeight = w, h
	p.mu.Unlock()
}

// Dir returns a remembered dialog directory, or "".
func (p *Prefs) Dir(d Dir) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if d == SaveDir {
		return p.v.SaveDir
	}
	return p.v.OpenDir
}

// SetDir remembers a dialog directory.
func (p *Prefs) SetDir(d Dir, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d == SaveDir {
		p.v.SaveDir = path
		return
	}
	p.v.OpenDir = path
}

// TouchStamp moves a stamp id to the front of the recent list.
func (p *Prefs) TouchStamp(id string) {
	if id == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	recent := slices.DeleteFunc(p.v.RecentStamps, func(s string) bool { return s == id })
	recent = append([]string{id}, recent...)
	if len(recent) > MaxRecentStamps {
		recent = recent[:MaxRecentStamps]
	}
	p.v.RecentStamps = recent
}

// RecentStamps returns the recently used stamp ids, most recent first.
func (p *Prefs) RecentStamps() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.v.RecentStamps)
}

// RecentFirst orders ids so recently used ones come first, most recent
// first, keeping the given order for the rest.
func (p *Prefs) RecentFirst(ids []string) []string {
	recent := p.RecentStamps()
	rank := func(id string) int {
		if i := slices.Index(recent, id); i >= 0 {
			return i
		}
		return len(recent)
	}
	out := slices.Clone(ids)
	slices.SortStableFunc(out, func(a, b string) int { return rank(a) - rank(b) })
	return out
}
