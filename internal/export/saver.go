package export

import (
	"fmt"
	"os"
	"path/filepath"
)

// Saver receives a finished export.
type Saver interface {
	Save(name string, data []byte) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(name string, data []byte) error

// Save calls f.
func (f SaverFunc) Save(name string, data []byte) error {
	return f(name, data)
}

// DirSaver writes exports into a directory, creating it if needed.
type DirSaver struct {
	Dir string
	// Path is set to the written file after each Save.
	Path string
}

// Save implements Saver.
func (d *DirSaver) Save(name string, data []byte) error {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	d.Path = path
	return nil
}

// FileSaver writes every export to one fixed path regardless of the
// suggested name.
type FileSaver string

// Save implements Saver.
func (f FileSaver) Save(_ string, data []byte) error {
	if dir := filepath.Dir(string(f)); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return os.WriteFile(string(f), data, 0o644)
}
