package rattle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Loader supplies template source by reference. It is consulted once per
// extends hop during compilation.
type Loader interface {
	Load(name string) (string, error)
}

// MemoryLoader serves templates from an in-memory map.
type MemoryLoader map[string]string

func (m MemoryLoader) Load(name string) (string, error) {
	if s, ok := m[name]; ok {
		return s, nil
	}
	return "", ErrTemplateNotFound{Name: name}
}

// DirLoader serves templates from files under a root directory. References
// may not escape the root.
type DirLoader struct {
	Root string
}

func (d DirLoader) Load(name string) (string, error) {
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("template reference %q escapes the loader root", name)
	}
	data, err := os.ReadFile(filepath.Join(d.Root, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrTemplateNotFound{Name: name}
		}
		return "", err
	}
	return string(data), nil
}

type ErrTemplateNotFound struct{ Name string }

func (e ErrTemplateNotFound) Error() string { return "template not found: " + e.Name }
