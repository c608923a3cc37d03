// Package prefs persists the client's display preferences, the terminal
// counterpart of the page's localStorage theme.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

var ErrInvalidTheme = errors.New("theme must be dark or light")

// ParseTheme accepts dark or light in any case.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeDark:
		return ThemeDark, nil
	case ThemeLight:
		return ThemeLight, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

type Prefs struct {
	Theme Theme `json:"theme"`
}

// Store reads and writes Prefs as a JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the saved prefs. A missing file or an unknown theme yields
// the dark default.
func (s *Store) Load() (Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Prefs{Theme: ThemeDark}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return Prefs{Theme: ThemeDark}, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if _, err := ParseTheme(string(p.Theme)); err != nil {
		p.Theme = ThemeDark
	}
	return p, nil
}

// SetTheme persists theme and returns the updated prefs.
func (s *Store) SetTheme(theme Theme) (Prefs, error) {
	if _, err := ParseTheme(string(theme)); err != nil {
		return Prefs{}, err
	}
	p, err := s.Load()
	if err != nil {
		return p, err
	}
	p.Theme = theme

	s.mu.Lock()
	defer s.mu.Unlock()
	return p, writeJSON(s.path, p)
}

// writeJSON writes via a temp file then rename.
func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
