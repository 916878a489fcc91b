// Package tray picks the system tray icon asset for the current platform.
package tray

import (
	"path/filepath"
	"runtime"
)

// Icon states shipped in the assets folder.
const (
	StateDefault = "default"
	StateEmpty   = "empty"
	StateError   = "error"
	StateStep0   = "step0"
	StateStep1   = "step1"
	StateStep2   = "step2"
	StateStep3   = "step3"
)

// Selector resolves tray icon paths. macOS always gets template icons, which the
// system tints. Other platforms get the regular icon whatever the system theme,
// unless a color was forced.
type Selector struct {
	AssetsDir string
	GOOS      string

	color string
}

func NewSelector(assetsDir string) *Selector {
	return &Selector{AssetsDir: assetsDir, GOOS: runtime.GOOS}
}

// SetColor forces "light" (template) or "dark" icons. Any other value clears it.
func (s *Selector) SetColor(color string) {
	switch color {
	case "light", "dark":
		s.color = color
	default:
		s.color = ""
	}
}

// IconPath returns the icon file for state, e.g. tray-icon-errorTemplate.png.
func (s *Selector) IconPath(state string) string {
	name := "tray-icon"
	if state != "" && state != StateDefault {
		name += "-" + state
	}
	return filepath.Join(s.AssetsDir, name+s.suffix()+".png")
}

func (s *Selector) suffix() string {
	if s.GOOS == "darwin" {
		return "Template"
	}
	switch s.color {
	case "light":
		return "Template"
	case "dark":
		return "Dark"
	}
	return ""
}
