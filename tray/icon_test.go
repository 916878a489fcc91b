package tray

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMacOSUsesTemplateIcons(t *testing.T) {
	s := &Selector{AssetsDir: "assets", GOOS: "darwin"}

	assert.Equal(t, filepath.Join("assets", "tray-iconTemplate.png"), s.IconPath(StateDefault))
	assert.Contains(t, s.IconPath(StateEmpty), "tray-icon-emptyTemplate.png")
	assert.Contains(t, s.IconPath(StateError), "tray-icon-errorTemplate.png")
	assert.Contains(t, s.IconPath(StateStep0), "tray-icon-step0Template.png")

	s.SetColor("dark")
	assert.Contains(t, s.IconPath(StateDefault), "tray-iconTemplate.png")
}

func TestRegularIconsOnLinuxAndWindows(t *testing.T) {
	for _, goos := range []string{"linux", "windows"} {
		s := &Selector{AssetsDir: "assets", GOOS: goos}

		assert.Contains(t, s.IconPath(StateDefault), "tray-icon.png", goos)
		assert.Contains(t, s.IconPath(StateEmpty), "tray-icon-empty.png", goos)
		assert.Contains(t, s.IconPath(StateError), "tray-icon-error.png", goos)
		assert.Contains(t, s.IconPath(StateStep0), "tray-icon-step0.png", goos)
		assert.NotContains(t, s.IconPath(StateDefault), "Template", goos)
		assert.NotContains(t, s.IconPath(StateDefault), "Dark", goos)
	}
}

func TestColorOverride(t *testing.T) {
	s := &Selector{AssetsDir: "assets", GOOS: "windows"}

	s.SetColor("light")
	assert.Contains(t, s.IconPath(StateDefault), "tray-iconTemplate.png")

	s.SetColor("dark")
	assert.Contains(t, s.IconPath(StateDefault), "tray-iconDark.png")

	s.SetColor("")
	assert.Contains(t, s.IconPath(StateDefault), "tray-icon.png")
}
