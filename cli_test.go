package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shotframe/config"
	"shotframe/tray"
)

func TestTrayIconPathRequiresAssetsDir(t *testing.T) {
	_, err := trayIconPath(config.Default(), tray.StateDefault, "", "linux")
	assert.ErrorContains(t, err, "--assets-dir")
}

func TestTrayIconPathUnderAssetsDir(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.AssetsDir = dir

	path, err := trayIconPath(cfg, tray.StateError, "", "darwin")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tray", "tray-icon-errorTemplate.png"), path)
	assert.True(t, filepath.IsAbs(path))

	path, err = trayIconPath(cfg, tray.StateDefault, "dark", "linux")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tray", "tray-iconDark.png"), path)
}
