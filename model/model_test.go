package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JPG")
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, f)

	f, err = ParseFormat("webp")
	require.NoError(t, err)
	assert.Equal(t, "image/webp", f.ContentType())

	_, err = ParseFormat("gif")
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestScreenshotOptionsValidate(t *testing.T) {
	opts := ScreenshotOptions{PlatformID: "macos-app-store", ThemeID: "default", Appearance: AppearanceDark, Format: FormatPNG}
	assert.NoError(t, opts.Validate())

	bad := opts
	bad.Appearance = "sepia"
	assert.ErrorIs(t, bad.Validate(), ErrMalformedInput)

	bad = opts
	bad.Format = "bmp"
	assert.ErrorIs(t, bad.Validate(), ErrMalformedInput)

	bad = opts
	bad.PlatformID = ""
	assert.ErrorIs(t, bad.Validate(), ErrMalformedInput)
}

func TestNotFoundError(t *testing.T) {
	var err error = &NotFoundError{Kind: "platform", ID: "watch"}
	assert.EqualError(t, err, "platform not found: watch")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrMalformedInput))
}

func TestPlatformFixedSize(t *testing.T) {
	w, h := 1280, 800
	_, _, ok := Platform{ID: "any"}.FixedSize()
	assert.False(t, ok)

	gw, gh, ok := Platform{ID: "store", Width: &w, Height: &h}.FixedSize()
	require.True(t, ok)
	assert.Equal(t, 1280, gw)
	assert.Equal(t, 800, gh)
}
