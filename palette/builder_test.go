package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shotframe/model"
)

func TestApplyAlpha(t *testing.T) {
	out, err := ApplyAlpha("#ff0000", 1)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", out)

	out, err = ApplyAlpha("#ff0000", 0.5)
	require.NoError(t, err)
	assert.Equal(t, "rgba(255, 0, 0, 0.5)", out)

	out, err = ApplyAlpha("rgb(255, 0, 0)", 0.7)
	require.NoError(t, err)
	assert.Contains(t, out, "0.7")

	out, err = ApplyAlpha("#ff0000", 0)
	require.NoError(t, err)
	assert.Equal(t, "rgba(255, 0, 0, 0)", out)
}

func TestApplyAlphaErrors(t *testing.T) {
	_, err := ApplyAlpha("#ff0000", -0.1)
	assert.EqualError(t, err, "Alpha value must be between 0 and 1, got -0.1")

	_, err = ApplyAlpha("#ff0000", 1.5)
	assert.EqualError(t, err, "Alpha value must be between 0 and 1, got 1.5")

	_, err = ApplyAlpha("not-a-color", 0.5)
	assert.EqualError(t, err, "Failed to parse color not-a-color")
}

func TestColorBuilder(t *testing.T) {
	def, err := NewColorBuilder("test-color").WithLight("#ffffff").WithDark("#000000").Build()
	require.NoError(t, err)
	assert.Equal(t, Definition{ID: "test-color", Light: "#ffffff", Dark: "#000000"}, def)

	def, err = NewColorBuilder("transparent-color").WithLight("#ffffff", 0.5).WithDark("#000000", 0.8).Build()
	require.NoError(t, err)
	assert.Contains(t, def.Light, "0.5")
	assert.Contains(t, def.Dark, "0.8")

	def, err = NewColorBuilder("rgb-color").WithLight("rgb(255, 255, 255)").WithDark("rgb(0, 0, 0)").Build()
	require.NoError(t, err)
	assert.Equal(t, "rgb(255, 255, 255)", def.Light)
	assert.Equal(t, "rgb(0, 0, 0)", def.Dark)
}

func TestColorBuilderChaining(t *testing.T) {
	b := NewColorBuilder("chain-test")
	assert.Same(t, b, b.WithLight("#fff"))
	assert.Same(t, b, b.WithDark("#000"))
}

func TestColorBuilderIncomplete(t *testing.T) {
	_, err := NewColorBuilder("incomplete-color").WithDark("#000000").Build()
	assert.EqualError(t, err, "Color definition for incomplete-color is incomplete.")

	_, err = NewColorBuilder("incomplete-color").WithLight("#ffffff").Build()
	assert.EqualError(t, err, "Color definition for incomplete-color is incomplete.")

	_, err = NewColorBuilder("empty-color").Build()
	assert.EqualError(t, err, "Color definition for empty-color is incomplete.")
}

func TestColorBuilderInvalidAlpha(t *testing.T) {
	b := NewColorBuilder("invalid-alpha").WithLight("#ffffff", -0.1)
	assert.EqualError(t, b.Err(), "Alpha value must be between 0 and 1, got -0.1")

	_, err := b.WithDark("#000000").Build()
	assert.EqualError(t, err, "Alpha value must be between 0 and 1, got -0.1")

	_, err = NewColorBuilder("invalid-alpha").WithLight("#ffffff").WithDark("#000000", 1.5).Build()
	assert.EqualError(t, err, "Alpha value must be between 0 and 1, got 1.5")
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Definition{ID: "a", Light: "#fff", Dark: "#000"}))
	require.NoError(t, r.Register(Definition{ID: "b", Light: "#eee", Dark: "#111"}))
	assert.Error(t, r.Register(Definition{ID: "a"}))

	defs := r.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "a", defs[0].ID)

	assert.Equal(t, map[string]string{"a": "#000", "b": "#111"}, r.Resolve(model.AppearanceDark))
	assert.Equal(t, map[string]string{"a": "#fff", "b": "#eee"}, r.Resolve(model.AppearanceLight))
}

func TestDefaults(t *testing.T) {
	r, err := Defaults()
	require.NoError(t, err)

	colors := r.Resolve(model.AppearanceDark)
	assert.Equal(t, "#0f0f11", colors["screenshot-tool-background"])
	assert.Equal(t, "rgba(0, 0, 0, 0.6)", colors["screenshot-tool-overlay"])
}
