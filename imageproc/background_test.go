package imageproc

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"shotframe/model"
)

func TestSampleStops(t *testing.T) {
	black := color.NRGBA{A: 0xff}
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	red := color.NRGBA{R: 0xff, A: 0xff}

	assert.Equal(t, color.NRGBA{}, sampleStops(nil, 0.5))
	assert.Equal(t, red, sampleStops([]color.NRGBA{red}, 0.9))

	stops := []color.NRGBA{black, white}
	assert.Equal(t, black, sampleStops(stops, -1))
	assert.Equal(t, white, sampleStops(stops, 2))
	assert.Equal(t, color.NRGBA{R: 128, G: 128, B: 128, A: 0xff}, sampleStops(stops, 0.5))

	three := []color.NRGBA{black, red, white}
	assert.Equal(t, red, sampleStops(three, 0.5))
}

func TestRenderLinearGradient(t *testing.T) {
	g := model.Gradient{Type: model.GradientLinear, Colors: []string{"#000000", "#ffffff"}}

	img := renderGradient(100, 10, g)
	left, right := img.NRGBAAt(0, 5), img.NRGBAAt(99, 5)
	assert.Less(t, left.R, uint8(5))
	assert.Greater(t, right.R, uint8(250))
	assert.Equal(t, img.NRGBAAt(50, 0), img.NRGBAAt(50, 9))

	g.Angle = 90
	rotated := renderGradient(10, 100, g)
	assert.Less(t, rotated.NRGBAAt(5, 0).R, uint8(5))
	assert.Greater(t, rotated.NRGBAAt(5, 99).R, uint8(250))
}

func TestRenderRadialGradient(t *testing.T) {
	g := model.Gradient{Type: model.GradientRadial, Colors: []string{"#ffffff", "#000000"}}

	img := renderGradient(51, 51, g)
	assert.Equal(t, uint8(0xff), img.NRGBAAt(25, 25).R)
	assert.Equal(t, uint8(0), img.NRGBAAt(0, 0).R)
}

func TestRenderGradientFallbacks(t *testing.T) {
	unknown := renderGradient(4, 4, model.Gradient{Type: "conic", Colors: []string{"#000000"}})
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, unknown.NRGBAAt(1, 1))

	named := renderGradient(4, 4, model.Gradient{Type: model.GradientLinear, Colors: []string{"red"}})
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, named.NRGBAAt(2, 2))
}
