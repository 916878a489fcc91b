// Package palette builds light/dark color definitions for the UI.
package palette

import (
	"fmt"
	"strconv"

	"github.com/mazznoer/csscolorparser"
)

// Definition is a color with one value per appearance.
type Definition struct {
	ID    string `json:"id"`
	Light string `json:"light"`
	Dark  string `json:"dark"`
}

// ApplyAlpha returns color with the given opacity as a CSS rgba() string.
// An alpha of 1 returns color unchanged.
func ApplyAlpha(color string, alpha float64) (string, error) {
	if err := checkAlpha(alpha); err != nil {
		return "", err
	}
	if alpha == 1 {
		return color, nil
	}

	c, err := csscolorparser.Parse(color)
	if err != nil {
		return "", fmt.Errorf("Failed to parse color %s", color)
	}
	r, g, b, _ := c.RGBA255()
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(alpha, 'f', -1, 64)), nil
}

func checkAlpha(alpha float64) error {
	if alpha < 0 || alpha > 1 {
		return fmt.Errorf("Alpha value must be between 0 and 1, got %v", alpha)
	}
	return nil
}

// ColorBuilder assembles a Definition:
//
//	def, err := palette.NewColorBuilder("my-color").WithLight("#ffffff").WithDark("#000000", 0.8).Build()
//
// The setters return the builder for chaining. An invalid alpha is kept and
// reported by Build.
type ColorBuilder struct {
	id         string
	light      string
	lightAlpha float64
	dark       string
	darkAlpha  float64
	err        error
}

func NewColorBuilder(id string) *ColorBuilder {
	return &ColorBuilder{id: id, lightAlpha: 1, darkAlpha: 1}
}

// WithLight sets the light appearance color and an optional alpha (default 1).
func (b *ColorBuilder) WithLight(color string, alpha ...float64) *ColorBuilder {
	a, err := alphaArg(alpha)
	if err != nil {
		b.setErr(err)
		return b
	}
	b.light, b.lightAlpha = color, a
	return b
}

// WithDark sets the dark appearance color and an optional alpha (default 1).
func (b *ColorBuilder) WithDark(color string, alpha ...float64) *ColorBuilder {
	a, err := alphaArg(alpha)
	if err != nil {
		b.setErr(err)
		return b
	}
	b.dark, b.darkAlpha = color, a
	return b
}

// Err returns the first error recorded by a setter.
func (b *ColorBuilder) Err() error {
	return b.err
}

func (b *ColorBuilder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

func alphaArg(alpha []float64) (float64, error) {
	if len(alpha) == 0 {
		return 1, nil
	}
	return alpha[0], checkAlpha(alpha[0])
}

// Build applies the alphas and returns the definition.
func (b *ColorBuilder) Build() (Definition, error) {
	if b.err != nil {
		return Definition{}, b.err
	}
	if b.light == "" || b.dark == "" {
		return Definition{}, fmt.Errorf("Color definition for %s is incomplete.", b.id)
	}

	light, err := ApplyAlpha(b.light, b.lightAlpha)
	if err != nil {
		return Definition{}, err
	}
	dark, err := ApplyAlpha(b.dark, b.darkAlpha)
	if err != nil {
		return Definition{}, err
	}
	return Definition{ID: b.id, Light: light, Dark: dark}, nil
}
