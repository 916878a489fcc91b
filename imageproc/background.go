package imageproc

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path"
	"path/filepath"

	"github.com/disintegration/imaging"

	"shotframe/model"
)

func (p *Processor) createBackground(width, height int) (*image.NRGBA, error) {
	bg := p.theme.Background

	switch {
	case bg.Type == model.BackgroundSolid:
		return imaging.New(width, height, HexToRGB(bg.Color)), nil

	case bg.Type == model.BackgroundGradient && bg.Gradient != nil:
		return renderGradient(width, height, *bg.Gradient), nil

	case bg.Type == model.BackgroundImage && bg.Image != "":
		img, err := p.loadImage(bg.Image)
		if err != nil {
			return nil, fmt.Errorf("load background image: %w", err)
		}
		return imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos), nil
	}

	return imaging.New(width, height, color.NRGBA{}), nil
}

func (p *Processor) loadImage(name string) (image.Image, error) {
	var (
		r   io.ReadCloser
		err error
	)
	if p.assets != nil && !filepath.IsAbs(name) {
		r, err = p.assets.Open(path.Clean(filepath.ToSlash(name)))
	} else {
		r, err = os.Open(name)
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return imaging.Decode(r)
}

// renderGradient rasterizes a gradient in bounding-box units. Stops are spaced
// evenly and colors outside [0,1] are padded with the end stops.
//
// Linear gradients run left to right, rotated by Angle degrees about the centre.
// Radial gradients are centred with radius 0.5.
func renderGradient(width, height int, g model.Gradient) *image.NRGBA {
	if width <= 0 || height <= 0 {
		return &image.NRGBA{}
	}

	var param func(u, v float64) float64
	switch g.Type {
	case model.GradientLinear:
		rad := g.Angle * math.Pi / 180
		cos, sin := math.Cos(rad), math.Sin(rad)
		param = func(u, v float64) float64 {
			return u*cos + v*sin + 0.5
		}
	case model.GradientRadial:
		param = func(u, v float64) float64 {
			return math.Hypot(u, v) / 0.5
		}
	default:
		return imaging.New(width, height, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	}

	stops := make([]color.NRGBA, len(g.Colors))
	for i, c := range g.Colors {
		stops[i] = parseStopColor(c)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		v := (float64(y)+0.5)/float64(height) - 0.5
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < width; x++ {
			u := (float64(x)+0.5)/float64(width) - 0.5
			c := sampleStops(stops, param(u, v))
			i := x * 4
			row[i+0] = c.R
			row[i+1] = c.G
			row[i+2] = c.B
			row[i+3] = c.A
		}
	}
	return dst
}

func sampleStops(stops []color.NRGBA, t float64) color.NRGBA {
	switch len(stops) {
	case 0:
		return color.NRGBA{}
	case 1:
		return stops[0]
	}

	if t <= 0 {
		return stops[0]
	}
	if t >= 1 {
		return stops[len(stops)-1]
	}

	pos := t * float64(len(stops)-1)
	i := int(pos)
	frac := pos - float64(i)
	a, b := stops[i], stops[i+1]
	return color.NRGBA{
		R: lerp(a.R, b.R, frac),
		G: lerp(a.G, b.G, frac),
		B: lerp(a.B, b.B, frac),
		A: lerp(a.A, b.A, frac),
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}
