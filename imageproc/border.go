package imageproc

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Control point distance for a quarter circle approximated by one cubic Bézier.
const kappa = 0.5522847498

func (p *Processor) applyBorder(src image.Image) *image.NRGBA {
	border := p.theme.Window.Border
	img := imaging.Clone(src)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	if border.Radius > 0 {
		mask := image.NewAlpha(img.Bounds())
		z := vector.NewRasterizer(w, h)
		roundedRect(z, 0, 0, float32(w), float32(h), float32(border.Radius), true)
		z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
		destIn(img, mask)
	}

	if border.Width > 0 {
		outline := strokeMask(w, h, float32(border.Width), float32(border.Radius))
		draw.DrawMask(img, img.Bounds(), image.NewUniform(HexToRGB(border.Color)), image.Point{}, outline, image.Point{}, draw.Over)
	}

	return img
}

// destIn scales the alpha of img by mask, keeping color channels.
func destIn(img *image.NRGBA, mask *image.Alpha) {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		px := img.Pix[y*img.Stride:]
		m := mask.Pix[y*mask.Stride:]
		for x := 0; x < b.Dx(); x++ {
			a := &px[x*4+3]
			*a = uint8(uint16(*a) * uint16(m[x]) / 0xff)
		}
	}
}

// strokeMask covers a rounded-rect outline of the given stroke width centred on a
// path inset by width/2, matching an SVG stroke.
func strokeMask(w, h int, width, radius float32) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z := vector.NewRasterizer(w, h)

	outerR, innerR := float32(0), float32(0)
	if radius > 0 {
		outerR = radius + width/2
		innerR = float32(math.Max(float64(radius-width/2), 0))
	}

	roundedRect(z, 0, 0, float32(w), float32(h), outerR, true)
	if 2*width < float32(w) && 2*width < float32(h) {
		// Opposite winding cancels the coverage inside the stroke.
		roundedRect(z, width, width, float32(w)-width, float32(h)-width, innerR, false)
	}

	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

// roundedRect adds a closed rounded rectangle to z. The radius is clamped to half
// the shorter side.
func roundedRect(z *vector.Rasterizer, x0, y0, x1, y1, r float32, clockwise bool) {
	r = float32(math.Min(float64(r), math.Min(float64(x1-x0), float64(y1-y0))/2))
	if r < 0 {
		r = 0
	}
	k := r * kappa

	z.MoveTo(x0+r, y0)
	if clockwise {
		z.LineTo(x1-r, y0)
		z.CubeTo(x1-r+k, y0, x1, y0+r-k, x1, y0+r)
		z.LineTo(x1, y1-r)
		z.CubeTo(x1, y1-r+k, x1-r+k, y1, x1-r, y1)
		z.LineTo(x0+r, y1)
		z.CubeTo(x0+r-k, y1, x0, y1-r+k, x0, y1-r)
		z.LineTo(x0, y0+r)
		z.CubeTo(x0, y0+r-k, x0+r-k, y0, x0+r, y0)
	} else {
		z.CubeTo(x0+r-k, y0, x0, y0+r-k, x0, y0+r)
		z.LineTo(x0, y1-r)
		z.CubeTo(x0, y1-r+k, x0+r-k, y1, x0+r, y1)
		z.LineTo(x1-r, y1)
		z.CubeTo(x1-r+k, y1, x1, y1-r+k, x1, y1-r)
		z.LineTo(x1, y0+r)
		z.CubeTo(x1, y0+r-k, x1-r+k, y0, x1-r, y0)
	}
	z.ClosePath()
}
