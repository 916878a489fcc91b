// Package imageproc composites a captured window onto a themed backdrop.
//
// The output is built from three layers drawn back to front onto a transparent
// canvas: the background, a drop shadow and the screenshot itself with rounded
// corners and an optional outline.
package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"math"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"shotframe/model"
)

// Processor renders screenshots with a single theme.
type Processor struct {
	theme  model.Theme
	assets fs.FS
}

type Option func(*Processor)

// WithAssets resolves relative background image paths against fsys.
func WithAssets(fsys fs.FS) Option {
	return func(p *Processor) {
		p.assets = fsys
	}
}

func NewProcessor(theme model.Theme, opts ...Option) *Processor {
	p := &Processor{theme: theme}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessEncoded decodes a png, jpeg or webp screenshot and processes it.
func (p *Processor) ProcessEncoded(data []byte, format model.Format) (*model.ScreenshotResult, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("%w: failed to get screenshot dimensions", model.ErrMalformedInput)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode screenshot: %v", model.ErrMalformedInput, err)
	}
	return p.Process(img, format)
}

// Process composites the screenshot and encodes it in format.
func (p *Processor) Process(screenshot image.Image, format model.Format) (*model.ScreenshotResult, error) {
	if screenshot == nil || screenshot.Bounds().Empty() {
		return nil, fmt.Errorf("%w: failed to get screenshot dimensions", model.ErrMalformedInput)
	}
	if !format.Valid() {
		return nil, fmt.Errorf("%w: unsupported format %q", model.ErrMalformedInput, format)
	}

	width, height := screenshot.Bounds().Dx(), screenshot.Bounds().Dy()
	finalWidth, finalHeight := p.CanvasSize(width, height)

	background, err := p.createBackground(finalWidth, finalHeight)
	if err != nil {
		return nil, err
	}
	shadow := p.createShadow(width, height)
	bordered := p.applyBorder(screenshot)

	pad := p.theme.Padding
	offset := p.theme.Window.Shadow

	canvas := imaging.New(finalWidth, finalHeight, color.NRGBA{})
	canvas = imaging.Overlay(canvas, background, image.Pt(0, 0), 1)
	canvas = imaging.Overlay(canvas, shadow, image.Pt(pad.Left+offset.X, pad.Top+offset.Y), 1)
	canvas = imaging.Overlay(canvas, bordered, image.Pt(pad.Left, pad.Top), 1)

	var buf bytes.Buffer
	if err := Encode(&buf, canvas, format); err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}

	return &model.ScreenshotResult{
		Data:   buf.Bytes(),
		Width:  finalWidth,
		Height: finalHeight,
		Format: format,
	}, nil
}

// CanvasSize is the screenshot size plus the theme padding on each side.
func (p *Processor) CanvasSize(width, height int) (int, int) {
	pad := p.theme.Padding
	return width + pad.Left + pad.Right, height + pad.Top + pad.Bottom
}

func (p *Processor) createShadow(width, height int) *image.NRGBA {
	s := p.theme.Window.Shadow

	c := HexToRGB(s.Color)
	c.A = uint8(math.Round(math.Max(0, math.Min(1, s.Opacity)) * 255))

	rect := imaging.New(width+s.Spread*2, height+s.Spread*2, c)
	if s.Blur > 0 {
		// A visual blur radius is roughly twice the gaussian sigma.
		return imaging.Blur(rect, s.Blur/2)
	}
	return rect
}
