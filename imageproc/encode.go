package imageproc

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/avif"
	"github.com/gen2brain/webp"

	"shotframe/model"
)

const (
	avifQuality = 85
	avifEffort  = 4
	avifSpeed   = 9 - avifEffort // encoder speed is the inverse of effort
	webpQuality = 90
	webpMethod  = 4
	jpegQuality = 90
)

// Encode writes img in format with fixed per-codec settings.
func Encode(w io.Writer, img image.Image, format model.Format) error {
	switch format {
	case model.FormatAVIF:
		return avif.Encode(w, img, avif.Options{Quality: avifQuality, Speed: avifSpeed})
	case model.FormatWebP:
		return webp.Encode(w, img, webp.Options{Quality: webpQuality, Method: webpMethod})
	case model.FormatPNG:
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	case model.FormatJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
	}
	return fmt.Errorf("%w: unsupported format %q", model.ErrMalformedInput, format)
}
