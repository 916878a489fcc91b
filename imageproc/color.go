package imageproc

import (
	"image/color"
	"regexp"
	"strconv"

	"github.com/mazznoer/csscolorparser"
)

var hexPattern = regexp.MustCompile(`(?i)^#?([a-f\d]{2})([a-f\d]{2})([a-f\d]{2})$`)

// HexToRGB parses "#RRGGBB" (the "#" is optional) into an opaque color.
// Anything else yields opaque black.
func HexToRGB(hex string) color.NRGBA {
	m := hexPattern.FindStringSubmatch(hex)
	if m == nil {
		return color.NRGBA{A: 0xff}
	}
	return color.NRGBA{R: hexByte(m[1]), G: hexByte(m[2]), B: hexByte(m[3]), A: 0xff}
}

func hexByte(s string) uint8 {
	v, _ := strconv.ParseUint(s, 16, 8)
	return uint8(v)
}

// parseStopColor accepts any CSS color. Unparseable stops render black, as an
// invalid stop-color does in SVG.
func parseStopColor(s string) color.NRGBA {
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return color.NRGBA{A: 0xff}
	}
	r, g, b, a := c.RGBA255()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}
