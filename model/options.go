package model

import (
	"fmt"
	"strings"
)

type Appearance string

const (
	AppearanceLight Appearance = "light"
	AppearanceDark  Appearance = "dark"
)

type Format string

const (
	FormatAVIF Format = "avif"
	FormatWebP Format = "webp"
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// Formats lists the supported output codecs.
var Formats = []Format{FormatAVIF, FormatWebP, FormatPNG, FormatJPEG}

// ParseFormat accepts a codec name, case-insensitively, with "jpg" as an alias of jpeg.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "jpg" {
		f = FormatJPEG
	}
	if !f.Valid() {
		return "", fmt.Errorf("%w: unsupported format %q", ErrMalformedInput, s)
	}
	return f, nil
}

func (f Format) Valid() bool {
	switch f {
	case FormatAVIF, FormatWebP, FormatPNG, FormatJPEG:
		return true
	}
	return false
}

func (f Format) Extension() string {
	return string(f)
}

func (f Format) ContentType() string {
	switch f {
	case FormatAVIF:
		return "image/avif"
	case FormatWebP:
		return "image/webp"
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	}
	return "application/octet-stream"
}

type ScreenshotOptions struct {
	PlatformID string     `json:"platformId"`
	ThemeID    string     `json:"themeId"`
	Appearance Appearance `json:"appearance"`
	Format     Format     `json:"format"`
}

// Validate checks the enumerated fields. Ids are resolved later against the catalog.
func (o ScreenshotOptions) Validate() error {
	if o.PlatformID == "" {
		return fmt.Errorf("%w: platform id required", ErrMalformedInput)
	}
	if o.ThemeID == "" {
		return fmt.Errorf("%w: theme id required", ErrMalformedInput)
	}
	switch o.Appearance {
	case AppearanceLight, AppearanceDark:
	default:
		return fmt.Errorf("%w: unsupported appearance %q", ErrMalformedInput, o.Appearance)
	}
	if !o.Format.Valid() {
		return fmt.Errorf("%w: unsupported format %q", ErrMalformedInput, o.Format)
	}
	return nil
}
