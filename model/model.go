package model

import (
	"time"
)

type BackgroundType string

const (
	BackgroundSolid    BackgroundType = "solid"
	BackgroundGradient BackgroundType = "gradient"
	BackgroundImage    BackgroundType = "image"
)

type GradientType string

const (
	GradientLinear GradientType = "linear"
	GradientRadial GradientType = "radial"
)

type Gradient struct {
	Type   GradientType `json:"type" yaml:"type"`
	Colors []string     `json:"colors" yaml:"colors"`
	Angle  float64      `json:"angle,omitempty" yaml:"angle,omitempty"`
}

type Background struct {
	Type     BackgroundType `json:"type" yaml:"type"`
	Image    string         `json:"image,omitempty" yaml:"image,omitempty"`
	Color    string         `json:"color,omitempty" yaml:"color,omitempty"`
	Gradient *Gradient      `json:"gradient,omitempty" yaml:"gradient,omitempty"`
}

type Shadow struct {
	X       int     `json:"x" yaml:"x"`
	Y       int     `json:"y" yaml:"y"`
	Blur    float64 `json:"blur" yaml:"blur"`
	Spread  int     `json:"spread" yaml:"spread"`
	Opacity float64 `json:"opacity" yaml:"opacity"`
	Color   string  `json:"color" yaml:"color"`
}

type Border struct {
	Radius float64 `json:"radius" yaml:"radius"`
	Width  float64 `json:"width" yaml:"width"`
	Color  string  `json:"color" yaml:"color"`
}

type Chrome string

const (
	ChromeFrameless Chrome = "frameless"
	ChromeMacOS     Chrome = "macos"
	ChromeNeutral   Chrome = "neutral"
)

type Window struct {
	Shadow Shadow `json:"shadow" yaml:"shadow"`
	Border Border `json:"border" yaml:"border"`
	Chrome Chrome `json:"chrome" yaml:"chrome"`
}

type Padding struct {
	Top    int `json:"top" yaml:"top"`
	Right  int `json:"right" yaml:"right"`
	Bottom int `json:"bottom" yaml:"bottom"`
	Left   int `json:"left" yaml:"left"`
}

// Theme describes how a captured window is framed.
type Theme struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Thumbnail   string     `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Background  Background `json:"background" yaml:"background"`
	Window      Window     `json:"window" yaml:"window"`
	Padding     Padding    `json:"padding" yaml:"padding"`
}

// Platform is a target frame size. Nil Width or Height means any size.
type Platform struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category" yaml:"category"`
	Width       *int   `json:"width" yaml:"width"`
	Height      *int   `json:"height" yaml:"height"`
	Description string `json:"description" yaml:"description"`
}

// FixedSize reports the platform dimensions when both are set and non-zero.
func (p Platform) FixedSize() (width, height int, ok bool) {
	if p.Width == nil || p.Height == nil || *p.Width <= 0 || *p.Height <= 0 {
		return 0, 0, false
	}
	return *p.Width, *p.Height, true
}

type PlatformConfig struct {
	Platforms []Platform `json:"platforms" yaml:"platforms"`
}

type ScreenshotResult struct {
	Data   []byte `json:"-"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format Format `json:"format"`
}

type CaptureRecord struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Filename  string            `json:"filename"`
	Path      string            `json:"path"`
	Options   ScreenshotOptions `json:"options"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Bytes     int               `json:"bytes"`
	Schedule  string            `json:"schedule,omitempty"`
}

type ScheduleType string

const (
	ScheduleInterval ScheduleType = "interval"
	ScheduleDaily    ScheduleType = "daily"
)

type Schedule struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Enabled   bool              `json:"enabled"`
	Type      ScheduleType      `json:"type"`
	Every     string            `json:"every,omitempty"`       // Go duration, e.g. "1h"
	TimeOfDay string            `json:"time_of_day,omitempty"` // "HH:MM" local time
	Options   ScreenshotOptions `json:"options"`
}
