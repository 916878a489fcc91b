// Package screenshot drives a host window through a themed capture.
package screenshot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"shotframe/imageproc"
	"shotframe/model"
)

const (
	resizeSettle = 100 * time.Millisecond
	renderSettle = 300 * time.Millisecond

	blurActiveElementScript = `if (document.activeElement) { document.activeElement.blur(); }`

	filenamePrefix = "podman-desktop"
	filenameView   = "app"
)

// Catalog resolves theme and platform ids.
type Catalog interface {
	Theme(id string) (model.Theme, bool)
	Platform(id string) (model.Platform, bool)
}

// ProgressFunc receives a stage name and a human-readable message.
type ProgressFunc func(stage string, message string)

type Validation struct {
	Valid   bool   `json:"valid"`
	Warning string `json:"warning,omitempty"`
}

// Manager captures one host window. It keeps the window size it found before a
// capture and puts it back afterwards. Captures on the same Manager must not
// overlap: concurrent calls race on the stored size.
type Manager struct {
	host          Host
	catalog       Catalog
	processorOpts []imageproc.Option
	now           func() time.Time
	sleep         func(ctx context.Context, d time.Duration) error

	originalWidth  int
	originalHeight int
	hasOriginal    bool
}

type ManagerOption func(*Manager)

// WithClock sets the clock used for filenames.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// WithSleep replaces the settle delay implementation.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) ManagerOption {
	return func(m *Manager) {
		m.sleep = sleep
	}
}

// WithProcessorOptions is passed to every imageproc.Processor the manager builds.
func WithProcessorOptions(opts ...imageproc.Option) ManagerOption {
	return func(m *Manager) {
		m.processorOpts = append(m.processorOpts, opts...)
	}
}

func NewManager(host Host, catalog Catalog, opts ...ManagerOption) *Manager {
	m := &Manager{
		host:    host,
		catalog: catalog,
		now:     time.Now,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Capture resizes the window for the platform, captures it and renders it with the theme.
func (m *Manager) Capture(ctx context.Context, opts model.ScreenshotOptions) (*model.ScreenshotResult, error) {
	return m.CaptureWithProgress(ctx, opts, nil)
}

// CaptureWithProgress is Capture with stage callbacks. The original window size
// is restored on every return path.
func (m *Manager) CaptureWithProgress(ctx context.Context, opts model.ScreenshotOptions, progress ProgressFunc) (res *model.ScreenshotResult, err error) {
	if progress == nil {
		progress = func(_ string, _ string) {}
	}

	m.storeCurrentState()
	defer func() {
		if rerr := m.RestoreOriginalState(); rerr != nil {
			if err == nil {
				res, err = nil, fmt.Errorf("restore window size: %w", rerr)
				return
			}
			log.Printf("[screenshot] restore window size after failed capture: %v", rerr)
		}
	}()

	progress("configure", "Applying platform "+opts.PlatformID+"...")
	if err := m.applyConfiguration(ctx, opts); err != nil {
		return nil, err
	}

	progress("stabilize", "Waiting for rendering to settle...")
	if err := m.sleep(ctx, renderSettle); err != nil {
		return nil, err
	}

	progress("capture", "Capturing window...")
	img, err := m.host.CapturePage(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture page: %w", err)
	}

	progress("process", "Applying theme "+opts.ThemeID+"...")
	theme, ok := m.catalog.Theme(opts.ThemeID)
	if !ok {
		return nil, &model.NotFoundError{Kind: "theme", ID: opts.ThemeID}
	}

	res, err = imageproc.NewProcessor(theme, m.processorOpts...).Process(img, opts.Format)
	if err != nil {
		return nil, fmt.Errorf("process screenshot: %w", err)
	}

	log.Printf("[screenshot] captured %s/%s: %dx%d %s, %d bytes",
		opts.PlatformID, opts.ThemeID, res.Width, res.Height, res.Format, len(res.Data))
	return res, nil
}

// Render applies a theme to an already encoded png, jpeg or webp image.
// The host window is not touched.
func (m *Manager) Render(data []byte, themeID string, format model.Format) (*model.ScreenshotResult, error) {
	theme, ok := m.catalog.Theme(themeID)
	if !ok {
		return nil, &model.NotFoundError{Kind: "theme", ID: themeID}
	}
	return imageproc.NewProcessor(theme, m.processorOpts...).ProcessEncoded(data, format)
}

func (m *Manager) storeCurrentState() {
	m.originalWidth, m.originalHeight = m.host.Size()
	m.hasOriginal = true
}

func (m *Manager) applyConfiguration(ctx context.Context, opts model.ScreenshotOptions) error {
	platform, ok := m.catalog.Platform(opts.PlatformID)
	if !ok {
		return &model.NotFoundError{Kind: "platform", ID: opts.PlatformID}
	}

	if w, h, fixed := platform.FixedSize(); fixed {
		if err := m.host.SetSize(w, h); err != nil {
			return fmt.Errorf("resize window: %w", err)
		}
		if err := m.sleep(ctx, resizeSettle); err != nil {
			return err
		}
	}

	// Focused inputs leave a caret and focus ring in the capture.
	if err := m.host.ExecuteScript(ctx, blurActiveElementScript); err != nil {
		return fmt.Errorf("blur active element: %w", err)
	}
	return nil
}

// RestoreOriginalState puts back the size stored at the start of the last capture.
// It does nothing when no size is stored.
func (m *Manager) RestoreOriginalState() error {
	if !m.hasOriginal {
		return nil
	}
	m.hasOriginal = false
	return m.host.SetSize(m.originalWidth, m.originalHeight)
}

// ValidatePlatformSize warns when a fixed platform size does not fit the primary display.
func (m *Manager) ValidatePlatformSize(platformID string) Validation {
	platform, ok := m.catalog.Platform(platformID)
	if !ok {
		return Validation{Valid: false, Warning: "Platform not found"}
	}

	w, h, fixed := platform.FixedSize()
	if !fixed {
		return Validation{Valid: true}
	}

	sw, sh := m.host.WorkArea()
	if w > sw || h > sh {
		return Validation{
			Valid: false,
			Warning: fmt.Sprintf("Selected size (%dx%d) exceeds your screen size (%dx%d). Results may be unexpected.",
				w, h, sw, sh),
		}
	}
	return Validation{Valid: true}
}

// GenerateFilename names a capture after its platform and the current time,
// e.g. podman-desktop-app-macosappstore-2025-01-02-15-04-05.png.
func (m *Manager) GenerateFilename(opts model.ScreenshotOptions) string {
	now := m.now()
	date := now.Format("2006-01-02")
	clock := strings.ReplaceAll(now.Format("15:04:05"), ":", "-")
	platform := strings.ReplaceAll(opts.PlatformID, "-", "")

	return fmt.Sprintf("%s-%s-%s-%s-%s.%s", filenamePrefix, filenameView, platform, date, clock, opts.Format.Extension())
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
