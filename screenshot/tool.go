package screenshot

import (
	"context"
	"errors"
	"log"
	"sync"

	"shotframe/model"
	"shotframe/theme"
)

var ErrNotInitialized = errors.New("screenshot manager not initialized: call Init first")

// Tool is the entry point used by the CLI and the HTTP API. The catalog is
// available right away; capture operations need a host attached with Init.
type Tool struct {
	loader *theme.Loader
	opts   []ManagerOption

	mu      sync.RWMutex
	manager *Manager
}

func NewTool(loader *theme.Loader, opts ...ManagerOption) *Tool {
	return &Tool{
		loader: loader,
		opts:   opts,
	}
}

// Init attaches the host window. Calling it again replaces the host.
func (t *Tool) Init(host Host) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.manager = NewManager(host, t.loader, t.opts...)
	log.Println("[screenshot] manager initialized")
}

// Ready reports whether a host is attached.
func (t *Tool) Ready() bool {
	_, err := t.getManager()
	return err == nil
}

func (t *Tool) getManager() (*Manager, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.manager == nil {
		return nil, ErrNotInitialized
	}
	return t.manager, nil
}

func (t *Tool) Capture(ctx context.Context, opts model.ScreenshotOptions, progress ProgressFunc) (*model.ScreenshotResult, error) {
	m, err := t.getManager()
	if err != nil {
		return nil, err
	}
	return m.CaptureWithProgress(ctx, opts, progress)
}

func (t *Tool) ValidatePlatformSize(platformID string) (Validation, error) {
	m, err := t.getManager()
	if err != nil {
		return Validation{}, err
	}
	return m.ValidatePlatformSize(platformID), nil
}

func (t *Tool) GenerateFilename(opts model.ScreenshotOptions) (string, error) {
	m, err := t.getManager()
	if err != nil {
		return "", err
	}
	return m.GenerateFilename(opts), nil
}

// Render themes an uploaded image. It works before Init.
func (t *Tool) Render(data []byte, themeID string, format model.Format) (*model.ScreenshotResult, error) {
	m, err := t.getManager()
	if err != nil {
		m = NewManager(nil, t.loader, t.opts...)
	}
	return m.Render(data, themeID, format)
}

// Loader returns the theme and platform catalog.
func (t *Tool) Loader() *theme.Loader {
	return t.loader
}

func (t *Tool) Themes() []model.Theme {
	return t.loader.Themes()
}

func (t *Tool) Theme(id string) (model.Theme, bool) {
	return t.loader.Theme(id)
}

func (t *Tool) Platforms() []model.Platform {
	return t.loader.Platforms()
}

func (t *Tool) PlatformsByCategory() []theme.CategoryGroup {
	return t.loader.PlatformsByCategory()
}
