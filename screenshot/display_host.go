package screenshot

import (
	"context"
	"fmt"
	"image"
	"sync"

	displays "github.com/kbinani/screenshot"
)

// DisplayHost treats a region of a physical display as the window. The region is
// anchored at the display origin and SetSize changes its extent. There is no page
// to script, so ExecuteScript does nothing.
type DisplayHost struct {
	display int

	mu     sync.Mutex
	width  int
	height int
}

// NewDisplayHost starts with the full bounds of the given display.
func NewDisplayHost(display int) (*DisplayHost, error) {
	if n := displays.NumActiveDisplays(); display < 0 || display >= n {
		return nil, fmt.Errorf("display %d not available (%d active)", display, n)
	}
	b := displays.GetDisplayBounds(display)
	return &DisplayHost{display: display, width: b.Dx(), height: b.Dy()}, nil
}

func (h *DisplayHost) Size() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

func (h *DisplayHost) SetSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid size %dx%d", width, height)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.width, h.height = width, height
	return nil
}

func (h *DisplayHost) ExecuteScript(_ context.Context, _ string) error {
	return nil
}

func (h *DisplayHost) CapturePage(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, hgt := h.Size()
	b := displays.GetDisplayBounds(h.display)
	rect := image.Rect(b.Min.X, b.Min.Y, b.Min.X+w, b.Min.Y+hgt).Intersect(b)
	if rect.Empty() {
		return nil, fmt.Errorf("capture region outside display %d", h.display)
	}

	img, err := displays.CaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("capture display %d: %w", h.display, err)
	}
	return img, nil
}

func (h *DisplayHost) WorkArea() (int, int) {
	b := displays.GetDisplayBounds(h.display)
	return b.Dx(), b.Dy()
}
