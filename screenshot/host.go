package screenshot

import (
	"context"
	"image"
)

// Host is the window being captured.
type Host interface {
	// Size returns the current window size in logical pixels.
	Size() (width, height int)
	SetSize(width, height int) error
	// ExecuteScript runs script in the hosted page.
	ExecuteScript(ctx context.Context, script string) error
	// CapturePage returns the window contents at native (HiDPI) resolution.
	CapturePage(ctx context.Context) (image.Image, error)
	// WorkArea returns the usable size of the primary display.
	WorkArea() (width, height int)
}
