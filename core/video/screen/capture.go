// Package screen captures display frames for the video modality.
//
// By convention the session watches a secondary display (index 1) so the
// conversation does not observe its own output; when that display does not
// exist the capturer deterministically falls back to the first available one
// and reports itself as degraded.
package screen

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// DefaultDisplay is the preferred display index (first secondary display).
const DefaultDisplay = 1

type Capturer struct {
	display  int
	degraded bool
}

// NewCapturer resolves the preferred display index against the displays that
// actually exist. A missing preferred display degrades to display 0; having no
// displays at all is a device error.
func NewCapturer(preferredDisplay int) (*Capturer, error) {
	active := screenshot.NumActiveDisplays()
	if active == 0 {
		return nil, fmt.Errorf("no active displays available")
	}

	if preferredDisplay >= 0 && preferredDisplay < active {
		return &Capturer{display: preferredDisplay}, nil
	}

	logger.Warn("preferred display unavailable, degrading to first display",
		"preferred_display", preferredDisplay,
		"active_displays", active,
	)
	return &Capturer{display: 0, degraded: true}, nil
}

// Capture grabs one raw frame of the selected display.
func (c *Capturer) Capture() (*image.RGBA, error) {
	img, err := screenshot.CaptureDisplay(c.display)
	if err != nil {
		return nil, fmt.Errorf("failed to capture display %d: %w", c.display, err)
	}
	return img, nil
}

// Display returns the display index actually captured.
func (c *Capturer) Display() int { return c.display }

// Degraded reports whether the capturer fell back from the preferred display.
func (c *Capturer) Degraded() bool { return c.degraded }
