// Package video holds the frame model and the pure image transforms applied
// before frames leave the capture path.
package video

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"time"
)

// Frame is one captured and encoded video frame. Frames are immutable and
// carry their own capture timestamp so the remote side can correlate them with
// the audio stream.
type Frame struct {
	Encoded    []byte // lossless PNG
	Width      int
	Height     int
	CapturedAt time.Time
}

const MimeType = "image/png"

// Encode sharpens and PNG-encodes a raw captured image into a Frame.
func Encode(img *image.RGBA, capturedAt time.Time) (Frame, error) {
	sharpened := Sharpen(img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, sharpened); err != nil {
		return Frame{}, fmt.Errorf("failed to encode frame: %w", err)
	}

	bounds := sharpened.Bounds()
	return Frame{
		Encoded:    buf.Bytes(),
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		CapturedAt: capturedAt,
	}, nil
}
