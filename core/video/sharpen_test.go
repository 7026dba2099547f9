package video

import (
	"bytes"
	"image"
	"image/color"
	"testing"
	"time"
)

func uniformImage(c color.RGBA, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestSharpenPreservesUniformRegions(t *testing.T) {
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	img := uniformImage(gray, 8, 8)

	got := Sharpen(img)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got.RGBAAt(x, y) != gray {
				t.Fatalf("expected uniform region to survive sharpening, got %v at (%d,%d)", got.RGBAAt(x, y), x, y)
			}
		}
	}
}

func TestSharpenDoesNotMutateInput(t *testing.T) {
	img := uniformImage(color.RGBA{R: 10, G: 200, B: 90, A: 255}, 4, 4)
	img.SetRGBA(2, 2, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	before := make([]byte, len(img.Pix))
	copy(before, img.Pix)

	Sharpen(img)

	if !bytes.Equal(before, img.Pix) {
		t.Fatalf("expected sharpen to leave the source image untouched")
	}
}

func TestSharpenAmplifiesEdges(t *testing.T) {
	img := uniformImage(color.RGBA{R: 100, G: 100, B: 100, A: 255}, 5, 5)
	img.SetRGBA(2, 2, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	got := Sharpen(img)

	center := got.RGBAAt(2, 2)
	if center.R <= 200 {
		t.Fatalf("expected bright center pixel to be amplified, got %d", center.R)
	}
	neighbor := got.RGBAAt(2, 1)
	if neighbor.R >= 100 {
		t.Fatalf("expected neighbor of bright pixel to be darkened, got %d", neighbor.R)
	}
}

func TestEncodeProducesPNGWithDimensions(t *testing.T) {
	capturedAt := time.Now()
	frame, err := Encode(uniformImage(color.RGBA{A: 255}, 6, 4), capturedAt)
	if err != nil {
		t.Fatalf("expected encode to succeed, got %v", err)
	}

	if frame.Width != 6 || frame.Height != 4 {
		t.Fatalf("expected 6x4 frame, got %dx%d", frame.Width, frame.Height)
	}
	if !frame.CapturedAt.Equal(capturedAt) {
		t.Fatalf("expected frame to carry its capture timestamp")
	}

	pngMagic := []byte{0x89, 'P', 'N', 'G'}
	if len(frame.Encoded) < 4 || !bytes.Equal(frame.Encoded[:4], pngMagic) {
		t.Fatalf("expected PNG-encoded frame payload")
	}
}
