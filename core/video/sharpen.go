package video

import "image"

// sharpenKernel is a fixed 3x3 high-pass convolution that partially
// compensates for downscaling/compression loss on captured frames.
var sharpenKernel = [3][3]int32{
	{0, -1, 0},
	{-1, 5, -1},
	{0, -1, 0},
}

// Sharpen applies the high-pass kernel to every pixel and returns a new image.
// The input is never mutated; edge pixels are convolved against clamped
// neighbor coordinates. Alpha passes through untouched.
func Sharpen(src *image.RGBA) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)

	width, height := bounds.Dx(), bounds.Dy()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sums [3]int32
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					sx := clamp(x+kx, 0, width-1)
					sy := clamp(y+ky, 0, height-1)
					offset := src.PixOffset(bounds.Min.X+sx, bounds.Min.Y+sy)
					weight := sharpenKernel[ky+1][kx+1]
					for c := 0; c < 3; c++ {
						sums[c] += weight * int32(src.Pix[offset+c])
					}
				}
			}

			offset := dst.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			for c := 0; c < 3; c++ {
				dst.Pix[offset+c] = clampByte(sums[c])
			}
			dst.Pix[offset+3] = src.Pix[src.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)+3]
		}
	}

	return dst
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampByte(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
