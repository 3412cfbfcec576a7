//go:build purego || js

package bayer

import "fmt"

// MeanRGB demosaics the patch x patch tile whose top-left corner sits at
// (row, col) within a row-major buffer of the given width, and returns the
// per-channel means of the resulting RGB tile.
func MeanRGB(pix []byte, width, col, row, patch int) (meanR, meanG, meanB float64, err error) {
	if err := checkTile(pix, width, col, row, patch); err != nil {
		return 0, 0, 0, err
	}
	tile := extractTile(pix, width, col, row, patch)
	var sumR, sumG, sumB float64
	for y := 0; y < patch; y++ {
		for x := 0; x < patch; x++ {
			r, g, b := interpolateRGB(tile, patch, patch, x, y)
			sumR += r
			sumG += g
			sumB += b
		}
	}
	n := float64(patch * patch)
	return sumR / n, sumG / n, sumB / n, nil
}

// ToRGB demosaics an entire width x height Bayer buffer and returns
// interleaved 3-channel RGB bytes.
func ToRGB(pix []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 || len(pix) != width*height {
		return nil, fmt.Errorf("buffer of %d bytes does not match %dx%d", len(pix), width, height)
	}
	out := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b := interpolateRGB(pix, width, height, x, y)
			i := (y*width + x) * 3
			out[i] = clampByte(r)
			out[i+1] = clampByte(g)
			out[i+2] = clampByte(b)
		}
	}
	return out, nil
}

// interpolateRGB performs bilinear interpolation at (x, y) for the BayerRG
// cell (top-left pixel Blue), matching the native backend's conversion. Edge
// pixels use clamped (replicated) neighbor lookups.
func interpolateRGB(data []byte, width, height, x, y int) (r, g, b float64) {
	px := func(x, y int) float64 {
		if x < 0 {
			x = 0
		} else if x >= width {
			x = width - 1
		}
		if y < 0 {
			y = 0
		} else if y >= height {
			y = height - 1
		}
		return float64(data[y*width+x])
	}
	evenRow := y%2 == 0
	evenCol := x%2 == 0
	switch {
	case evenRow && evenCol:
		// Blue pixel: have B, need R and G.
		r = (px(x-1, y-1) + px(x+1, y-1) + px(x-1, y+1) + px(x+1, y+1)) / 4
		g = (px(x-1, y) + px(x+1, y) + px(x, y-1) + px(x, y+1)) / 4
		b = px(x, y)
	case evenRow && !evenCol:
		// Green on a blue row: R from the red row above/below, B sideways.
		r = (px(x, y-1) + px(x, y+1)) / 2
		g = px(x, y)
		b = (px(x-1, y) + px(x+1, y)) / 2
	case !evenRow && evenCol:
		// Green on a red row: R sideways, B from the blue row above/below.
		r = (px(x-1, y) + px(x+1, y)) / 2
		g = px(x, y)
		b = (px(x, y-1) + px(x, y+1)) / 2
	default:
		// Red pixel: have R, need G and B.
		r = px(x, y)
		g = (px(x-1, y) + px(x+1, y) + px(x, y-1) + px(x, y+1)) / 4
		b = (px(x-1, y-1) + px(x+1, y-1) + px(x-1, y+1) + px(x+1, y+1)) / 4
	}
	return r, g, b
}

func clampByte(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v + 0.5)
}
