//go:build !purego && !js

package bayer

import (
	"fmt"

	"gocv.io/x/gocv"
)

// MeanRGB demosaics the patch x patch tile whose top-left corner sits at
// (row, col) within a row-major buffer of the given width, and returns the
// per-channel means of the resulting RGB tile.
func MeanRGB(pix []byte, width, col, row, patch int) (meanR, meanG, meanB float64, err error) {
	if err := checkTile(pix, width, col, row, patch); err != nil {
		return 0, 0, 0, err
	}
	tile := extractTile(pix, width, col, row, patch)
	src, err := gocv.NewMatFromBytes(patch, patch, gocv.MatTypeCV8UC1, tile)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("wrap tile: %w", err)
	}
	defer src.Close()
	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(src, &bgr, gocv.ColorBayerRGToBGR)
	mean := bgr.Mean()
	// Scalar carries channel means in BGR order.
	return mean.Val3, mean.Val2, mean.Val1, nil
}

// ToRGB demosaics an entire width x height Bayer buffer and returns
// interleaved 3-channel RGB bytes.
func ToRGB(pix []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 || len(pix) != width*height {
		return nil, fmt.Errorf("buffer of %d bytes does not match %dx%d", len(pix), width, height)
	}
	src, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, pix)
	if err != nil {
		return nil, fmt.Errorf("wrap frame: %w", err)
	}
	defer src.Close()
	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(src, &bgr, gocv.ColorBayerRGToBGR)
	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(bgr, &rgb, gocv.ColorBGRToRGB)
	return rgb.ToBytes(), nil
}
