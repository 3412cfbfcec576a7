// Package bayer converts single-channel Bayer-mosaic pixel data to RGB.
//
// The sensor readout matches OpenCV's BayerRG layout, whose name refers to
// the second row of the repeating 2x2 cell. Anchored at the top-left pixel
// the cell is
//
//	B G
//	G R
//
// Two backends implement the conversion. The default binds to OpenCV via
// gocv; building with -tags purego selects a pure Go bilinear interpolation
// over the same cell. Both treat each input independently, so demosaicing a
// small tile clamps at the tile edges rather than reading neighboring frame
// data.
package bayer

import "fmt"

func checkTile(pix []byte, width, col, row, patch int) error {
	if patch < 2 {
		return fmt.Errorf("patch size %d too small for a Bayer cell", patch)
	}
	if width <= 0 {
		return fmt.Errorf("invalid stride %d", width)
	}
	if col < 0 || row < 0 || col+patch > width {
		return fmt.Errorf("tile %dx%d at (%d,%d) outside stride %d", patch, patch, row, col, width)
	}
	need := (row+patch-1)*width + col + patch
	if need > len(pix) {
		return fmt.Errorf("tile %dx%d at (%d,%d) beyond buffer of %d bytes", patch, patch, row, col, len(pix))
	}
	return nil
}

func extractTile(pix []byte, width, col, row, patch int) []byte {
	tile := make([]byte, patch*patch)
	for r := 0; r < patch; r++ {
		src := (row+r)*width + col
		copy(tile[r*patch:(r+1)*patch], pix[src:src+patch])
	}
	return tile
}
