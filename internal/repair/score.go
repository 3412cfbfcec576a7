// Package repair locates and corrects the one-byte data-loss artifact these
// sensors produce during readout. A dropped byte misaligns every following
// byte, which breaks the Bayer phase from that point onward; the green
// channel then bleeds into red and blue, so the green-to-red+blue ratio of
// small demosaiced tiles drops sharply at the damage boundary.
package repair

import (
	"fmt"

	"example.com/bayerfix/internal/bayer"
)

// epsilon keeps the color-balance ratio finite on all-black tiles.
const epsilon = 1e-6

// PatchScore is the Bayer color-balance ratio of one tile.
// GlobalOffset is the linear byte index (row*width + col) of the tile's
// top-left corner within the scored buffer's own coordinate space.
type PatchScore struct {
	GlobalOffset int     `json:"globalOffset"`
	Row          int     `json:"row"`
	Col          int     `json:"col"`
	Value        float64 `json:"value"`
}

// ScorePatches tiles a width x height pixel buffer into a regular grid of
// patch x patch tiles starting at (0,0) and stepping by patch in both axes;
// partial tiles at the bottom or right edge are discarded. Each tile is
// demosaiced with the sensor's BayerRG cell and scored
// meanG/(meanR+meanB+epsilon).
// The returned sequence is row-major; detection depends on that order since
// only adjacent scores are compared.
func ScorePatches(pix []byte, width, height, patch int) ([]PatchScore, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid region %dx%d", width, height)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("buffer of %d bytes does not match %dx%d", len(pix), width, height)
	}
	if patch < 2 {
		return nil, fmt.Errorf("patch size %d too small for a Bayer cell", patch)
	}
	rows := height / patch
	cols := width / patch
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("patch size %d exceeds region %dx%d", patch, width, height)
	}
	scores := make([]PatchScore, 0, rows*cols)
	for row := 0; row+patch <= height; row += patch {
		for col := 0; col+patch <= width; col += patch {
			meanR, meanG, meanB, err := bayer.MeanRGB(pix, width, col, row, patch)
			if err != nil {
				return nil, fmt.Errorf("score tile at (%d,%d): %w", row, col, err)
			}
			scores = append(scores, PatchScore{
				GlobalOffset: row*width + col,
				Row:          row,
				Col:          col,
				Value:        meanG / (meanR + meanB + epsilon),
			})
		}
	}
	return scores, nil
}
