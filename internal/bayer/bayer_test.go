package bayer

import (
	"math"
	"testing"
)

// uniformMosaic fills every Bayer site with the same value; any correct
// demosaic reproduces that value on all three channels.
func uniformMosaic(width, height int, v byte) []byte {
	pix := make([]byte, width*height)
	for i := range pix {
		pix[i] = v
	}
	return pix
}

func TestMeanRGBUniform(t *testing.T) {
	pix := uniformMosaic(16, 16, 128)
	r, g, b, err := MeanRGB(pix, 16, 0, 0, 8)
	if err != nil {
		t.Fatalf("MeanRGB() error = %v", err)
	}
	for name, mean := range map[string]float64{"R": r, "G": g, "B": b} {
		if math.Abs(mean-128) > 1 {
			t.Fatalf("mean%s = %v, want ~128", name, mean)
		}
	}
}

func TestMeanRGBChannelPhase(t *testing.T) {
	// Per-site mosaic: the top-left pixel of the cell is Blue, the
	// odd/odd site is Red. Both backends must agree on that assignment.
	width, height, patch := 16, 16, 8
	pix := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			switch {
			case y%2 == 0 && x%2 == 0:
				pix[y*width+x] = 220
			case y%2 == 1 && x%2 == 1:
				pix[y*width+x] = 30
			default:
				pix[y*width+x] = 120
			}
		}
	}
	r, g, b, err := MeanRGB(pix, width, 0, 0, patch)
	if err != nil {
		t.Fatalf("MeanRGB() error = %v", err)
	}
	if math.Abs(b-220) > 10 {
		t.Fatalf("meanB = %v, want ~220 (top-left site is Blue)", b)
	}
	if math.Abs(r-30) > 10 {
		t.Fatalf("meanR = %v, want ~30 (odd/odd site is Red)", r)
	}
	if math.Abs(g-120) > 10 {
		t.Fatalf("meanG = %v, want ~120", g)
	}
}

func TestMeanRGBTileOffsets(t *testing.T) {
	// A bright tile in an otherwise black mosaic: scoring the bright tile
	// and a black tile must give clearly separated means.
	width, height, patch := 32, 32, 8
	pix := make([]byte, width*height)
	for y := 8; y < 16; y++ {
		for x := 16; x < 24; x++ {
			pix[y*width+x] = 200
		}
	}
	_, gBright, _, err := MeanRGB(pix, width, 16, 8, patch)
	if err != nil {
		t.Fatalf("MeanRGB(bright) error = %v", err)
	}
	_, gDark, _, err := MeanRGB(pix, width, 0, 0, patch)
	if err != nil {
		t.Fatalf("MeanRGB(dark) error = %v", err)
	}
	if gBright <= gDark+50 {
		t.Fatalf("bright tile meanG = %v, dark = %v, want clear separation", gBright, gDark)
	}
}

func TestMeanRGBValidation(t *testing.T) {
	pix := uniformMosaic(16, 8, 1)
	tests := []struct {
		name  string
		col   int
		row   int
		patch int
	}{
		{name: "patch too small", col: 0, row: 0, patch: 1},
		{name: "tile past right edge", col: 12, row: 0, patch: 8},
		{name: "tile past bottom", col: 0, row: 4, patch: 8},
		{name: "negative col", col: -2, row: 0, patch: 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, _, err := MeanRGB(pix, 16, tc.col, tc.row, tc.patch); err == nil {
				t.Fatalf("MeanRGB() error = nil, want error")
			}
		})
	}
}

func TestToRGBUniform(t *testing.T) {
	width, height := 8, 8
	rgb, err := ToRGB(uniformMosaic(width, height, 90), width, height)
	if err != nil {
		t.Fatalf("ToRGB() error = %v", err)
	}
	if len(rgb) != width*height*3 {
		t.Fatalf("len(rgb) = %d, want %d", len(rgb), width*height*3)
	}
	for i, v := range rgb {
		if int(v) < 89 || int(v) > 91 {
			t.Fatalf("rgb[%d] = %d, want ~90", i, v)
		}
	}
}

func TestToRGBSizeMismatch(t *testing.T) {
	if _, err := ToRGB(make([]byte, 10), 8, 8); err == nil {
		t.Fatalf("ToRGB() error = nil, want error")
	}
}
