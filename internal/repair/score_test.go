package repair

import (
	"math"
	"testing"
)

// fillBayer writes a BayerRG mosaic (top-left pixel Blue) where red, green
// and blue sites carry the given values.
func fillBayer(width, height int, r, g, b byte) []byte {
	pix := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			evenRow := y%2 == 0
			evenCol := x%2 == 0
			var v byte
			switch {
			case evenRow && evenCol:
				v = b
			case !evenRow && !evenCol:
				v = r
			default:
				v = g
			}
			pix[y*width+x] = v
		}
	}
	return pix
}

func TestScorePatchesGrid(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		patch  int
		want   int
	}{
		{name: "evenly divisible", width: 32, height: 32, patch: 8, want: 16},
		{name: "partial edge tiles dropped", width: 20, height: 12, patch: 8, want: 2},
		{name: "single tile", width: 8, height: 8, patch: 8, want: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pix := fillBayer(tc.width, tc.height, 100, 100, 100)
			scores, err := ScorePatches(pix, tc.width, tc.height, tc.patch)
			if err != nil {
				t.Fatalf("ScorePatches() error = %v", err)
			}
			if len(scores) != tc.want {
				t.Fatalf("len(scores) = %d, want %d", len(scores), tc.want)
			}
		})
	}
}

func TestScorePatchesOffsets(t *testing.T) {
	width, height, patch := 16, 16, 8
	pix := fillBayer(width, height, 50, 50, 50)
	scores, err := ScorePatches(pix, width, height, patch)
	if err != nil {
		t.Fatalf("ScorePatches() error = %v", err)
	}
	wantOffsets := []int{0, 8, 128, 136}
	if len(scores) != len(wantOffsets) {
		t.Fatalf("len(scores) = %d, want %d", len(scores), len(wantOffsets))
	}
	for i, want := range wantOffsets {
		if scores[i].GlobalOffset != want {
			t.Fatalf("scores[%d].GlobalOffset = %d, want %d", i, scores[i].GlobalOffset, want)
		}
		if got := scores[i].Row*width + scores[i].Col; got != want {
			t.Fatalf("scores[%d] row/col = (%d,%d), offset %d, want %d",
				i, scores[i].Row, scores[i].Col, got, want)
		}
	}
}

func TestScorePatchesUniformBalance(t *testing.T) {
	// On a uniform mosaic every channel demosaics to the same mean, so the
	// ratio sits at meanG/(2*meanG) regardless of backend.
	pix := fillBayer(16, 16, 120, 120, 120)
	scores, err := ScorePatches(pix, 16, 16, 8)
	if err != nil {
		t.Fatalf("ScorePatches() error = %v", err)
	}
	for i, s := range scores {
		if math.Abs(s.Value-0.5) > 1e-3 {
			t.Fatalf("scores[%d].Value = %v, want ~0.5", i, s.Value)
		}
	}
}

func TestScorePatchesGreenDominance(t *testing.T) {
	width, height, patch := 8, 8, 8
	green := fillBayer(width, height, 10, 200, 10)
	uniform := fillBayer(width, height, 100, 100, 100)
	greenScores, err := ScorePatches(green, width, height, patch)
	if err != nil {
		t.Fatalf("ScorePatches(green) error = %v", err)
	}
	uniformScores, err := ScorePatches(uniform, width, height, patch)
	if err != nil {
		t.Fatalf("ScorePatches(uniform) error = %v", err)
	}
	if greenScores[0].Value <= uniformScores[0].Value {
		t.Fatalf("green tile score = %v, uniform = %v, want green higher",
			greenScores[0].Value, uniformScores[0].Value)
	}
}

func TestScorePatchesValidation(t *testing.T) {
	tests := []struct {
		name   string
		pix    []byte
		width  int
		height int
		patch  int
	}{
		{name: "zero width", pix: nil, width: 0, height: 8, patch: 8},
		{name: "length mismatch", pix: make([]byte, 10), width: 8, height: 8, patch: 8},
		{name: "patch below bayer cell", pix: make([]byte, 64), width: 8, height: 8, patch: 1},
		{name: "patch exceeds region", pix: make([]byte, 16), width: 4, height: 4, patch: 8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ScorePatches(tc.pix, tc.width, tc.height, tc.patch); err == nil {
				t.Fatalf("ScorePatches() error = nil, want error")
			}
		})
	}
}
