package repair

import (
	"errors"
	"math"
)

var ErrInsufficientData = errors.New("not enough patch scores to compare")

// ShiftEvent identifies the byte judged most likely to have been dropped.
// DetectedOffset uses the same coordinate space as the scores it was derived
// from.
type ShiftEvent struct {
	DetectedOffset int     `json:"detectedOffset"`
	MaxDiff        float64 `json:"maxDiff"`
}

// DetectShift scans the score sequence in order and finds the pair of
// adjacent scores with the largest absolute difference; the later element of
// that pair marks the detected offset. Ties resolve to the first occurrence
// of the maximum. Fewer than two scores cannot form a pair and fail with
// ErrInsufficientData.
func DetectShift(scores []PatchScore) (ShiftEvent, error) {
	if len(scores) < 2 {
		return ShiftEvent{}, ErrInsufficientData
	}
	maxDiff := -1.0
	best := 0
	for i := 1; i < len(scores); i++ {
		diff := math.Abs(scores[i].Value - scores[i-1].Value)
		if diff > maxDiff {
			maxDiff = diff
			best = scores[i].GlobalOffset
		}
	}
	return ShiftEvent{DetectedOffset: best, MaxDiff: maxDiff}, nil
}
