package repair

import (
	"errors"
	"fmt"
	"os"
)

var (
	ErrInvalidShiftCount    = errors.New("invalid shift count")
	ErrInvalidStartPosition = errors.New("invalid start position")
	ErrInvalidOffset        = errors.New("invalid region offset")
	ErrSizeMismatch         = errors.New("file size does not match frame geometry")
)

// ShiftRegionRight moves the sub-buffer starting at (startRow, startCol) in a
// width x height byte buffer shiftCount positions to the right and zero-fills
// the vacated head. The buffer length never changes, so the trailing
// shiftCount bytes of the region are overwritten and lost. Validation runs
// before any mutation; on error the buffer is untouched.
//
// The geometry matters only for bounds checking: the shift itself is plain
// byte surgery with no Bayer semantics.
func ShiftRegionRight(buf []byte, width, height, shiftCount, startRow, startCol int) error {
	if shiftCount < 1 {
		return fmt.Errorf("%w: %d, must be >= 1", ErrInvalidShiftCount, shiftCount)
	}
	if startRow < 0 || startRow >= height || startCol < 0 || startCol >= width {
		return fmt.Errorf("%w: (%d,%d)", ErrInvalidStartPosition, startRow, startCol)
	}
	offset := startRow*width + startCol
	total := width * height
	if offset < 0 || offset >= total {
		return fmt.Errorf("%w: %d", ErrInvalidOffset, offset)
	}
	if total > len(buf) {
		return fmt.Errorf("%w: buffer has %d bytes, geometry needs %d", ErrInvalidOffset, len(buf), total)
	}
	regionSize := total - offset
	if shiftCount > regionSize {
		return fmt.Errorf("%w: %d for region size %d", ErrInvalidShiftCount, shiftCount, regionSize)
	}
	region := buf[offset:total]
	copy(region[shiftCount:], region[:regionSize-shiftCount])
	for i := 0; i < shiftCount; i++ {
		region[i] = 0
	}
	return nil
}

// ShiftFileRegion applies ShiftRegionRight to a raw frame file in place. The
// file must be exactly width*height bytes; any validation failure leaves the
// file unmodified.
func ShiftFileRegion(path string, width, height, shiftCount, startRow, startCol int) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	expected := int64(width) * int64(height)
	if info.Size() != expected {
		return fmt.Errorf("%w: %s has %d bytes, expected %d", ErrSizeMismatch, path, info.Size(), expected)
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := ShiftRegionRight(buf, width, height, shiftCount, startRow, startCol); err != nil {
		return err
	}
	return os.WriteFile(path, buf, info.Mode())
}
