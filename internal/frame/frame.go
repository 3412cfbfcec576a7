package frame

import (
	"fmt"
	"os"
)

// RawFrame owns the byte buffer of one raw sensor dump. After construction
// the buffer always has exactly Geometry.FrameSize() bytes: shorter source
// files are zero-padded on the right (transmission loss truncates frames),
// longer ones are truncated. The size mismatch itself is never an error so
// downstream processing stays uniform; callers that care can check
// SizeNormalized.
type RawFrame struct {
	geo        Geometry
	buf        []byte
	sourceSize int64
}

// Load reads the file at path into a RawFrame with the given geometry.
func Load(path string, geo Geometry) (*RawFrame, error) {
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	f := New(data, geo)
	f.sourceSize = int64(len(data))
	return f, nil
}

// New wraps the provided bytes in a RawFrame, padding or truncating to the
// geometry's frame size. The slice is not retained when padding or
// truncation is required; when the size already matches, New takes ownership.
func New(data []byte, geo Geometry) *RawFrame {
	size := geo.FrameSize()
	buf := data
	switch {
	case len(data) < size:
		buf = make([]byte, size)
		copy(buf, data)
	case len(data) > size:
		buf = make([]byte, size)
		copy(buf, data[:size])
	}
	return &RawFrame{geo: geo, buf: buf, sourceSize: int64(len(data))}
}

// Geometry returns the frame's layout.
func (f *RawFrame) Geometry() Geometry {
	return f.geo
}

// Bytes returns the full frame buffer, header and footer rows included.
// The slice aliases the frame's storage and must not be modified.
func (f *RawFrame) Bytes() []byte {
	return f.buf
}

// SourceSize reports the byte count of the originating file before the
// pad/truncate normalization.
func (f *RawFrame) SourceSize() int64 {
	return f.sourceSize
}

// SizeNormalized reports whether the source had to be padded or truncated.
func (f *RawFrame) SizeNormalized() bool {
	return f.sourceSize != int64(f.geo.FrameSize())
}

// Row returns the i-th row of the frame.
func (f *RawFrame) Row(i int) ([]byte, error) {
	if i < 0 || i >= f.geo.Height {
		return nil, fmt.Errorf("row %d out of range [0,%d)", i, f.geo.Height)
	}
	start := i * f.geo.Width
	return f.buf[start : start+f.geo.Width], nil
}

// PixelRegion returns rows [1, height-1) as a contiguous
// (height-2) x width view, excluding the header and footer rows.
func (f *RawFrame) PixelRegion() []byte {
	return f.buf[f.geo.Width : f.geo.FrameSize()-f.geo.Width]
}

// HeaderRow returns the metadata row at the top of the frame.
func (f *RawFrame) HeaderRow() []byte {
	row, _ := f.Row(0)
	return row
}

// FooterRow returns the metadata row at the bottom of the frame.
func (f *RawFrame) FooterRow() []byte {
	row, _ := f.Row(f.geo.Height - 1)
	return row
}
