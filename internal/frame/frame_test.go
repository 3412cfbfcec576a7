package frame

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func testGeometry() Geometry {
	return Geometry{
		Width:        16,
		Height:       6,
		HeaderLength: 11,
		FooterLength: 12,
		PatchSize:    2,
		IntegScaleMs: DefaultIntegScaleMs,
	}
}

// writeTestFrame builds a frame buffer where every byte is its row index,
// convenient for checking row and region slicing.
func writeTestFrame(geo Geometry) []byte {
	buf := make([]byte, geo.FrameSize())
	for row := 0; row < geo.Height; row++ {
		for col := 0; col < geo.Width; col++ {
			buf[row*geo.Width+col] = byte(row)
		}
	}
	return buf
}

func TestNewNormalizesSize(t *testing.T) {
	geo := testGeometry()
	size := geo.FrameSize()
	tests := []struct {
		name       string
		sourceLen  int
		normalized bool
	}{
		{name: "exact", sourceLen: size, normalized: false},
		{name: "short is padded", sourceLen: size - 10, normalized: true},
		{name: "long is truncated", sourceLen: size + 10, normalized: true},
		{name: "empty", sourceLen: 0, normalized: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := make([]byte, tc.sourceLen)
			for i := range data {
				data[i] = 0xAB
			}
			f := New(data, geo)
			if got := len(f.Bytes()); got != size {
				t.Fatalf("len(Bytes()) = %d, want %d", got, size)
			}
			if f.SizeNormalized() != tc.normalized {
				t.Fatalf("SizeNormalized() = %v, want %v", f.SizeNormalized(), tc.normalized)
			}
			if f.SourceSize() != int64(tc.sourceLen) {
				t.Fatalf("SourceSize() = %d, want %d", f.SourceSize(), tc.sourceLen)
			}
		})
	}
}

func TestNewPadsWithZeros(t *testing.T) {
	geo := testGeometry()
	data := bytes.Repeat([]byte{0xFF}, geo.FrameSize()-4)
	f := New(data, geo)
	buf := f.Bytes()
	for i := geo.FrameSize() - 4; i < geo.FrameSize(); i++ {
		if buf[i] != 0 {
			t.Fatalf("buf[%d] = %d, want 0", i, buf[i])
		}
	}
}

func TestPixelRegionExcludesMetadataRows(t *testing.T) {
	geo := testGeometry()
	f := New(writeTestFrame(geo), geo)
	pix := f.PixelRegion()
	if got, want := len(pix), geo.Width*geo.PixelRows(); got != want {
		t.Fatalf("len(PixelRegion()) = %d, want %d", got, want)
	}
	if pix[0] != 1 {
		t.Fatalf("first pixel row = %d, want 1", pix[0])
	}
	if last := pix[len(pix)-1]; last != byte(geo.Height-2) {
		t.Fatalf("last pixel row = %d, want %d", last, geo.Height-2)
	}
}

func TestRowBounds(t *testing.T) {
	geo := testGeometry()
	f := New(writeTestFrame(geo), geo)
	tests := []struct {
		name    string
		row     int
		wantErr bool
	}{
		{name: "first", row: 0},
		{name: "last", row: geo.Height - 1},
		{name: "negative", row: -1, wantErr: true},
		{name: "past end", row: geo.Height, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			row, err := f.Row(tc.row)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Row(%d) error = nil, want error", tc.row)
				}
				return
			}
			if err != nil {
				t.Fatalf("Row(%d) error = %v", tc.row, err)
			}
			if len(row) != geo.Width {
				t.Fatalf("len(Row(%d)) = %d, want %d", tc.row, len(row), geo.Width)
			}
			if row[0] != byte(tc.row) {
				t.Fatalf("Row(%d)[0] = %d, want %d", tc.row, row[0], tc.row)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	geo := testGeometry()
	dir := t.TempDir()
	path := filepath.Join(dir, "capture_0001.bin")
	if err := os.WriteFile(path, writeTestFrame(geo), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	f, err := Load(path, geo)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if f.SizeNormalized() {
		t.Fatalf("SizeNormalized() = true, want false")
	}
	if _, err := Load(filepath.Join(dir, "missing.bin"), geo); err == nil {
		t.Fatalf("Load(missing) error = nil, want error")
	}
}

func TestHeaderAndFooterRows(t *testing.T) {
	geo := testGeometry()
	f := New(writeTestFrame(geo), geo)
	if got := f.HeaderRow()[0]; got != 0 {
		t.Fatalf("HeaderRow()[0] = %d, want 0", got)
	}
	if got := f.FooterRow()[0]; got != byte(geo.Height-1) {
		t.Fatalf("FooterRow()[0] = %d, want %d", got, geo.Height-1)
	}
}
