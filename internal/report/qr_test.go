package report

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
)

func TestFrameHashQR(t *testing.T) {
	hash := strings.Repeat("ab12", 16)
	data, err := FrameHashQR(hash, 256)
	if err != nil {
		t.Fatalf("FrameHashQR() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != 256 || img.Bounds().Dy() != 256 {
		t.Fatalf("image bounds = %v, want 256x256", img.Bounds())
	}
}

func TestFrameHashQRClampsSize(t *testing.T) {
	data, err := FrameHashQR("deadbeef", 10)
	if err != nil {
		t.Fatalf("FrameHashQR() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != qrMinSize {
		t.Fatalf("image width = %d, want clamped to %d", img.Bounds().Dx(), qrMinSize)
	}
}

func TestFrameHashQRValidation(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{name: "empty", hash: ""},
		{name: "whitespace only", hash: "   "},
		{name: "non-hex characters", hash: "xyz123"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FrameHashQR(tc.hash, 128); err == nil {
				t.Fatalf("FrameHashQR(%q) error = nil, want error", tc.hash)
			}
		})
	}
}
