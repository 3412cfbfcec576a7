// Package imageio writes pixel regions and their demosaiced RGB form to
// lossless PNG files.
package imageio

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// CompressionToLevel maps the 0..9 compression scale carried over from the
// capture tooling onto the encoder's levels.
func CompressionToLevel(c int) png.CompressionLevel {
	switch {
	case c <= 0:
		return png.NoCompression
	case c <= 3:
		return png.BestSpeed
	case c <= 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}

// GrayImage wraps a single-channel byte buffer as an image without copying.
func GrayImage(pix []byte, width, height int) (*image.Gray, error) {
	if len(pix) != width*height {
		return nil, fmt.Errorf("buffer of %d bytes does not match %dx%d", len(pix), width, height)
	}
	return &image.Gray{Pix: pix, Stride: width, Rect: image.Rect(0, 0, width, height)}, nil
}

// RGBImage wraps interleaved 3-channel RGB bytes as an NRGBA image.
func RGBImage(rgb []byte, width, height int) (*image.NRGBA, error) {
	if len(rgb) != width*height*3 {
		return nil, fmt.Errorf("buffer of %d bytes does not match %dx%dx3", len(rgb), width, height)
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		img.Pix[i*4] = rgb[i*3]
		img.Pix[i*4+1] = rgb[i*3+1]
		img.Pix[i*4+2] = rgb[i*3+2]
		img.Pix[i*4+3] = 0xFF
	}
	return img, nil
}

// WritePNG encodes img to path at the given 0..9 compression level.
func WritePNG(path string, img image.Image, compression int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := png.Encoder{CompressionLevel: CompressionToLevel(compression)}
	if err := enc.Encode(f, img); err != nil {
		return err
	}
	return f.Sync()
}

// WriteGrayPNG writes a single-channel pixel buffer as a grayscale PNG.
func WriteGrayPNG(path string, pix []byte, width, height, compression int) error {
	img, err := GrayImage(pix, width, height)
	if err != nil {
		return err
	}
	return WritePNG(path, img, compression)
}

// WriteRGBPNG writes interleaved RGB bytes as a color PNG.
func WriteRGBPNG(path string, rgb []byte, width, height, compression int) error {
	img, err := RGBImage(rgb, width, height)
	if err != nil {
		return err
	}
	return WritePNG(path, img, compression)
}
