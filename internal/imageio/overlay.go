package imageio

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RenderDetectionOverlay draws a downscaled view of the pixel region with a
// crosshair and label at the detected shift position. The overlay renders at
// a reduced width (800px) so a full sensor frame stays reviewable.
func RenderDetectionOverlay(pix []byte, width, height, row, col int) (*image.RGBA, error) {
	if len(pix) != width*height {
		return nil, fmt.Errorf("buffer of %d bytes does not match %dx%d", len(pix), width, height)
	}
	if row < 0 || row >= height || col < 0 || col >= width {
		return nil, fmt.Errorf("detection point (%d,%d) outside %dx%d region", row, col, width, height)
	}

	const targetWidth = 800
	scale := float64(targetWidth) / float64(width)
	imgW := targetWidth
	if width < targetWidth {
		imgW = width
		scale = 1
	}
	imgH := int(float64(height) * scale)
	if imgH < 1 {
		imgH = 1
	}

	// Reserve space for the summary line at the bottom.
	summaryH := 24
	img := image.NewRGBA(image.Rect(0, 0, imgW, imgH+summaryH))

	// Nearest-neighbor downsample of the raw mosaic.
	for y := 0; y < imgH; y++ {
		srcY := int(float64(y) / scale)
		if srcY >= height {
			srcY = height - 1
		}
		for x := 0; x < imgW; x++ {
			srcX := int(float64(x) / scale)
			if srcX >= width {
				srcX = width - 1
			}
			v := pix[srcY*width+srcX]
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	for y := imgH; y < imgH+summaryH; y++ {
		for x := 0; x < imgW; x++ {
			img.Set(x, y, color.RGBA{0, 0, 0, 255})
		}
	}

	markColor := color.RGBA{255, 64, 64, 255}
	cx := int(float64(col) * scale)
	cy := int(float64(row) * scale)
	if cx >= imgW {
		cx = imgW - 1
	}
	if cy >= imgH {
		cy = imgH - 1
	}
	for x := 0; x < imgW; x++ {
		img.Set(x, cy, markColor)
	}
	for y := 0; y < imgH; y++ {
		img.Set(cx, y, markColor)
	}

	label := fmt.Sprintf("shift @ row=%d col=%d", row, col)
	drawText(img, basicfont.Face7x13, label, 6, imgH+16, color.RGBA{220, 220, 220, 255})
	return img, nil
}

func drawText(img *image.RGBA, face font.Face, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
