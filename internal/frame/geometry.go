package frame

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default sensor geometry: 4096 pixel columns and 4098 rows, of which the
// first and last rows carry metadata rather than pixels.
const (
	DefaultWidth        = 4096
	DefaultHeight       = 4098
	DefaultHeaderLen    = 11
	DefaultFooterLen    = 66
	DefaultPatchSize    = 8
	DefaultIntegScaleMs = 0.0104
)

var ErrBadGeometry = errors.New("invalid frame geometry")

// Geometry describes the fixed layout of a raw sensor dump. Values default to
// the known sensor but can be overridden from a yaml profile, mainly so tests
// can run against small synthetic frames.
type Geometry struct {
	Width        int `yaml:"width"`
	Height       int `yaml:"height"`
	HeaderLength int `yaml:"headerLength"`
	FooterLength int `yaml:"footerLength"`
	PatchSize    int `yaml:"patchSize"`
	// IntegScaleMs converts raw integration time units to milliseconds.
	// 0.0104 is a hardware constant for this sensor family.
	IntegScaleMs float64 `yaml:"integrationTimeScaleMs"`
}

func DefaultGeometry() Geometry {
	return Geometry{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		HeaderLength: DefaultHeaderLen,
		FooterLength: DefaultFooterLen,
		PatchSize:    DefaultPatchSize,
		IntegScaleMs: DefaultIntegScaleMs,
	}
}

// FrameSize returns the exact byte count of a frame with this geometry.
func (g Geometry) FrameSize() int {
	return g.Width * g.Height
}

// PixelRows returns the number of rows in the pixel region, excluding the
// header and footer rows.
func (g Geometry) PixelRows() int {
	return g.Height - 2
}

func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadGeometry, g.Width, g.Height)
	}
	if g.Height < 3 {
		return fmt.Errorf("%w: height %d leaves no pixel rows", ErrBadGeometry, g.Height)
	}
	if g.HeaderLength < 0 || g.HeaderLength > g.Width {
		return fmt.Errorf("%w: header length %d", ErrBadGeometry, g.HeaderLength)
	}
	if g.FooterLength < 0 || g.FooterLength > g.Width {
		return fmt.Errorf("%w: footer length %d", ErrBadGeometry, g.FooterLength)
	}
	if g.PatchSize < 2 {
		return fmt.Errorf("%w: patch size %d", ErrBadGeometry, g.PatchSize)
	}
	return nil
}

// LoadGeometry reads a yaml geometry profile. Fields left unset in the file
// keep their defaults.
func LoadGeometry(path string) (Geometry, error) {
	geo := DefaultGeometry()
	f, err := os.Open(path)
	if err != nil {
		return geo, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&geo); err != nil {
		return geo, fmt.Errorf("decode geometry %s: %w", path, err)
	}
	if geo.IntegScaleMs <= 0 {
		geo.IntegScaleMs = DefaultIntegScaleMs
	}
	if geo.PatchSize == 0 {
		geo.PatchSize = DefaultPatchSize
	}
	if err := geo.Validate(); err != nil {
		return geo, err
	}
	return geo, nil
}
