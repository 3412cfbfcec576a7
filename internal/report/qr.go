package report

import (
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// QR pixel bounds: below the floor the symbol stops scanning reliably from
// paper, above the ceiling it bloats the PDF for no benefit.
const (
	qrDefaultSize = 128
	qrMinSize     = 64
	qrMaxSize     = 1024
)

// FrameHashQR renders a frame digest as a QR code PNG so a printed report
// can be checked against the manifest without retyping 64 hex characters.
func FrameHashQR(hash string, size int) ([]byte, error) {
	digest := strings.ToLower(strings.TrimSpace(hash))
	if digest == "" {
		return nil, errors.New("frame hash is empty")
	}
	for _, r := range digest {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return nil, fmt.Errorf("frame hash contains non-hex character %q", r)
		}
	}
	switch {
	case size <= 0:
		size = qrDefaultSize
	case size < qrMinSize:
		size = qrMinSize
	case size > qrMaxSize:
		size = qrMaxSize
	}
	return qrcode.Encode(digest, qrcode.Medium, size)
}
