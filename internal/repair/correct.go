package repair

import "fmt"

// CorrectShift realigns a frame buffer around a dropped byte. It returns a
// new buffer of the same length: bytes before offset are copied unchanged,
// the byte at offset becomes zero (standing in for the lost byte), and the
// original bytes from offset onward shift one position right, except the
// original final byte, which is discarded to keep the length constant.
//
// Dropping that last byte is deliberate: it reproduces the sensor vendor's
// repair procedure byte for byte, so corrected frames diff clean against
// frames repaired by the reference tooling. It does mean one byte at the far
// end of the frame is lost on every correction.
func CorrectShift(buf []byte, offset int) ([]byte, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("empty buffer")
	}
	if offset < 0 || offset >= len(buf) {
		return nil, fmt.Errorf("offset %d out of range [0,%d)", offset, len(buf))
	}
	out := make([]byte, len(buf))
	copy(out, buf[:offset])
	out[offset] = 0
	copy(out[offset+1:], buf[offset:len(buf)-1])
	return out, nil
}
