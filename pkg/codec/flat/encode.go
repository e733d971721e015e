package flat

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/bft-labs/picoparser/pkg/frame"
)

const (
	magic      = "PCSI"
	version    = 1
	headerSize = 20
)

// ErrInvalidFrame is returned by Encode for inconsistent input.
var ErrInvalidFrame = errors.New("flat: invalid frame")

// Frame is the input to Encode. CSI is row-major over (tones, tx, rx, streams).
type Frame struct {
	Timestamp   int64
	Tx          int
	Rx          int
	Streams     int
	Subcarriers []int16
	CSI         []complex128
}

// Encode returns the payload for f, without the length prefix.
func Encode(f Frame) ([]byte, error) {
	tones := len(f.Subcarriers)
	if f.Tx <= 0 || f.Rx <= 0 || f.Streams <= 0 || f.Tx > 255 || f.Rx > 255 || f.Streams > 255 {
		return nil, fmt.Errorf("%w: antenna dims %dx%dx%d", ErrInvalidFrame, f.Tx, f.Rx, f.Streams)
	}
	if tones > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d tones", ErrInvalidFrame, tones)
	}
	n := tones * f.Tx * f.Rx * f.Streams
	if len(f.CSI) != n {
		return nil, fmt.Errorf("%w: %d csi values, want %d", ErrInvalidFrame, len(f.CSI), n)
	}

	buf := make([]byte, 0, headerSize+2*tones+8*n)
	buf = append(buf, magic...)
	buf = append(buf, version, 0, byte(f.Tx), byte(f.Rx), byte(f.Streams), 0)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(tones))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(f.Timestamp))
	for _, s := range f.Subcarriers {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(s))
	}
	for _, c := range f.CSI {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(real(c))))
	}
	for _, c := range f.CSI {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(imag(c))))
	}
	return buf, nil
}

// AppendFrame appends f to dst as a complete length-prefixed frame.
func AppendFrame(dst []byte, f Frame) ([]byte, error) {
	payload, err := Encode(f)
	if err != nil {
		return dst, err
	}
	return frame.AppendFrame(dst, payload), nil
}
