package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HeaderSize is the size of the little-endian payload length prefix.
const HeaderSize = 4

// Slice identifies one frame in the capture, length prefix included.
type Slice struct {
	Offset int64
	Length int64
}

// End returns the offset one past the last byte of the frame.
func (s Slice) End() int64 { return s.Offset + s.Length }

// PayloadLen returns the number of payload bytes following the prefix.
func (s Slice) PayloadLen() int64 { return s.Length - HeaderSize }

func (s Slice) String() string {
	return fmt.Sprintf("[%d,%d)", s.Offset, s.End())
}

// Source yields frame slices in order. Next returns io.EOF when exhausted.
type Source interface {
	Next() (Slice, error)
}

// Slices returns a Source over an explicit list of slices.
func Slices(list ...Slice) Source {
	return &listSource{list: list}
}

type listSource struct {
	list []Slice
	pos  int
}

func (l *listSource) Next() (Slice, error) {
	if l.pos >= len(l.list) {
		return Slice{}, io.EOF
	}
	s := l.list[l.pos]
	l.pos++
	return s, nil
}

// Collect drains src into a slice.
func Collect(src Source) ([]Slice, error) {
	var out []Slice
	for {
		s, err := src.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
}

// AppendFrame appends payload to dst with its length prefix.
func AppendFrame(dst, payload []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(payload)))
	return append(dst, payload...)
}
