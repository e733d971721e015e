package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// Reasons reported by Tail when scanning stops before the end of the buffer.
// None of them is an error for the caller; they describe the remainder.
var (
	// ErrTruncatedHeader means fewer than HeaderSize bytes remained.
	ErrTruncatedHeader = errors.New("picoparser: truncated frame header")

	// ErrIncompleteFrame means the declared length runs past the end of the capture.
	ErrIncompleteFrame = errors.New("picoparser: incomplete trailing frame")

	// ErrZeroLength means a zero payload length was found; it ends the stream.
	ErrZeroLength = errors.New("picoparser: zero-length frame")
)

// Tail describes the bytes left unindexed when scanning stopped.
type Tail struct {
	Offset    int64
	Remaining int64
	// Reason is nil when the frames tiled the capture exactly.
	Reason error
}

// Indexer scans a capture for frame boundaries. It is not safe for
// concurrent use; create one Indexer per scan.
type Indexer struct {
	r    io.ReaderAt
	size int64
	off  int64
	hdr  [HeaderSize]byte
	done bool
	err  error
	tail Tail
}

// NewIndexer scans buf[:size]. size is clamped to len(buf).
func NewIndexer(buf []byte, size int64) *Indexer {
	if size > int64(len(buf)) {
		size = int64(len(buf))
	}
	return NewReaderIndexer(bytes.NewReader(buf), size)
}

// NewReaderIndexer scans the first size bytes of r. Only the length
// prefixes are read. A read error ends the scan and is returned by Next.
func NewReaderIndexer(r io.ReaderAt, size int64) *Indexer {
	if size < 0 {
		size = 0
	}
	return &Indexer{r: r, size: size}
}

// Next returns the next frame slice, or io.EOF once scanning has stopped.
// If reading a length prefix fails, Next returns that error from then on.
func (x *Indexer) Next() (Slice, error) {
	if x.err != nil {
		return Slice{}, x.err
	}
	if x.done {
		return Slice{}, io.EOF
	}

	remaining := x.size - x.off
	if remaining < HeaderSize {
		var reason error
		if remaining > 0 {
			reason = ErrTruncatedHeader
		}
		return x.stop(reason)
	}

	if _, err := x.r.ReadAt(x.hdr[:], x.off); err != nil {
		if errors.Is(err, io.EOF) {
			return x.stop(ErrTruncatedHeader)
		}
		x.err = err
		x.stop(err)
		return Slice{}, err
	}
	payloadLen := int64(binary.LittleEndian.Uint32(x.hdr[:]))
	if payloadLen == 0 {
		return x.stop(ErrZeroLength)
	}
	length := HeaderSize + payloadLen
	if x.off+length > x.size {
		return x.stop(ErrIncompleteFrame)
	}

	s := Slice{Offset: x.off, Length: length}
	x.off += length
	return s, nil
}

// Tail reports where and why scanning stopped. It is meaningful once Next
// has returned io.EOF or a read error.
func (x *Indexer) Tail() Tail {
	return x.tail
}

func (x *Indexer) stop(reason error) (Slice, error) {
	x.done = true
	x.tail = Tail{Offset: x.off, Remaining: x.size - x.off, Reason: reason}
	return Slice{}, io.EOF
}
