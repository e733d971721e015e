package csi

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrMalformedFrame is returned when a frame cannot be decoded or the
	// decoded frame is internally inconsistent.
	ErrMalformedFrame = errors.New("picoparser: malformed frame")

	// ErrRelease is returned when the decoder fails to release a frame.
	// It indicates leaked decoder memory and must be surfaced.
	ErrRelease = errors.New("picoparser: release decoded frame")
)

// DecodedFrame is one frame as produced by a Decoder. Tensors are row-major
// over (Tones, Tx, Rx, Streams). The slices may alias decoder-owned memory
// and must not be retained after the frame is released.
type DecodedFrame struct {
	// Timestamp is the capture time in nanoseconds since the Unix epoch.
	Timestamp int64

	Tones   int
	Tx      int
	Rx      int
	Streams int

	Real      []float64
	Imag      []float64
	Magnitude []float64
	Phase     []float64

	// Subcarriers labels each tone row with its subcarrier index.
	Subcarriers []int16
}

// Shape returns (Tones, Tx, Rx, Streams).
func (d *DecodedFrame) Shape() []int {
	return []int{d.Tones, d.Tx, d.Rx, d.Streams}
}

func (d *DecodedFrame) validate() error {
	if d.Tones < 0 || d.Tx <= 0 || d.Rx <= 0 || d.Streams <= 0 {
		return fmt.Errorf("%w: invalid dimensions %v", ErrMalformedFrame, d.Shape())
	}
	n := d.Tones * d.Tx * d.Rx * d.Streams
	for _, t := range []struct {
		name string
		data []float64
	}{
		{"real", d.Real}, {"imag", d.Imag}, {"magnitude", d.Magnitude}, {"phase", d.Phase},
	} {
		if len(t.data) != n {
			return fmt.Errorf("%w: %s has %d elements, want %d", ErrMalformedFrame, t.name, len(t.data), n)
		}
	}
	if len(d.Subcarriers) != d.Tones {
		return fmt.Errorf("%w: %d subcarrier labels for %d tones", ErrMalformedFrame, len(d.Subcarriers), d.Tones)
	}
	return nil
}

// Decoder decodes one frame at a time. Implementations must be safe for
// concurrent use.
//
// Decode receives the full frame, length prefix included. The buffer is
// valid and unmodified only for the duration of the call. Every frame
// returned by Decode must be passed to Release exactly once.
type Decoder interface {
	Decode(frame []byte, applyInterpolation bool) (*DecodedFrame, error)
	Release(*DecodedFrame) error
}

// Handle owns one decoded frame until Release is called.
type Handle struct {
	dec   Decoder
	frame *DecodedFrame
	once  sync.Once
	err   error
}

// Acquire decodes frame and returns a handle owning the result. A decoder
// error and a nil frame are both reported as ErrMalformedFrame.
func Acquire(dec Decoder, frame []byte, applyInterpolation bool) (*Handle, error) {
	d, err := dec.Decode(frame, applyInterpolation)
	if err != nil {
		if d != nil {
			_ = dec.Release(d)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}
	if d == nil {
		return nil, fmt.Errorf("%w: decoder returned no frame", ErrMalformedFrame)
	}
	return &Handle{dec: dec, frame: d}, nil
}

// Frame returns the decoded frame, or nil once released.
func (h *Handle) Frame() *DecodedFrame {
	return h.frame
}

// Release hands the frame back to the decoder. Only the first call reaches
// the decoder; later calls return the first result.
func (h *Handle) Release() error {
	h.once.Do(func() {
		if err := h.dec.Release(h.frame); err != nil {
			h.err = fmt.Errorf("%w: %w", ErrRelease, err)
		}
		h.frame = nil
	})
	return h.err
}

// Extract decodes frame, assembles the requested fields, and releases the
// decoded frame. On a release failure the assembled record is still
// returned together with an error wrapping ErrRelease. When both assembly
// and release fail the error wraps both.
func Extract(dec Decoder, frame []byte, interpolate bool, fields Fields) (rec FrameRecord, err error) {
	h, err := Acquire(dec, frame, true)
	if err != nil {
		return FrameRecord{}, err
	}
	defer func() {
		if rerr := h.Release(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()
	return AssembleFields(h.Frame(), interpolate, fields)
}
