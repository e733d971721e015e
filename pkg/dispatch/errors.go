package dispatch

import (
	"errors"
	"fmt"

	"github.com/bft-labs/picoparser/pkg/frame"
)

// ErrClosed is returned by DecodeAll after Close.
var ErrClosed = errors.New("picoparser: dispatcher closed")

// FrameDecodeError reports a frame that could not be decoded or assembled.
type FrameDecodeError struct {
	Slice frame.Slice
	Err   error
}

func (e *FrameDecodeError) Error() string {
	return fmt.Sprintf("decode frame %v: %v", e.Slice, e.Err)
}

func (e *FrameDecodeError) Unwrap() error { return e.Err }

// ReleaseError reports that the decoder failed to release a frame. The
// frame's record is still valid; the decoder likely leaked memory.
type ReleaseError struct {
	Slice frame.Slice
	Err   error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("release frame %v: %v", e.Slice, e.Err)
}

func (e *ReleaseError) Unwrap() error { return e.Err }

// Report summarizes a finished stream.
type Report struct {
	// Frames is the number of slices processed.
	Frames int
	// Decoded is the number of frames that produced a record.
	Decoded int
	Failed  []*FrameDecodeError
	Leaked  []*ReleaseError
}

// FailedSlices returns the byte ranges of frames that produced no record.
func (r Report) FailedSlices() []frame.Slice {
	out := make([]frame.Slice, len(r.Failed))
	for i, f := range r.Failed {
		out[i] = f.Slice
	}
	return out
}

// Err returns the failures as a single error, or nil when every frame decoded
// and released cleanly.
func (r Report) Err() error {
	errs := make([]error, 0, len(r.Failed)+len(r.Leaked))
	for _, f := range r.Failed {
		errs = append(errs, f)
	}
	for _, l := range r.Leaked {
		errs = append(errs, l)
	}
	return errors.Join(errs...)
}
