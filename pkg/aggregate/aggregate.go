// Package aggregate stacks per-frame records into whole-capture arrays.
package aggregate

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bft-labs/picoparser/pkg/csi"
	"github.com/bft-labs/picoparser/pkg/tensor"
)

// Source yields records in order and returns io.EOF when exhausted.
// *dispatch.Stream satisfies it.
type Source interface {
	NextRecord() (csi.FrameRecord, error)
}

// InconsistentShapeError is returned when a frame's tensor shape differs
// from the frames before it.
type InconsistentShapeError struct {
	Field string
	Frame int
	Want  []int
	Got   []int
}

func (e *InconsistentShapeError) Error() string {
	return fmt.Sprintf("aggregate %s: frame %d has shape %v, want %v", e.Field, e.Frame, e.Got, e.Want)
}

func (e *InconsistentShapeError) Unwrap() error { return tensor.ErrShapeMismatch }

// Result holds the stacked arrays. Fields that were not requested are nil.
// Tensors have the frame axis first.
type Result struct {
	Frames     int
	Timestamps []time.Time
	CSI        *tensor.Tensor[complex128]
	Magnitude  *tensor.Tensor[float64]
	Phase      *tensor.Tensor[float64]
}

// Collect drains src and stacks the fields selected by want.
func Collect(src Source, want csi.Fields) (*Result, error) {
	var (
		res   Result
		cs    tensor.Stacker[complex128]
		mag   tensor.Stacker[float64]
		phase tensor.Stacker[float64]
	)
	if want.Timestamp {
		res.Timestamps = []time.Time{}
	}

	for {
		rec, err := src.NextRecord()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if want.Timestamp {
			res.Timestamps = append(res.Timestamps, rec.Timestamp)
		}
		if want.CSI {
			if err := push(&cs, rec.CSI, "csi", res.Frames); err != nil {
				return nil, err
			}
		}
		if want.Magnitude {
			if err := push(&mag, rec.Magnitude, "magnitude", res.Frames); err != nil {
				return nil, err
			}
		}
		if want.Phase {
			if err := push(&phase, rec.Phase, "phase", res.Frames); err != nil {
				return nil, err
			}
		}
		res.Frames++
	}

	if want.CSI {
		t := cs.Tensor()
		res.CSI = &t
	}
	if want.Magnitude {
		t := mag.Tensor()
		res.Magnitude = &t
	}
	if want.Phase {
		t := phase.Tensor()
		res.Phase = &t
	}
	return &res, nil
}

func push[T tensor.Elem](s *tensor.Stacker[T], t tensor.Tensor[T], field string, frame int) error {
	if s.Len() > 0 && !tensor.ShapeEqual(s.Shape(), t.Shape) {
		return &InconsistentShapeError{Field: field, Frame: frame, Want: s.Shape(), Got: t.Shape}
	}
	return s.Push(t)
}

// Records returns a Source over an in-memory list.
func Records(list ...csi.FrameRecord) Source {
	return &recordList{list: list}
}

type recordList struct {
	list []csi.FrameRecord
	pos  int
}

func (r *recordList) NextRecord() (csi.FrameRecord, error) {
	if r.pos >= len(r.list) {
		return csi.FrameRecord{}, io.EOF
	}
	rec := r.list[r.pos]
	r.pos++
	return rec, nil
}
