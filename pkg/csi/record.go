package csi

import (
	"time"

	"github.com/bft-labs/picoparser/pkg/tensor"
)

// Fields selects which parts of a record are materialized.
type Fields struct {
	Timestamp bool
	CSI       bool
	Magnitude bool
	Phase     bool
}

// AllFields selects every field.
var AllFields = Fields{Timestamp: true, CSI: true, Magnitude: true, Phase: true}

// Any reports whether at least one field is selected.
func (f Fields) Any() bool {
	return f.Timestamp || f.CSI || f.Magnitude || f.Phase
}

// FrameRecord is one assembled frame. Tensors share the shape
// (tones', tx, rx, streams) and own their memory. Fields that were not
// requested are left as zero tensors.
type FrameRecord struct {
	Timestamp time.Time
	CSI       tensor.Tensor[complex128]
	Magnitude tensor.Tensor[float64]
	Phase     tensor.Tensor[float64]

	// Subcarriers holds the labels of the rows that were kept.
	Subcarriers []int16
}

// Tones returns the number of subcarrier rows in the record.
func (r FrameRecord) Tones() int {
	return len(r.Subcarriers)
}
