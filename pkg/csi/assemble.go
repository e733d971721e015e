package csi

import (
	"time"

	"github.com/bft-labs/picoparser/pkg/tensor"
)

// InterpolationSubcarriers are the subcarrier labels the decoder inserts
// when interpolating across missing tones (guard, DC and pilot slots).
// They carry no measurement.
var InterpolationSubcarriers = [...]int16{-1, 0, 1}

func isInterpolated(label int16) bool {
	for _, s := range InterpolationSubcarriers {
		if label == s {
			return true
		}
	}
	return false
}

// measuredRows returns the row positions whose label is not an
// interpolation slot, in ascending order.
func measuredRows(labels []int16) []int {
	rows := make([]int, 0, len(labels))
	for i, l := range labels {
		if !isInterpolated(l) {
			rows = append(rows, i)
		}
	}
	return rows
}

// Assemble converts a decoded frame into a record holding every field.
func Assemble(d *DecodedFrame, interpolate bool) (FrameRecord, error) {
	return AssembleFields(d, interpolate, AllFields)
}

// AssembleFields converts a decoded frame into a record holding the selected
// fields. All data is copied; the record never aliases d. When interpolate
// is false the interpolation rows are dropped.
func AssembleFields(d *DecodedFrame, interpolate bool, fields Fields) (FrameRecord, error) {
	if err := d.validate(); err != nil {
		return FrameRecord{}, err
	}

	var rows []int
	if interpolate {
		rows = make([]int, d.Tones)
		for i := range rows {
			rows[i] = i
		}
	} else {
		rows = measuredRows(d.Subcarriers)
	}

	rec := FrameRecord{Subcarriers: make([]int16, len(rows))}
	for i, r := range rows {
		rec.Subcarriers[i] = d.Subcarriers[r]
	}

	shape := []int{len(rows), d.Tx, d.Rx, d.Streams}
	rowLen := d.Tx * d.Rx * d.Streams

	if fields.Timestamp {
		rec.Timestamp = time.Unix(0, d.Timestamp).UTC()
	}
	if fields.CSI {
		rec.CSI = tensor.New[complex128](shape...)
		out := rec.CSI.Data
		for i, r := range rows {
			re := d.Real[r*rowLen : (r+1)*rowLen]
			im := d.Imag[r*rowLen : (r+1)*rowLen]
			dst := out[i*rowLen : (i+1)*rowLen]
			for j := range dst {
				dst[j] = complex(re[j], im[j])
			}
		}
	}
	if fields.Magnitude {
		rec.Magnitude = copyRows(d.Magnitude, rows, rowLen, shape)
	}
	if fields.Phase {
		rec.Phase = copyRows(d.Phase, rows, rowLen, shape)
	}
	return rec, nil
}

func copyRows(src []float64, rows []int, rowLen int, shape []int) tensor.Tensor[float64] {
	t := tensor.New[float64](shape...)
	for i, r := range rows {
		copy(t.Data[i*rowLen:(i+1)*rowLen], src[r*rowLen:(r+1)*rowLen])
	}
	return t
}

// RemoveInterpolated drops the interpolation rows from a record assembled
// with interpolation. Tensors that are not populated stay empty.
func RemoveInterpolated(rec FrameRecord) FrameRecord {
	rows := measuredRows(rec.Subcarriers)
	out := FrameRecord{
		Timestamp:   rec.Timestamp,
		Subcarriers: make([]int16, len(rows)),
	}
	for i, r := range rows {
		out.Subcarriers[i] = rec.Subcarriers[r]
	}
	if rec.CSI.Shape != nil {
		out.CSI = rec.CSI.SelectRows(rows)
	}
	if rec.Magnitude.Shape != nil {
		out.Magnitude = rec.Magnitude.SelectRows(rows)
	}
	if rec.Phase.Shape != nil {
		out.Phase = rec.Phase.SelectRows(rows)
	}
	return out
}
