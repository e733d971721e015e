// Package csi turns decoded CSI frames into caller-owned numeric records.
//
// Decoding itself is delegated to a [Decoder], typically a binding to a
// vendor library. Decoded frames are owned by the decoder: their tensors may
// live in memory the Go runtime does not manage and are invalid after
// release. [Extract] wraps one decode in a [Handle], copies every tensor into
// a [FrameRecord], and releases the handle exactly once, including when
// assembly fails.
//
// Frames are decoded with interpolation applied. When a caller does not want
// the interpolated tones, rows whose subcarrier label belongs to
// [InterpolationSubcarriers] are removed during assembly.
package csi
