// Package tensor provides dense row-major tensors for CSI data.
//
// The first axis is the "row" axis: subcarrier tones for a single frame,
// frames for a stacked whole-file result.
package tensor

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned when tensors of different shapes are combined.
var ErrShapeMismatch = errors.New("picoparser: tensor shape mismatch")

// Elem is the set of element types a Tensor may hold.
type Elem interface {
	~float64 | ~complex128
}

// Tensor is a dense row-major array. len(Data) equals the product of Shape.
type Tensor[T Elem] struct {
	Shape []int
	Data  []T
}

// New allocates a zeroed tensor of the given shape.
func New[T Elem](shape ...int) Tensor[T] {
	return Tensor[T]{Shape: append([]int(nil), shape...), Data: make([]T, Size(shape))}
}

// FromData wraps data without copying. It fails if len(data) does not match shape.
func FromData[T Elem](data []T, shape ...int) (Tensor[T], error) {
	if n := Size(shape); n != len(data) {
		return Tensor[T]{}, fmt.Errorf("%w: %d elements for shape %v", ErrShapeMismatch, len(data), shape)
	}
	return Tensor[T]{Shape: append([]int(nil), shape...), Data: data}, nil
}

// Size returns the number of elements of a tensor with the given shape.
func Size(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Len returns the number of elements.
func (t Tensor[T]) Len() int { return len(t.Data) }

// Rows returns the extent of the first axis.
func (t Tensor[T]) Rows() int {
	if len(t.Shape) == 0 {
		return 0
	}
	return t.Shape[0]
}

// RowLen returns the number of elements in one row.
func (t Tensor[T]) RowLen() int {
	if len(t.Shape) == 0 {
		return 0
	}
	return Size(t.Shape[1:])
}

// Row returns row i as a view into Data.
func (t Tensor[T]) Row(i int) []T {
	n := t.RowLen()
	return t.Data[i*n : (i+1)*n]
}

// At returns the element at the given index. It panics on out-of-range
// indices like a slice access would.
func (t Tensor[T]) At(idx ...int) T {
	if len(idx) != len(t.Shape) {
		panic(fmt.Sprintf("tensor: %d indices for rank %d", len(idx), len(t.Shape)))
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= t.Shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of range for axis %d of size %d", v, i, t.Shape[i]))
		}
		off = off*t.Shape[i] + v
	}
	return t.Data[off]
}

// SelectRows returns a new tensor holding copies of the given rows, in order.
func (t Tensor[T]) SelectRows(rows []int) Tensor[T] {
	n := t.RowLen()
	out := Tensor[T]{Shape: append([]int(nil), t.Shape...), Data: make([]T, 0, len(rows)*n)}
	out.Shape[0] = len(rows)
	for _, r := range rows {
		out.Data = append(out.Data, t.Row(r)...)
	}
	return out
}

// Clone returns a deep copy.
func (t Tensor[T]) Clone() Tensor[T] {
	return Tensor[T]{
		Shape: append([]int(nil), t.Shape...),
		Data:  append([]T(nil), t.Data...),
	}
}

// ShapeEqual reports whether two shapes are identical.
func ShapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
