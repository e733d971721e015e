package tensor

import "fmt"

// Stacker builds a tensor by stacking equally shaped tensors along a new
// leading axis. The zero value is ready to use.
type Stacker[T Elem] struct {
	shape []int
	data  []T
	n     int
}

// Push appends t as the next entry of the leading axis. Every pushed tensor
// must have the shape of the first one.
func (s *Stacker[T]) Push(t Tensor[T]) error {
	if s.n == 0 {
		s.shape = append([]int(nil), t.Shape...)
	} else if !ShapeEqual(s.shape, t.Shape) {
		return fmt.Errorf("%w: entry %d has shape %v, want %v", ErrShapeMismatch, s.n, t.Shape, s.shape)
	}
	s.data = append(s.data, t.Data...)
	s.n++
	return nil
}

// Shape returns the shape shared by the pushed tensors, or nil before the first push.
func (s *Stacker[T]) Shape() []int { return s.shape }

// Len returns the number of pushed tensors.
func (s *Stacker[T]) Len() int { return s.n }

// Tensor returns the stacked result of shape (Len(), Shape()...). With no
// pushes the result has shape (0).
func (s *Stacker[T]) Tensor() Tensor[T] {
	shape := append([]int{s.n}, s.shape...)
	return Tensor[T]{Shape: shape, Data: s.data}
}
