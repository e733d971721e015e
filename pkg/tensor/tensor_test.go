package tensor

import (
	"errors"
	"reflect"
	"testing"
)

func seq(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func TestFromData(t *testing.T) {
	if _, err := FromData(seq(5), 2, 3); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("FromData() error = %v, want ErrShapeMismatch", err)
	}
	x, err := FromData(seq(24), 4, 3, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if x.Rows() != 4 || x.RowLen() != 6 {
		t.Errorf("Rows, RowLen = %d, %d; want 4, 6", x.Rows(), x.RowLen())
	}
	if got := x.At(2, 1, 1, 0); got != 15 {
		t.Errorf("At(2,1,1,0) = %v, want 15", got)
	}
}

func TestSelectRows(t *testing.T) {
	x, _ := FromData(seq(12), 4, 3)
	y := x.SelectRows([]int{0, 3})

	if !reflect.DeepEqual(y.Shape, []int{2, 3}) {
		t.Fatalf("shape = %v, want [2 3]", y.Shape)
	}
	if !reflect.DeepEqual(y.Data, []float64{0, 1, 2, 9, 10, 11}) {
		t.Fatalf("data = %v", y.Data)
	}

	// The selection must not alias the source.
	x.Data[0] = 99
	if y.Data[0] != 0 {
		t.Fatal("SelectRows aliases source data")
	}
	if x.Shape[0] != 4 {
		t.Fatal("SelectRows modified source shape")
	}
}

func TestClone(t *testing.T) {
	x := New[complex128](2, 2)
	x.Data[3] = 1 + 2i
	y := x.Clone()
	x.Data[3] = 0
	if y.Data[3] != 1+2i {
		t.Fatal("Clone aliases source data")
	}
}

func TestStacker(t *testing.T) {
	var s Stacker[float64]
	a, _ := FromData([]float64{1, 2, 3, 4}, 2, 2)
	b, _ := FromData([]float64{5, 6, 7, 8}, 2, 2)
	if err := s.Push(a); err != nil {
		t.Fatal(err)
	}
	if err := s.Push(b); err != nil {
		t.Fatal(err)
	}

	bad, _ := FromData([]float64{1, 2}, 1, 2)
	if err := s.Push(bad); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("Push(mismatched) error = %v, want ErrShapeMismatch", err)
	}

	out := s.Tensor()
	if !reflect.DeepEqual(out.Shape, []int{2, 2, 2}) {
		t.Fatalf("shape = %v, want [2 2 2]", out.Shape)
	}
	if out.At(1, 0, 1) != 6 {
		t.Errorf("At(1,0,1) = %v, want 6", out.At(1, 0, 1))
	}
}

func TestStacker_Empty(t *testing.T) {
	var s Stacker[complex128]
	out := s.Tensor()
	if !reflect.DeepEqual(out.Shape, []int{0}) || out.Len() != 0 {
		t.Fatalf("empty stack = %+v, want shape [0]", out)
	}
}
