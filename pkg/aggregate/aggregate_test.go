package aggregate

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/bft-labs/picoparser/pkg/csi"
	"github.com/bft-labs/picoparser/pkg/tensor"
)

func record(ts int64, tones int, fill float64) csi.FrameRecord {
	shape := []int{tones, 1, 2, 1}
	rec := csi.FrameRecord{
		Timestamp:   time.Unix(0, ts).UTC(),
		CSI:         tensor.New[complex128](shape...),
		Magnitude:   tensor.New[float64](shape...),
		Phase:       tensor.New[float64](shape...),
		Subcarriers: make([]int16, tones),
	}
	for i := range rec.Magnitude.Data {
		rec.CSI.Data[i] = complex(fill, float64(i))
		rec.Magnitude.Data[i] = fill
		rec.Phase.Data[i] = -fill
	}
	return rec
}

func TestCollect_AllFields(t *testing.T) {
	recs := []csi.FrameRecord{record(10, 3, 1), record(20, 3, 2), record(30, 3, 3)}
	res, err := Collect(Records(recs...), csi.AllFields)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if res.Frames != 3 {
		t.Fatalf("Frames = %d, want 3", res.Frames)
	}
	want := []int{3, 3, 1, 2, 1}
	if !reflect.DeepEqual(res.CSI.Shape, want) || !reflect.DeepEqual(res.Magnitude.Shape, want) || !reflect.DeepEqual(res.Phase.Shape, want) {
		t.Fatalf("shapes = %v %v %v, want %v", res.CSI.Shape, res.Magnitude.Shape, res.Phase.Shape, want)
	}
	for i, ts := range res.Timestamps {
		if ts.UnixNano() != int64(10*(i+1)) {
			t.Errorf("timestamp %d = %v", i, ts)
		}
	}
	// Frame order is preserved along the leading axis.
	if got := res.Magnitude.At(2, 0, 0, 0, 0); got != 3 {
		t.Errorf("magnitude[2,...] = %v, want 3", got)
	}
	if got := res.CSI.At(1, 2, 0, 1, 0); got != complex(2, 5) {
		t.Errorf("csi[1,2,0,1,0] = %v, want (2+5i)", got)
	}
}

func TestCollect_OnlyRequestedFields(t *testing.T) {
	res, err := Collect(Records(record(1, 2, 1), record(2, 2, 1)), csi.Fields{Magnitude: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.CSI != nil || res.Phase != nil || res.Timestamps != nil {
		t.Fatalf("unrequested fields allocated: %+v", res)
	}
	if res.Magnitude == nil || res.Magnitude.Rows() != 2 {
		t.Fatalf("magnitude = %+v", res.Magnitude)
	}
}

func TestCollect_InconsistentShape(t *testing.T) {
	src := Records(record(1, 4, 1), record(2, 4, 1), record(3, 2, 1))
	_, err := Collect(src, csi.Fields{Phase: true})

	var ise *InconsistentShapeError
	if !errors.As(err, &ise) {
		t.Fatalf("Collect() error = %v, want *InconsistentShapeError", err)
	}
	if ise.Field != "phase" || ise.Frame != 2 {
		t.Errorf("error = %+v, want field phase frame 2", ise)
	}
	if !reflect.DeepEqual(ise.Want, []int{4, 1, 2, 1}) || !reflect.DeepEqual(ise.Got, []int{2, 1, 2, 1}) {
		t.Errorf("shapes want=%v got=%v", ise.Want, ise.Got)
	}
	if !errors.Is(err, tensor.ErrShapeMismatch) {
		t.Error("InconsistentShapeError does not unwrap to ErrShapeMismatch")
	}
}

func TestCollect_ShapeIgnoredForUnrequestedField(t *testing.T) {
	// Heterogeneous tones only matter for the fields being stacked.
	res, err := Collect(Records(record(1, 4, 1), record(2, 2, 1)), csi.Fields{Timestamp: true})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(res.Timestamps) != 2 {
		t.Fatalf("timestamps = %d", len(res.Timestamps))
	}
}

func TestCollect_Empty(t *testing.T) {
	res, err := Collect(Records(), csi.AllFields)
	if err != nil {
		t.Fatal(err)
	}
	if res.Frames != 0 || len(res.Timestamps) != 0 || res.Timestamps == nil {
		t.Fatalf("result = %+v", res)
	}
	if !reflect.DeepEqual(res.CSI.Shape, []int{0}) {
		t.Fatalf("csi shape = %v, want [0]", res.CSI.Shape)
	}
}

type brokenSource struct{}

func (brokenSource) NextRecord() (csi.FrameRecord, error) {
	return csi.FrameRecord{}, errors.New("broken")
}

func TestCollect_SourceError(t *testing.T) {
	if _, err := Collect(brokenSource{}, csi.AllFields); err == nil {
		t.Fatal("Collect() error = nil, want source error")
	}
}
