package flat

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/bft-labs/picoparser/pkg/csi"
	"github.com/bft-labs/picoparser/pkg/frame"
)

var (
	// ErrCorrupt is returned for frames that do not follow the flat layout.
	ErrCorrupt = errors.New("flat: corrupt frame")

	// ErrUnknownFrame is returned when releasing a frame this decoder does
	// not own, including a second release of the same frame.
	ErrUnknownFrame = errors.New("flat: release of unknown frame")
)

// Decoder decodes flat frames. Decoded tensors come from an internal pool
// and are poisoned with NaN when released, so any use after release shows
// up in the data. The zero value is not usable; call NewDecoder.
type Decoder struct {
	mu   sync.Mutex
	live map[*csi.DecodedFrame]struct{}
	pool sync.Pool
}

var _ csi.Decoder = (*Decoder)(nil)

// NewDecoder returns a ready Decoder.
func NewDecoder() *Decoder {
	return &Decoder{live: make(map[*csi.DecodedFrame]struct{})}
}

// Outstanding returns the number of decoded frames not yet released.
func (d *Decoder) Outstanding() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// Decode implements csi.Decoder.
func (d *Decoder) Decode(buf []byte, applyInterpolation bool) (*csi.DecodedFrame, error) {
	if len(buf) < frame.HeaderSize+headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(buf))
	}
	if declared := binary.LittleEndian.Uint32(buf); int(declared) != len(buf)-frame.HeaderSize {
		return nil, fmt.Errorf("%w: declared %d payload bytes, have %d", ErrCorrupt, declared, len(buf)-frame.HeaderSize)
	}
	p := buf[frame.HeaderSize:]
	if string(p[:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, p[:4])
	}
	if p[4] != version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, p[4])
	}
	tx, rx, streams := int(p[6]), int(p[7]), int(p[8])
	tones := int(binary.LittleEndian.Uint16(p[10:12]))
	ts := int64(binary.LittleEndian.Uint64(p[12:20]))
	rowLen := tx * rx * streams
	if rowLen == 0 {
		return nil, fmt.Errorf("%w: antenna dims %dx%dx%d", ErrCorrupt, tx, rx, streams)
	}
	n := tones * rowLen
	if want := headerSize + 2*tones + 8*n; len(p) != want {
		return nil, fmt.Errorf("%w: payload %d bytes, want %d", ErrCorrupt, len(p), want)
	}

	labels := make([]int16, tones)
	body := p[headerSize:]
	for i := range labels {
		labels[i] = int16(binary.LittleEndian.Uint16(body[2*i:]))
	}
	body = body[2*tones:]
	values := make([]complex128, n)
	for i := range values {
		re := math.Float32frombits(binary.LittleEndian.Uint32(body[4*i:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(body[4*(n+i):]))
		values[i] = complex(float64(re), float64(im))
	}

	if applyInterpolation {
		labels, values = fillCenterGap(labels, values, rowLen)
		tones = len(labels)
		n = tones * rowLen
	}

	out := &csi.DecodedFrame{
		Timestamp:   ts,
		Tones:       tones,
		Tx:          tx,
		Rx:          rx,
		Streams:     streams,
		Real:        d.alloc(n),
		Imag:        d.alloc(n),
		Magnitude:   d.alloc(n),
		Phase:       d.alloc(n),
		Subcarriers: labels,
	}
	for i, c := range values {
		out.Real[i] = real(c)
		out.Imag[i] = imag(c)
		out.Magnitude[i] = cmplx.Abs(c)
		out.Phase[i] = cmplx.Phase(c)
	}

	d.mu.Lock()
	d.live[out] = struct{}{}
	d.mu.Unlock()
	return out, nil
}

// Release implements csi.Decoder.
func (d *Decoder) Release(f *csi.DecodedFrame) error {
	d.mu.Lock()
	_, ok := d.live[f]
	delete(d.live, f)
	d.mu.Unlock()
	if !ok {
		return ErrUnknownFrame
	}
	for _, s := range [][]float64{f.Real, f.Imag, f.Magnitude, f.Phase} {
		for i := range s {
			s[i] = math.NaN()
		}
		d.pool.Put(&s)
	}
	return nil
}

func (d *Decoder) alloc(n int) []float64 {
	if p, ok := d.pool.Get().(*[]float64); ok && cap(*p) >= n {
		return (*p)[:n]
	}
	return make([]float64, n)
}

// fillCenterGap inserts the -1, 0 and +1 rows between adjacent -2 and +2
// rows. Labels that already contain any of those slots are left alone.
func fillCenterGap(labels []int16, values []complex128, rowLen int) ([]int16, []complex128) {
	lo, hi := -1, -1
	for i, l := range labels {
		switch l {
		case -2:
			lo = i
		case 2:
			hi = i
		case -1, 0, 1:
			return labels, values
		}
	}
	if lo < 0 || hi != lo+1 {
		return labels, values
	}

	outLabels := make([]int16, 0, len(labels)+3)
	outLabels = append(outLabels, labels[:hi]...)
	outLabels = append(outLabels, -1, 0, 1)
	outLabels = append(outLabels, labels[hi:]...)

	outValues := make([]complex128, 0, len(values)+3*rowLen)
	outValues = append(outValues, values[:hi*rowLen]...)
	left := values[lo*rowLen : hi*rowLen]
	right := values[hi*rowLen : (hi+1)*rowLen]
	for k := 1; k <= 3; k++ {
		w := complex(float64(k)/4, 0)
		for j := 0; j < rowLen; j++ {
			outValues = append(outValues, left[j]+(right[j]-left[j])*w)
		}
	}
	outValues = append(outValues, values[hi*rowLen:]...)
	return outLabels, outValues
}
