package dispatch

import (
	"errors"
	"runtime"
	"sync"

	"github.com/bft-labs/picoparser/pkg/csi"
	"github.com/bft-labs/picoparser/pkg/frame"
	"github.com/bft-labs/picoparser/pkg/log"
)

// Viewer provides zero-copy access to frame bytes.
type Viewer interface {
	Region(off, n int64) ([]byte, error)
}

// Options control a single DecodeAll call.
type Options struct {
	// Interpolate keeps the decoder's interpolation rows.
	Interpolate bool
	// Fields selects what each record carries. The zero value selects all.
	Fields csi.Fields
}

// Dispatcher runs decode tasks on a fixed number of workers.
type Dispatcher struct {
	dec     csi.Decoder
	view    Viewer
	workers int
	sem     chan struct{}
	logger  log.Logger

	mu      sync.Mutex
	closed  bool
	streams map[*Stream]struct{}
	wg      sync.WaitGroup
}

// ClampWorkers limits n to [1, runtime.NumCPU()].
func ClampWorkers(n int) int {
	return max(1, min(n, runtime.NumCPU()))
}

// New creates a Dispatcher. workers is clamped with ClampWorkers. A nil
// logger discards output.
func New(dec csi.Decoder, view Viewer, workers int, logger log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	workers = ClampWorkers(workers)
	return &Dispatcher{
		dec:     dec,
		view:    view,
		workers: workers,
		sem:     make(chan struct{}, workers),
		logger:  logger,
		streams: make(map[*Stream]struct{}),
	}
}

// Workers returns the effective worker count.
func (d *Dispatcher) Workers() int {
	return d.workers
}

// DecodeAll starts decoding the slices from src. Results are read from the
// returned Stream in the order src produced the slices.
func (d *Dispatcher) DecodeAll(src frame.Source, opts Options) (*Stream, error) {
	if !opts.Fields.Any() {
		opts.Fields = csi.AllFields
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}

	st := newStream(d)
	d.streams[st] = struct{}{}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.forget(st)
		st.run(src, opts)
	}()
	return st, nil
}

// Close stops every open stream and waits for their running tasks.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	for st := range d.streams {
		st.stop()
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) forget(st *Stream) {
	d.mu.Lock()
	delete(d.streams, st)
	d.mu.Unlock()
}

// decode runs one task. It holds a worker slot for the decode itself.
func (d *Dispatcher) decode(s frame.Slice, opts Options) Result {
	view, err := d.view.Region(s.Offset, s.Length)
	if err != nil {
		return Result{Slice: s, Err: &FrameDecodeError{Slice: s, Err: err}}
	}

	d.sem <- struct{}{}
	rec, err := csi.Extract(d.dec, view, opts.Interpolate, opts.Fields)
	<-d.sem

	res := Result{Slice: s, Record: rec}
	if err == nil {
		return res
	}

	var rel *ReleaseError
	if errors.Is(err, csi.ErrRelease) {
		d.logger.Error("decoded frame not released", log.Range(s.Offset, s.Length), log.Err(err))
		rel = &ReleaseError{Slice: s, Err: err}
	}
	// csi.Extract only reports a bare release failure when the record was
	// assembled; anything else means the frame produced no record.
	if rel != nil && !errors.Is(err, csi.ErrMalformedFrame) {
		res.Err = rel
		return res
	}

	d.logger.Warn("frame decode failed", log.Range(s.Offset, s.Length), log.Err(err))
	res.Record = csi.FrameRecord{}
	dec := &FrameDecodeError{Slice: s, Err: err}
	if rel != nil {
		res.Err = errors.Join(dec, rel)
	} else {
		res.Err = dec
	}
	return res
}
