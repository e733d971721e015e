package dispatch

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sourcegraph/conc/stream"

	"github.com/bft-labs/picoparser/pkg/csi"
	"github.com/bft-labs/picoparser/pkg/frame"
)

// Result is the outcome for one slice.
type Result struct {
	Slice  frame.Slice
	Record csi.FrameRecord
	// Err is nil, a *FrameDecodeError (Record is empty), a *ReleaseError
	// (Record is valid), or both joined when the frame failed and its
	// release failed too.
	Err error
}

// OK reports whether Record holds decoded data.
func (r Result) OK() bool {
	var dec *FrameDecodeError
	return r.Err == nil || !errors.As(r.Err, &dec)
}

// Stream yields decode results in input order. A Stream has a single
// consumer; Next, NextRecord and Report must not be called concurrently.
type Stream struct {
	d        *Dispatcher
	out      chan Result
	done     chan struct{}
	finished chan struct{}
	stopOnce sync.Once

	mu     sync.Mutex
	report Report
	srcErr error
	// cut is set when results were dropped because the stream stopped.
	cut bool
}

func newStream(d *Dispatcher) *Stream {
	return &Stream{
		d:        d,
		out:      make(chan Result),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// run submits every slice to an ordered conc stream. Callbacks execute in
// submission order, which is what restores input order on out.
func (st *Stream) run(src frame.Source, opts Options) {
	defer close(st.finished)
	defer close(st.out)

	s := stream.New().WithMaxGoroutines(st.d.workers)
	for {
		if st.stopped() {
			st.markCut()
			break
		}
		sl, err := src.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				st.mu.Lock()
				st.srcErr = err
				st.mu.Unlock()
			}
			break
		}
		s.Go(func() stream.Callback {
			res := st.d.decode(sl, opts)
			return func() {
				select {
				case st.out <- res:
				case <-st.done:
					st.markCut()
				}
			}
		})
	}
	s.Wait()
}

// Next returns the next result in input order. It returns io.EOF after the
// last slice, or the source's error if the source failed. If the stream
// was closed, directly or through its Dispatcher, before every result was
// delivered, Next returns an error wrapping ErrClosed instead of io.EOF.
func (st *Stream) Next() (Result, error) {
	res, ok := <-st.out
	if !ok {
		st.mu.Lock()
		defer st.mu.Unlock()
		switch {
		case st.srcErr != nil:
			return Result{}, st.srcErr
		case st.cut:
			return Result{}, fmt.Errorf("%w: stream stopped after %d delivered frames", ErrClosed, st.report.Frames)
		}
		return Result{}, io.EOF
	}

	st.mu.Lock()
	st.report.Frames++
	var (
		dec *FrameDecodeError
		rel *ReleaseError
	)
	if errors.As(res.Err, &dec) {
		st.report.Failed = append(st.report.Failed, dec)
	} else {
		st.report.Decoded++
	}
	if errors.As(res.Err, &rel) {
		st.report.Leaked = append(st.report.Leaked, rel)
	}
	st.mu.Unlock()
	return res, nil
}

// NextRecord returns the next decoded record, skipping frames that failed.
// Failures remain visible in Report.
func (st *Stream) NextRecord() (csi.FrameRecord, error) {
	for {
		res, err := st.Next()
		if err != nil {
			return csi.FrameRecord{}, err
		}
		if res.OK() {
			return res.Record, nil
		}
	}
}

// Report summarizes the results consumed so far.
func (st *Stream) Report() Report {
	st.mu.Lock()
	defer st.mu.Unlock()
	r := st.report
	r.Failed = append([]*FrameDecodeError(nil), r.Failed...)
	r.Leaked = append([]*ReleaseError(nil), r.Leaked...)
	return r
}

// Close stops submitting slices and waits for running tasks to finish.
// Results not yet consumed are discarded, and a later Next reports
// ErrClosed if any were.
func (st *Stream) Close() error {
	st.stop()
	<-st.finished
	return nil
}

func (st *Stream) stop() {
	st.stopOnce.Do(func() { close(st.done) })
}

func (st *Stream) markCut() {
	st.mu.Lock()
	st.cut = true
	st.mu.Unlock()
}

func (st *Stream) stopped() bool {
	select {
	case <-st.done:
		return true
	default:
		return false
	}
}
