package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/picoparser/pkg/aggregate"
	"github.com/bft-labs/picoparser/pkg/codec/flat"
	"github.com/bft-labs/picoparser/pkg/csi"
	"github.com/bft-labs/picoparser/pkg/dispatch"
	"github.com/bft-labs/picoparser/pkg/frame"
	"github.com/bft-labs/picoparser/pkg/log"
	"github.com/bft-labs/picoparser/pkg/mmapfile"
)

// ErrClosed is returned by operations on a closed Session.
var ErrClosed = errors.New("picoparser: session closed")

// Session is an open capture file.
type Session struct {
	file     *mmapfile.File
	dispatch *dispatch.Dispatcher
	watcher  *changeWatcher
	logger   log.Logger

	mu     sync.Mutex
	closed bool
}

// Open maps the capture at path and prepares the worker pool. On failure
// nothing is left open.
func Open(path string, opts ...Option) (*Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.decoder == nil {
		o.decoder = flat.NewDecoder()
	}

	file, err := mmapfile.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}

	logger := o.logger.With(log.String("capture", path))
	s := &Session{
		file:     file,
		dispatch: dispatch.New(o.decoder, file, o.workers, logger),
		logger:   logger,
	}

	if o.watch {
		w, err := newChangeWatcher(path, logger)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("watch capture: %w", err)
		}
		s.watcher = w
	}

	logger.Info("capture opened",
		log.Int64("bytes", file.Len()),
		log.Int("workers", s.dispatch.Workers()))
	return s, nil
}

// Workers returns the effective number of concurrent decodes.
func (s *Session) Workers() int {
	return s.dispatch.Workers()
}

// Size returns the current size of the capture, read from the file system
// on every call and clamped to the mapping.
func (s *Session) Size() (int64, error) {
	return s.file.Size()
}

// Modified reports whether a change to the capture file was observed. It
// is always false without WithWatch.
func (s *Session) Modified() bool {
	return s.watcher != nil && s.watcher.Modified()
}

// Frames returns a fresh indexer over the capture. Each call rescans from
// the first byte. The indexer reads through the session: after Close its
// Next returns mmapfile.ErrClosed.
func (s *Session) Frames() (*frame.Indexer, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	size, err := s.file.Size()
	if err != nil {
		return nil, err
	}
	return frame.NewReaderIndexer(s.file, size), nil
}

// Frame returns the raw bytes of a frame, length prefix included. The bytes
// alias the mapping and are valid until Close.
func (s *Session) Frame(sl frame.Slice) ([]byte, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.file.Region(sl.Offset, sl.Length)
}

// Records decodes every frame of the capture lazily, in file order.
func (s *Session) Records(interpolate bool) (*dispatch.Stream, error) {
	idx, err := s.Frames()
	if err != nil {
		return nil, err
	}
	return s.decode(idx, dispatch.Options{Interpolate: interpolate})
}

// RecordsFor decodes the given slices lazily, in the order src yields them.
func (s *Session) RecordsFor(src frame.Source, interpolate bool) (*dispatch.Stream, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.decode(src, dispatch.Options{Interpolate: interpolate})
}

// AggregateConfig selects what Aggregate materializes.
type AggregateConfig struct {
	Fields      csi.Fields
	Interpolate bool
}

// Result is a whole-capture aggregation together with what was skipped.
type Result struct {
	*aggregate.Result
	// Report lists frames that failed to decode or release.
	Report dispatch.Report
	// Tail describes the bytes after the last indexed frame.
	Tail frame.Tail
}

// Aggregate decodes the whole capture and stacks the selected fields, all
// of them when none are selected.
// Frames that fail to decode are left out and listed in Result.Report.
func (s *Session) Aggregate(cfg AggregateConfig) (*Result, error) {
	if !cfg.Fields.Any() {
		cfg.Fields = csi.AllFields
	}
	idx, err := s.Frames()
	if err != nil {
		return nil, err
	}
	st, err := s.decode(idx, dispatch.Options{Interpolate: cfg.Interpolate, Fields: cfg.Fields})
	if err != nil {
		return nil, err
	}
	defer st.Close()

	start := time.Now()
	agg, err := aggregate.Collect(st, cfg.Fields)
	if err != nil {
		return nil, err
	}
	res := &Result{Result: agg, Report: st.Report(), Tail: idx.Tail()}
	s.logger.Debug("capture aggregated", log.Int("frames", res.Frames), log.Duration("elapsed", time.Since(start)))
	if n := len(res.Report.Failed); n > 0 {
		s.logger.Warn("frames skipped", log.Int("failed", n), log.Int("decoded", res.Report.Decoded))
	}
	s.logTail(res.Tail)
	return res, nil
}

// Close waits for outstanding decodes, then releases the mapping, the file
// and the watcher. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.dispatch.Close()

	var errs []error
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close watch: %w", err))
		}
	}
	if err := s.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close capture: %w", err))
	}
	s.logger.Debug("capture closed")
	return errors.Join(errs...)
}

func (s *Session) decode(src frame.Source, opts dispatch.Options) (*dispatch.Stream, error) {
	st, err := s.dispatch.DecodeAll(src, opts)
	if errors.Is(err, dispatch.ErrClosed) {
		return nil, ErrClosed
	}
	return st, err
}

func (s *Session) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *Session) logTail(t frame.Tail) {
	if t.Reason == nil {
		return
	}
	s.logger.Debug("capture tail ignored",
		log.Int64("offset", t.Offset),
		log.Int64("bytes", t.Remaining),
		log.String("reason", t.Reason.Error()))
}
