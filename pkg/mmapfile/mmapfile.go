// Package mmapfile maps a capture file into memory for zero-copy reads.
//
// The mapping is private (copy-on-write): pages stay backed by the file
// until something writes through a view, at which point the writer gets a
// private copy and the file is untouched. Views returned by Region alias the
// mapping and are invalid after Close.
package mmapfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	// ErrClosed is returned by operations on a closed File.
	ErrClosed = errors.New("picoparser: mapping closed")

	// ErrOutOfRange is returned for regions outside the mapping.
	ErrOutOfRange = errors.New("picoparser: region out of range")
)

// File is a read-only, copy-on-write mapping of a whole file.
type File struct {
	mu     sync.RWMutex
	f      *os.File
	data   []byte
	closed bool
}

// Open maps the file at path. An empty file yields an empty mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !st.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("map %s: not a regular file", path)
	}
	data, err := mapFile(f, st.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("map %s: %w", path, err)
	}
	return &File{f: f, data: data}, nil
}

// Name returns the path the file was opened with.
func (m *File) Name() string {
	return m.f.Name()
}

// Len returns the length of the mapping, fixed at Open.
func (m *File) Len() int64 {
	return int64(len(m.data))
}

// Bytes returns the whole mapping.
func (m *File) Bytes() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil
	}
	return m.data
}

// Size stats the file now and returns the number of bytes that are both in
// the file and in the mapping. A file truncated after Open reports its new,
// smaller size; growth past the mapping is not visible.
func (m *File) Size() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrClosed
	}
	st, err := m.f.Stat()
	if err != nil {
		return 0, err
	}
	return min(st.Size(), int64(len(m.data))), nil
}

// Region returns the n bytes at off without copying.
func (m *File) Region(off, n int64) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	if off < 0 || n < 0 || off+n > int64(len(m.data)) {
		return nil, fmt.Errorf("%w: [%d,%d) of %d", ErrOutOfRange, off, off+n, len(m.data))
	}
	return m.data[off : off+n : off+n], nil
}

// ReadAt copies bytes out of the mapping. It implements io.ReaderAt and,
// unlike a view, stays safe to call after Close, returning ErrClosed.
func (m *File) ReadAt(p []byte, off int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrOutOfRange, off)
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the file and closes it. Closing twice is a no-op.
func (m *File) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	var errs []error
	if err := unmap(m.data); err != nil {
		errs = append(errs, fmt.Errorf("unmap: %w", err))
	}
	m.data = nil
	if err := m.f.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
