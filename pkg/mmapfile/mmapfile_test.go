package mmapfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.csi")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpen_RegionIsZeroCopy(t *testing.T) {
	path := writeFile(t, []byte("0123456789"))
	m, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer m.Close()

	r, err := m.Region(2, 3)
	if err != nil {
		t.Fatalf("Region() error = %v", err)
	}
	if string(r) != "234" {
		t.Fatalf("Region(2,3) = %q", r)
	}
	if &r[0] != &m.Bytes()[2] {
		t.Fatal("Region copied instead of aliasing the mapping")
	}
	if cap(r) != 3 {
		t.Fatalf("cap(region) = %d, want 3", cap(r))
	}
}

func TestOpen_CopyOnWrite(t *testing.T) {
	path := writeFile(t, []byte("abcdef"))
	m, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	r, _ := m.Region(0, 3)
	r[0] = 'X'
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "abcdef" {
		t.Fatalf("write through view reached the file: %q", got)
	}
}

func TestRegion_OutOfRange(t *testing.T) {
	m, err := Open(writeFile(t, []byte("abc")))
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	for _, r := range [][2]int64{{-1, 1}, {0, 4}, {3, 1}, {1, -1}} {
		if _, err := m.Region(r[0], r[1]); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Region(%d,%d) error = %v, want ErrOutOfRange", r[0], r[1], err)
		}
	}
	if _, err := m.Region(3, 0); err != nil {
		t.Errorf("empty region at end: %v", err)
	}
}

func TestOpen_EmptyFile(t *testing.T) {
	m, err := Open(writeFile(t, nil))
	if err != nil {
		t.Fatalf("Open(empty) error = %v", err)
	}
	defer m.Close()
	if m.Len() != 0 {
		t.Fatalf("Len() = %d", m.Len())
	}
	size, err := m.Size()
	if err != nil || size != 0 {
		t.Fatalf("Size() = %d, %v", size, err)
	}
}

func TestSize_ReflectsTruncation(t *testing.T) {
	path := writeFile(t, make([]byte, 64))
	m, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	if err := os.Truncate(path, 40); err != nil {
		t.Fatal(err)
	}
	size, err := m.Size()
	if err != nil {
		t.Fatal(err)
	}
	if size != 40 {
		t.Fatalf("Size() = %d after truncation, want 40", size)
	}

	// Growth beyond the mapping is not visible.
	if err := os.Truncate(path, 128); err != nil {
		t.Fatal(err)
	}
	if size, _ := m.Size(); size != 64 {
		t.Fatalf("Size() = %d after growth, want 64", size)
	}
}

func TestClose_Idempotent(t *testing.T) {
	m, err := Open(writeFile(t, []byte("abc")))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if _, err := m.Region(0, 1); !errors.Is(err, ErrClosed) {
		t.Fatalf("Region after Close error = %v, want ErrClosed", err)
	}
	if _, err := m.Size(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Size after Close error = %v, want ErrClosed", err)
	}
}

func TestOpen_Missing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Open(missing) error = %v, want ErrNotExist", err)
	}
}

func TestReadAt(t *testing.T) {
	m, err := Open(writeFile(t, []byte("0123456789")))
	if err != nil {
		t.Fatal(err)
	}

	p := make([]byte, 4)
	if n, err := m.ReadAt(p, 3); err != nil || n != 4 || string(p) != "3456" {
		t.Fatalf("ReadAt(3) = %d, %v, %q", n, err, p)
	}
	if n, err := m.ReadAt(p, 8); !errors.Is(err, io.EOF) || n != 2 {
		t.Fatalf("ReadAt(8) = %d, %v, want 2, io.EOF", n, err)
	}
	if _, err := m.ReadAt(p, 10); !errors.Is(err, io.EOF) {
		t.Fatalf("ReadAt(10) error = %v, want io.EOF", err)
	}
	if _, err := m.ReadAt(p, -1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("ReadAt(-1) error = %v, want ErrOutOfRange", err)
	}

	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.ReadAt(p, 0); !errors.Is(err, ErrClosed) {
		t.Fatalf("ReadAt after Close error = %v, want ErrClosed", err)
	}
}
