//go:build !unix

package mmapfile

import (
	"io"
	"os"
)

// mapFile reads the file into memory. The copy is private to the process,
// which gives the same isolation as a copy-on-write mapping.
func mapFile(f *os.File, size int64) ([]byte, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return data, nil
}

func unmap([]byte) error { return nil }
