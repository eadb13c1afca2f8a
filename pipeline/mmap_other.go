//go:build !unix

package pipeline

import (
	"io"
	"os"
)

// Platforms without a usable mmap read the whole file instead; the
// contract to the carve stage is the same.
func mmapFile(f *os.File, size int64) ([]byte, func() error, error) {
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}
