//go:build unix

package pipeline

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapFile maps f read-only. The returned release func must be called
// exactly once, after every chunk slice referencing the mapping is dead.
func mmapFile(f *os.File, size int64) ([]byte, func() error, error) {
	if size == 0 {
		// zero-length mappings are invalid
		return nil, func() error { return nil }, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}

	return data, func() error { return unix.Munmap(data) }, nil
}
