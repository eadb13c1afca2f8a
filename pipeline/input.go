package pipeline

import (
	"errors"
	"io"
	"os"
)

// chunk is a contiguous, sequence-numbered slice of the input. Ids are
// dense, start at 0, and are assigned in strictly increasing order as
// input is consumed.
type chunk struct {
	id   uint64
	data []byte
}

// inputSource yields chunks in input order. ok is false once input is
// exhausted, a terminal state.
type inputSource interface {
	Next() (c chunk, ok bool, err error)
	// Size returns the total input length when it is known up front.
	Size() (int64, bool)
	Close() error
}

func openInput(path string, chunkSize uint64) (inputSource, error) {
	if path == "" {
		return newStreamSource(os.Stdin, chunkSize), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	data, unmap, err := mmapFile(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, err
	}

	return &mappedSource{f: f, data: data, unmap: unmap, chunkSize: chunkSize}, nil
}

// mappedSource carves chunks out of a read-only memory mapping of the
// whole file. Chunk payloads alias the mapping and stay valid until
// Close.
type mappedSource struct {
	f         *os.File
	data      []byte
	unmap     func() error
	chunkSize uint64
	next      uint64
}

func (s *mappedSource) Next() (chunk, bool, error) {
	lo := s.next * s.chunkSize
	if lo >= uint64(len(s.data)) {
		return chunk{}, false, nil
	}
	hi := min(lo+s.chunkSize, uint64(len(s.data)))

	c := chunk{id: s.next, data: s.data[lo:hi]}
	s.next++
	return c, true, nil
}

func (s *mappedSource) Size() (int64, bool) {
	return int64(len(s.data)), true
}

func (s *mappedSource) Close() error {
	err := s.unmap()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// streamSource pulls owned chunk buffers sequentially from a
// non-seekable reader. Chunks are filled to chunkSize except the final
// short chunk, so a streamed run is byte-identical to a mapped run over
// the same bytes.
type streamSource struct {
	r         io.Reader
	chunkSize uint64
	next      uint64
	eof       bool
}

func newStreamSource(r io.Reader, chunkSize uint64) *streamSource {
	return &streamSource{r: r, chunkSize: chunkSize}
}

func (s *streamSource) Next() (chunk, bool, error) {
	if s.eof {
		return chunk{}, false, nil
	}

	buf := make([]byte, s.chunkSize)
	n, err := io.ReadFull(s.r, buf)
	switch {
	case errors.Is(err, io.EOF):
		s.eof = true
		return chunk{}, false, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.eof = true
	case err != nil:
		return chunk{}, false, err
	}

	c := chunk{id: s.next, data: buf[:n]}
	s.next++
	return c, true, nil
}

func (s *streamSource) Size() (int64, bool) {
	return 0, false
}

func (s *streamSource) Close() error {
	return nil
}
