package tokenizer

import (
	"encoding/binary"
)

// ByteWidening promotes every input byte to a 2-byte big-endian token
// with no merges. Output length is exactly twice the input length.
type ByteWidening struct{}

var _ Strategy = ByteWidening{}

func (ByteWidening) Process(chunk []byte) ([]byte, error) {
	out := make([]byte, 0, len(chunk)*2)
	for _, b := range chunk {
		out = binary.BigEndian.AppendUint16(out, uint16(b))
	}
	return out, nil
}
