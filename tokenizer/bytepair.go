package tokenizer

import (
	"encoding/binary"
)

// BytePairMerge promotes every input byte to a 16-bit token and then
// repeatedly merges adjacent pairs found in the merge table until a full
// left-to-right pass performs no merges. Each pass is greedy and
// non-overlapping: a token produced mid-pass is not reconsidered until
// the next pass. The fixed point is serialized as big-endian 16-bit
// tokens.
type BytePairMerge struct {
	merges Merges
}

var _ Strategy = (*BytePairMerge)(nil)

func NewBytePairMerge(merges Merges) *BytePairMerge {
	return &BytePairMerge{merges: merges}
}

func (s *BytePairMerge) Process(chunk []byte) ([]byte, error) {
	tokens := make([]uint16, len(chunk))
	for i, b := range chunk {
		tokens[i] = uint16(b)
	}

	for {
		next := tokens[:0:len(tokens)]
		merged := false

		for i := 0; i < len(tokens); {
			if i+1 < len(tokens) {
				if replacement, ok := s.merges[MergePair{tokens[i], tokens[i+1]}]; ok {
					next = append(next, replacement)
					i += 2
					merged = true
					continue
				}
			}
			next = append(next, tokens[i])
			i++
		}

		tokens = next
		if !merged {
			break
		}
	}

	out := make([]byte, 0, len(tokens)*2)
	for _, tok := range tokens {
		out = binary.BigEndian.AppendUint16(out, tok)
	}
	return out, nil
}
