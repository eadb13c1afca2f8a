// Package tokenizer defines the per-chunk transformation strategies and
// the merge table that drives byte-pair merging.
package tokenizer

// Strategy transforms one chunk of input bytes into output bytes.
//
// Process must be safe for concurrent use: implementations are pure
// functions of the chunk and of read-only tables captured at
// construction, so the pipeline may invoke them from many workers at
// once.
type Strategy interface {
	Process(chunk []byte) ([]byte, error)
}
