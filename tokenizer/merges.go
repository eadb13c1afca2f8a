package tokenizer

// MergePair is an ordered pair of adjacent token values.
type MergePair struct {
	Left, Right uint16
}

// Merges maps an adjacent token pair to its single replacement token.
// Built once before a run and shared read-only by every worker.
type Merges map[MergePair]uint16
