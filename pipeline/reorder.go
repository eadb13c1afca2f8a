package pipeline

import (
	"cmp"

	heap "github.com/emirpasic/gods/v2/trees/binaryheap"
)

// completion is one worker's result for one chunk: either transformed
// bytes or a terminal error. n is the chunk's input length.
type completion struct {
	id   uint64
	n    int
	data []byte
	err  error
}

// reorderBuffer holds completions that arrived ahead of their turn. It
// releases them strictly in chunk-id order: takeReady only returns the
// completion whose id is the next expected one, so the buffer never
// retains a ready id and everything below next has already been
// flushed.
type reorderBuffer struct {
	pending *heap.Heap[*completion]
	next    uint64
}

func newReorderBuffer() *reorderBuffer {
	return &reorderBuffer{
		pending: heap.NewWith(func(i, j *completion) int {
			return cmp.Compare(i.id, j.id)
		}),
	}
}

func (b *reorderBuffer) add(c *completion) {
	b.pending.Push(c)
}

// takeReady pops the completion for the next expected chunk id, if it
// has arrived.
func (b *reorderBuffer) takeReady() (*completion, bool) {
	c, ok := b.pending.Peek()
	if !ok || c.id != b.next {
		return nil, false
	}
	b.pending.Pop()
	b.next++
	return c, true
}

func (b *reorderBuffer) empty() bool {
	return b.pending.Empty()
}
