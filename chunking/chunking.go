// Package chunking sizes the chunks the pipeline carves its input into,
// balancing memory use against worker utilization. The size is computed
// once per run and never adapted mid-run.
package chunking

import (
	"log/slog"

	"github.com/jtrefon/blt/discover"
	"github.com/jtrefon/blt/format"
)

const (
	defaultMinChunkSize = 1 * format.MebiByte
	defaultMaxChunkSize = 16 * format.MebiByte

	absoluteMinChunkSize = 256 * format.KibiByte
	absoluteMaxChunkSize = 128 * format.MebiByte

	// A chunk can exist simultaneously as raw input, an in-flight owned
	// copy, and transformed output, so budget a quarter of the per-worker
	// allowance per chunk.
	headroomFactor = 4
)

// EffectiveChunkSize returns the chunk size in bytes for a run. An
// explicit size is clamped into [256 KiB, 128 MiB] and returned as is.
// Otherwise the size is derived from installed memory: total times the
// memory-cap percentage, split across workers, divided by the headroom
// factor, clamped into [1 MiB, 16 MiB] and then into the absolute range.
func EffectiveChunkSize(explicit uint64, workers, memCapPercent int) uint64 {
	if explicit > 0 {
		return clamp(explicit, absoluteMinChunkSize, absoluteMaxChunkSize)
	}

	if workers < 1 {
		workers = 1
	}

	mem, err := discover.GetSystemMemory()
	if err != nil {
		// No memory info drives the result to the default floor.
		slog.Warn("could not determine system memory", "error", err)
		mem = discover.SystemMemory{}
	}

	return dynamicChunkSize(mem.TotalMemory, workers, memCapPercent)
}

func dynamicChunkSize(totalMemory uint64, workers, memCapPercent int) uint64 {
	usable := totalMemory / 100 * uint64(memCapPercent)
	perWorker := usable / uint64(workers)
	size := perWorker / headroomFactor

	size = clamp(size, defaultMinChunkSize, defaultMaxChunkSize)
	return clamp(size, absoluteMinChunkSize, absoluteMaxChunkSize)
}

func clamp(n, lo, hi uint64) uint64 {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
