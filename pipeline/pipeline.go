// Package pipeline turns an arbitrarily large byte stream into a token
// stream: input is carved into sequence-numbered chunks, each chunk is
// transformed by a tokenization strategy on one of a bounded set of
// concurrent workers, and the results are written to the sink strictly
// in chunk order regardless of completion order.
package pipeline

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jtrefon/blt/chunking"
	"github.com/jtrefon/blt/format"
	"github.com/jtrefon/blt/logutil"
	"github.com/jtrefon/blt/tokenizer"
)

// Config holds every setting for one run. It is immutable once Run
// starts.
type Config struct {
	// Input is the input file path; empty means standard input.
	Input string
	// Output is the output file path; empty means standard output.
	Output string
	// Merges selects the byte-pair-merge strategy when Strategy is nil.
	Merges tokenizer.Merges
	// ContentType, when set, prepends its marker token to the output.
	ContentType tokenizer.ContentType
	// Workers bounds how many chunks are in flight at once. Must be at
	// least 1.
	Workers int
	// ChunkSize in bytes; 0 lets the planner derive one from system
	// memory.
	ChunkSize uint64
	// MemCapPercent caps the fraction of installed memory the planner
	// budgets, in [0, 100].
	MemCapPercent int
	// Strategy overrides automatic selection (Merges implies
	// byte-pair-merge, otherwise passthrough).
	Strategy tokenizer.Strategy
	// Progress, when non-nil, is called after every chunk flushed to
	// the sink.
	Progress func(Update)
}

// Update reports flush progress. TotalBytes is negative when the input
// length is unknown (streaming input).
type Update struct {
	Chunks     int
	BytesIn    int64
	BytesOut   int64
	TotalBytes int64
}

type stats struct {
	chunks   int
	bytesIn  int64
	bytesOut int64
}

// Run executes the whole pipeline for cfg. It either writes a complete,
// correctly-ordered output stream or returns the first error with no
// retry; output past the failing chunk's turn is never written.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Workers < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", cfg.Workers)
	}
	if cfg.MemCapPercent < 0 || cfg.MemCapPercent > 100 {
		return fmt.Errorf("memory cap must be a percentage in [0, 100], got %d", cfg.MemCapPercent)
	}

	strategy := cfg.Strategy
	if strategy == nil {
		if len(cfg.Merges) > 0 {
			strategy = tokenizer.NewBytePairMerge(cfg.Merges)
		} else {
			strategy = tokenizer.Passthrough{}
		}
	}

	chunkSize := chunking.EffectiveChunkSize(cfg.ChunkSize, cfg.Workers, cfg.MemCapPercent)

	src, err := openInput(cfg.Input, chunkSize)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer src.Close()

	sink, finish, err := openOutput(cfg.Output)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	finished := false
	defer func() {
		// On abort: release the sink; partial flushed output is
		// explicitly unspecified.
		if !finished {
			finish()
		}
	}()

	runID := uuid.New().String()
	slog.Info("starting run",
		"id", runID,
		"workers", cfg.Workers,
		"chunk_size", format.HumanBytes(int64(chunkSize)),
		"content_type", cfg.ContentType.String())
	start := time.Now()

	if tok := cfg.ContentType.Token(); tok != 0 {
		var marker [2]byte
		binary.BigEndian.PutUint16(marker[:], tok)
		if _, err := sink.Write(marker[:]); err != nil {
			return fmt.Errorf("write content-type marker: %w", err)
		}
	}

	st, err := run(ctx, src, sink, strategy, cfg.Workers, cfg.Progress)
	if err != nil {
		return err
	}

	finished = true
	if err := finish(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	slog.Info("run complete",
		"id", runID,
		"chunks", st.chunks,
		"in", format.HumanBytes(st.bytesIn),
		"out", format.HumanBytes(st.bytesOut),
		"elapsed", time.Since(start))
	return nil
}

// run is the orchestrator state machine: fill the worker pool while
// capacity and input remain, drain one completion at a time into the
// reorder buffer, flush the buffer in id order, and finalize once input
// is exhausted and no chunks are in flight. It is the only goroutine
// that touches the sink or the buffer; workers communicate exclusively
// over the bounded results channel.
func run(ctx context.Context, src inputSource, sink io.Writer, strategy tokenizer.Strategy, workers int, progress func(Update)) (stats, error) {
	var st stats

	total := int64(-1)
	if n, ok := src.Size(); ok {
		total = n
	}

	// Capacity 2x the worker bound: at most workers completions are
	// outstanding at any time, so sends never block and abandoned
	// workers always terminate after an abort.
	results := make(chan *completion, 2*workers)
	var g errgroup.Group
	buf := newReorderBuffer()

	inflight := 0
	exhausted := false

	for {
		// Filling
		for inflight < workers && !exhausted {
			c, ok, err := src.Next()
			if err != nil {
				return st, fmt.Errorf("read input: %w", err)
			}
			if !ok {
				exhausted = true
				break
			}

			logutil.Trace("dispatching chunk", "chunk", c.id, "bytes", len(c.data))
			inflight++
			g.Go(func() error {
				out, err := strategy.Process(c.data)
				results <- &completion{id: c.id, n: len(c.data), data: out, err: err}
				return nil
			})
		}

		if exhausted && inflight == 0 {
			break
		}

		// Draining
		var c *completion
		select {
		case c = <-results:
		case <-ctx.Done():
			return st, ctx.Err()
		}
		inflight--
		buf.add(c)

		if err := flush(buf, sink, &st, total, progress); err != nil {
			return st, err
		}
	}

	// Finalizing: no new chunks are possible; drain anything still on
	// the channel until the workers are done, then flush once more.
	go func() {
		g.Wait()
		close(results)
	}()
	for c := range results {
		buf.add(c)
		if err := flush(buf, sink, &st, total, progress); err != nil {
			return st, err
		}
	}
	if err := flush(buf, sink, &st, total, progress); err != nil {
		return st, err
	}

	if !buf.empty() {
		return st, fmt.Errorf("reorder buffer not drained: %d chunks flushed", st.chunks)
	}

	return st, nil
}

// flush writes every consecutively-ready completion to the sink and
// advances the expected id. An error result surfaces exactly when its
// chunk's turn arrives, so no out-of-order output ever precedes it.
func flush(buf *reorderBuffer, sink io.Writer, st *stats, total int64, progress func(Update)) error {
	for {
		c, ok := buf.takeReady()
		if !ok {
			return nil
		}
		if c.err != nil {
			return fmt.Errorf("process chunk %d: %w", c.id, c.err)
		}

		if _, err := sink.Write(c.data); err != nil {
			return fmt.Errorf("write chunk %d: %w", c.id, err)
		}

		st.chunks++
		st.bytesIn += int64(c.n)
		st.bytesOut += int64(len(c.data))
		logutil.Trace("flushed chunk", "chunk", c.id, "bytes", len(c.data))

		if progress != nil {
			progress(Update{
				Chunks:     st.chunks,
				BytesIn:    st.bytesIn,
				BytesOut:   st.bytesOut,
				TotalBytes: total,
			})
		}
	}
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		w := bufio.NewWriter(os.Stdout)
		return w, w.Flush, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}

	w := bufio.NewWriter(f)
	return w, func() error {
		if err := w.Flush(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}, nil
}
