package pipeline

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"

	"github.com/jtrefon/blt/format"
	"github.com/jtrefon/blt/tokenizer"
)

func testMerges() tokenizer.Merges {
	// a handful of pairs likely to occur in random bytes, plus a
	// cascading pair
	m := tokenizer.Merges{}
	next := uint16(256)
	for b := byte(0); b < 36; b++ {
		m[tokenizer.MergePair{Left: uint16(b), Right: uint16(b + 1)}] = next
		next++
	}
	m[tokenizer.MergePair{Left: 256, Right: 2}] = next
	return m
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	data := make([]byte, n)
	rng := rand.New(rand.NewSource(42))
	if _, err := rng.Read(data); err != nil {
		t.Fatal(err)
	}
	return data
}

func runOver(t *testing.T, src inputSource, strategy tokenizer.Strategy, workers int) []byte {
	t.Helper()
	var out bytes.Buffer
	if _, err := run(context.Background(), src, &out, strategy, workers, nil); err != nil {
		t.Fatal(err)
	}
	return out.Bytes()
}

func TestOrderPreservation(t *testing.T) {
	input := randomBytes(t, 1<<20)
	strategy := tokenizer.NewBytePairMerge(testMerges())

	// chunk size small enough for hundreds of chunks
	sequential := runOver(t, newStreamSource(bytes.NewReader(input), 4096), strategy, 1)

	for _, workers := range []int{2, 8, 64} {
		parallel := runOver(t, newStreamSource(bytes.NewReader(input), 4096), strategy, workers)
		if !bytes.Equal(sequential, parallel) {
			t.Errorf("workers=%d: output differs from sequential run", workers)
		}
	}
}

func TestMappedMatchesStreaming(t *testing.T) {
	input := randomBytes(t, 1<<20+12345)
	path := filepath.Join(t.TempDir(), "input.bin")
	if err := os.WriteFile(path, input, 0o644); err != nil {
		t.Fatal(err)
	}

	strategy := tokenizer.NewBytePairMerge(testMerges())

	mapped, err := openInput(path, 64*format.KibiByte)
	if err != nil {
		t.Fatal(err)
	}
	defer mapped.Close()
	if total, ok := mapped.Size(); !ok || total != int64(len(input)) {
		t.Fatalf("mapped Size() = %d, %v; want %d, true", total, ok, len(input))
	}

	fromFile := runOver(t, mapped, strategy, 8)
	fromStream := runOver(t, newStreamSource(bytes.NewReader(input), 64*format.KibiByte), strategy, 8)

	if !bytes.Equal(fromFile, fromStream) {
		t.Error("mapped and streaming outputs differ")
	}
}

func TestStreamSourceShortReads(t *testing.T) {
	// a reader that returns one byte at a time must still produce
	// full-sized chunks
	src := newStreamSource(iotest.OneByteReader(bytes.NewReader([]byte("abcdefghij"))), 4)

	var sizes []int
	var ids []uint64
	for {
		c, ok, err := src.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		ids = append(ids, c.id)
		sizes = append(sizes, len(c.data))
	}

	if diff := cmp.Diff([]uint64{0, 1, 2}, ids); diff != "" {
		t.Errorf("chunk ids (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{4, 4, 2}, sizes); diff != "" {
		t.Errorf("chunk sizes (-want +got):\n%s", diff)
	}

	// exhaustion is terminal
	if _, ok, _ := src.Next(); ok {
		t.Error("Next returned a chunk after exhaustion")
	}
}

func TestEmptyInput(t *testing.T) {
	out := runOver(t, newStreamSource(bytes.NewReader(nil), 4096), tokenizer.Passthrough{}, 4)
	if len(out) != 0 {
		t.Errorf("expected empty output, got %d bytes", len(out))
	}
}

func TestReorderBuffer(t *testing.T) {
	buf := newReorderBuffer()

	buf.add(&completion{id: 2})
	buf.add(&completion{id: 1})
	if _, ok := buf.takeReady(); ok {
		t.Fatal("takeReady returned a completion before id 0 arrived")
	}

	buf.add(&completion{id: 0})
	var got []uint64
	for {
		c, ok := buf.takeReady()
		if !ok {
			break
		}
		got = append(got, c.id)
	}
	if diff := cmp.Diff([]uint64{0, 1, 2}, got); diff != "" {
		t.Errorf("flush order (-want +got):\n%s", diff)
	}
	if !buf.empty() {
		t.Error("buffer not empty after draining")
	}
}

type failOnMarker struct{}

func (failOnMarker) Process(chunk []byte) ([]byte, error) {
	if len(chunk) > 0 && chunk[0] == 'X' {
		return nil, errors.New("marked chunk")
	}
	return tokenizer.ByteWidening{}.Process(chunk)
}

func TestChunkErrorAbortsAtItsTurn(t *testing.T) {
	// chunk 2 fails; chunks 0 and 1 must be flushed, nothing after
	input := []byte("aaaabbbbXcccdddd")
	src := newStreamSource(bytes.NewReader(input), 4)

	var out bytes.Buffer
	_, err := run(context.Background(), src, &out, failOnMarker{}, 4, nil)
	if err == nil {
		t.Fatal("expected error")
	}

	want, _ := tokenizer.ByteWidening{}.Process([]byte("aaaabbbb"))
	if diff := cmp.Diff(want, out.Bytes()); diff != "" {
		t.Errorf("partial output (-want +got):\n%s", diff)
	}
}

func TestRunEndToEnd(t *testing.T) {
	input := randomBytes(t, 1<<20)
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.bin")
	outPath := filepath.Join(dir, "out.bin")
	if err := os.WriteFile(inPath, input, 0o644); err != nil {
		t.Fatal(err)
	}

	err := Run(context.Background(), Config{
		Input:         inPath,
		Output:        outPath,
		Merges:        testMerges(),
		ContentType:   tokenizer.ContentTypeBinary,
		Workers:       8,
		ChunkSize:     256 * format.KibiByte,
		MemCapPercent: 80,
	})
	if err != nil {
		t.Fatal(err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}

	if len(out) < 2 || out[0] != 0xFF || out[1] != 0x03 {
		t.Fatalf("missing bin content-type marker, got % x", out[:min(len(out), 2)])
	}

	// the body must equal a sequential in-process run
	body := runOver(t, newStreamSource(bytes.NewReader(input), 256*format.KibiByte), tokenizer.NewBytePairMerge(testMerges()), 1)
	if !bytes.Equal(out[2:], body) {
		t.Error("file output differs from sequential reference run")
	}
}

func TestRunEmptyInputWritesOnlyMarker(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "empty.bin")
	outPath := filepath.Join(dir, "out.bin")
	if err := os.WriteFile(inPath, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	err := Run(context.Background(), Config{
		Input:       inPath,
		Output:      outPath,
		ContentType: tokenizer.ContentTypeText,
		Workers:     4,
	})
	if err != nil {
		t.Fatal(err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0xFF, 0x01}, out); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestRunValidatesConfig(t *testing.T) {
	if err := Run(context.Background(), Config{Workers: 0}); err == nil {
		t.Error("expected error for zero workers")
	}
	if err := Run(context.Background(), Config{Workers: 1, MemCapPercent: 101}); err == nil {
		t.Error("expected error for memcap > 100")
	}
}

func TestRunProgress(t *testing.T) {
	input := randomBytes(t, 600*format.KibiByte)
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.bin")
	if err := os.WriteFile(inPath, input, 0o644); err != nil {
		t.Fatal(err)
	}

	var last Update
	err := Run(context.Background(), Config{
		Input:     inPath,
		Output:    filepath.Join(dir, "out.bin"),
		Workers:   4,
		ChunkSize: 256 * format.KibiByte,
		Progress:  func(u Update) { last = u },
	})
	if err != nil {
		t.Fatal(err)
	}

	if last.Chunks != 3 {
		t.Errorf("Chunks = %d, want 3", last.Chunks)
	}
	if last.BytesIn != int64(len(input)) {
		t.Errorf("BytesIn = %d, want %d", last.BytesIn, len(input))
	}
	if last.TotalBytes != int64(len(input)) {
		t.Errorf("TotalBytes = %d, want %d", last.TotalBytes, len(input))
	}
	if last.BytesOut != last.BytesIn {
		t.Errorf("passthrough BytesOut = %d, want %d", last.BytesOut, last.BytesIn)
	}
}
