package envconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	Debug = false // Reset whatever was loaded in init()
	t.Setenv("BLT_DEBUG", "")
	LoadConfig()
	require.False(t, Debug)
	t.Setenv("BLT_DEBUG", "false")
	LoadConfig()
	require.False(t, Debug)
	t.Setenv("BLT_DEBUG", "1")
	LoadConfig()
	require.True(t, Debug)
	t.Setenv("BLT_DEBUG", "yes")
	LoadConfig()
	require.True(t, Debug)
}

func TestNumThreads(t *testing.T) {
	NumThreads = 0
	t.Setenv("BLT_NUM_THREADS", "8")
	LoadConfig()
	require.Equal(t, 8, NumThreads)

	t.Setenv("BLT_NUM_THREADS", "-1")
	LoadConfig()
	require.Equal(t, 8, NumThreads, "invalid values are ignored")

	t.Setenv("BLT_NUM_THREADS", "bogus")
	LoadConfig()
	require.Equal(t, 8, NumThreads)
}

func TestMemCap(t *testing.T) {
	MemCap = 80
	t.Setenv("BLT_MEMCAP", "50")
	LoadConfig()
	require.Equal(t, 50, MemCap)

	t.Setenv("BLT_MEMCAP", "101")
	LoadConfig()
	require.Equal(t, 50, MemCap, "out-of-range values are ignored")
}

func TestChunkSize(t *testing.T) {
	t.Setenv("BLT_CHUNK_SIZE", "\"4MB\"")
	LoadConfig()
	require.Equal(t, "4MB", ChunkSize)
}
