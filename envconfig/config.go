package envconfig

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

var (
	// Set via BLT_DEBUG in the environment
	Debug bool
	// Set via BLT_NUM_THREADS in the environment
	NumThreads int
	// Set via BLT_MEMCAP in the environment
	MemCap int
	// Set via BLT_CHUNK_SIZE in the environment
	ChunkSize string
)

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"BLT_DEBUG":       {"BLT_DEBUG", Debug, "Show additional debug information (e.g. BLT_DEBUG=1)"},
		"BLT_NUM_THREADS": {"BLT_NUM_THREADS", NumThreads, "Default worker count (default: number of CPUs)"},
		"BLT_MEMCAP":      {"BLT_MEMCAP", MemCap, "Max RAM usage percentage for chunk sizing (default 80)"},
		"BLT_CHUNK_SIZE":  {"BLT_CHUNK_SIZE", ChunkSize, "Default chunk size, e.g. 4MB, 256KB (default: auto)"},
	}
}

// Clean quotes and spaces from the value
func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

func init() {
	// default values
	MemCap = 80

	LoadConfig()
}

func LoadConfig() {
	if debug := clean("BLT_DEBUG"); debug != "" {
		d, err := strconv.ParseBool(debug)
		if err == nil {
			Debug = d
		} else {
			Debug = true
		}
	}

	if threads := clean("BLT_NUM_THREADS"); threads != "" {
		val, err := strconv.Atoi(threads)
		if err != nil || val <= 0 {
			slog.Error("invalid setting, must be greater than zero", "BLT_NUM_THREADS", threads, "error", err)
		} else {
			NumThreads = val
		}
	}

	if memcap := clean("BLT_MEMCAP"); memcap != "" {
		val, err := strconv.Atoi(memcap)
		if err != nil || val < 0 || val > 100 {
			slog.Error("invalid setting, must be a percentage", "BLT_MEMCAP", memcap, "error", err)
		} else {
			MemCap = val
		}
	}

	ChunkSize = clean("BLT_CHUNK_SIZE")
}
