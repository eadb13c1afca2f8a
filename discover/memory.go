// Package discover reports host resources the chunk planner sizes
// against. Callers treat a failed query as zero memory.
package discover

// SystemMemory describes physical memory in bytes.
type SystemMemory struct {
	TotalMemory uint64
	FreeMemory  uint64
}

func GetSystemMemory() (SystemMemory, error) {
	return getSystemMemory()
}
