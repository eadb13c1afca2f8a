package discover

import (
	"golang.org/x/sys/unix"
)

func getSystemMemory() (SystemMemory, error) {
	total, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return SystemMemory{}, err
	}

	// usermem drifts with pressure; treat it as best effort.
	free, err := unix.SysctlUint64("hw.usermem")
	if err != nil {
		free = 0
	}

	return SystemMemory{TotalMemory: total, FreeMemory: free}, nil
}
