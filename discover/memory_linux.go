package discover

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jtrefon/blt/format"
)

func getSystemMemory() (SystemMemory, error) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return SystemMemory{}, err
	}
	defer f.Close()

	mem, err := parseMeminfo(f)
	if err != nil {
		return SystemMemory{}, err
	}
	return capByCgroups(mem), nil
}

func parseMeminfo(r io.Reader) (SystemMemory, error) {
	var mem SystemMemory
	var total, available, free, buffers, cached uint64
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Text()
		var err error
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			_, err = fmt.Sscanf(line, "MemTotal:%d", &total)
		case strings.HasPrefix(line, "MemAvailable:"):
			_, err = fmt.Sscanf(line, "MemAvailable:%d", &available)
		case strings.HasPrefix(line, "MemFree:"):
			_, err = fmt.Sscanf(line, "MemFree:%d", &free)
		case strings.HasPrefix(line, "Buffers:"):
			_, err = fmt.Sscanf(line, "Buffers:%d", &buffers)
		case strings.HasPrefix(line, "Cached:"):
			_, err = fmt.Sscanf(line, "Cached:%d", &cached)
		default:
			continue
		}
		if err != nil {
			return mem, err
		}
	}
	mem.TotalMemory = total * format.KibiByte
	if available > 0 {
		mem.FreeMemory = available * format.KibiByte
	} else {
		mem.FreeMemory = (free + buffers + cached) * format.KibiByte
	}
	return mem, nil
}

// capByCgroups lowers the reported totals when the process runs inside a
// cgroup v2 memory limit.
func capByCgroups(mem SystemMemory) SystemMemory {
	total, err := readUint64File("/sys/fs/cgroup/memory.max")
	if err == nil && total < mem.TotalMemory {
		mem.TotalMemory = total
	}
	used, err := readUint64File("/sys/fs/cgroup/memory.current")
	if err == nil && used < mem.TotalMemory {
		mem.FreeMemory = mem.TotalMemory - used
	}
	return mem
}

func readUint64File(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	if !s.Scan() {
		return 0, fmt.Errorf("empty file %s", path)
	}
	return strconv.ParseUint(strings.TrimSpace(s.Text()), 10, 64)
}
