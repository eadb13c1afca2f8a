package format

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	Byte     = 1
	KibiByte = Byte * 1024
	MebiByte = KibiByte * 1024
	GibiByte = MebiByte * 1024
	TebiByte = GibiByte * 1024
)

func HumanBytes(b int64) string {
	switch {
	case b >= TebiByte:
		return fmt.Sprintf("%s TB", decimalPlace(float64(b)/TebiByte))
	case b >= GibiByte:
		return fmt.Sprintf("%s GB", decimalPlace(float64(b)/GibiByte))
	case b >= MebiByte:
		return fmt.Sprintf("%s MB", decimalPlace(float64(b)/MebiByte))
	case b >= KibiByte:
		return fmt.Sprintf("%s KB", decimalPlace(float64(b)/KibiByte))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func decimalPlace(n float64) string {
	switch {
	case n >= 100:
		return fmt.Sprintf("%.0f", n)
	case n >= 10:
		return fmt.Sprintf("%.1f", n)
	default:
		s := strings.TrimRight(fmt.Sprintf("%.2f", n), "0")
		return strings.TrimRight(s, ".")
	}
}

// ParseSize parses a chunk-size string: a raw byte count, or a number
// followed by KB or MB (case insensitive, binary multipliers). Anything
// else, including fractional numbers and other units, is an error.
func ParseSize(s string) (uint64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("empty size")
	}

	multiplier := uint64(Byte)
	upper := strings.ToUpper(trimmed)
	switch {
	case strings.HasSuffix(upper, "KB"):
		multiplier = KibiByte
		trimmed = trimmed[:len(trimmed)-2]
	case strings.HasSuffix(upper, "MB"):
		multiplier = MebiByte
		trimmed = trimmed[:len(trimmed)-2]
	}

	n, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: number must be followed by KB, MB, or be raw bytes", s)
	}

	return n * multiplier, nil
}
