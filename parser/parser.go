// Package parser loads byte-pair merge tables from their text format:
// one whitespace-separated pair of byte values per line, with #-prefixed
// and blank lines ignored. Replacement token ids are assigned
// sequentially from 256 in line order.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/jtrefon/blt/tokenizer"
)

var (
	errInvalidRule  = errors.New("merge rule must be two byte values separated by whitespace")
	errTableTooBig  = errors.New("merge table exhausts the 16-bit token space")
	errInvalidValue = errors.New("byte value must be in [0, 255]")
)

// firstMergeToken is the id of the first replacement token, directly
// above the byte values.
const firstMergeToken = 256

func ParseMerges(r io.Reader) (tokenizer.Merges, error) {
	merges := make(tokenizer.Merges)
	next := uint32(firstMergeToken)

	scanner := bufio.NewScanner(r)
	for lineno := 1; scanner.Scan(); lineno++ {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: %w: %q", lineno, errInvalidRule, line)
		}

		left, err := parseByteValue(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
		right, err := parseByteValue(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}

		if next > math.MaxUint16 {
			return nil, fmt.Errorf("line %d: %w", lineno, errTableTooBig)
		}

		// A duplicate pair overwrites the earlier mapping but still
		// consumes an id, so downstream ids depend only on line count.
		merges[tokenizer.MergePair{Left: left, Right: right}] = uint16(next)
		next++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return merges, nil
}

func LoadMerges(path string) (tokenizer.Merges, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	merges, err := ParseMerges(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return merges, nil
}

func parseByteValue(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidValue, s)
	}
	return uint16(n), nil
}
