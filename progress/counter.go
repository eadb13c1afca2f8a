package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/jtrefon/blt/format"
)

// Counter tracks a run whose total input size is unknown, such as a
// piped stream.
type Counter struct {
	message string
	chunks  int
	value   int64

	started time.Time
}

func NewCounter(message string) *Counter {
	return &Counter{message: message, started: time.Now()}
}

func (c *Counter) Set(chunks int, value int64) {
	c.chunks = chunks
	c.value = value
}

func (c *Counter) String() string {
	var sb strings.Builder

	if c.message != "" {
		sb.WriteString(strings.TrimSpace(c.message))
		sb.WriteString(" ")
	}

	fmt.Fprintf(&sb, "%d chunks, %s", c.chunks, format.HumanBytes(c.value))

	elapsed := time.Since(c.started)
	if c.value > 0 && elapsed > 0 {
		fmt.Fprintf(&sb, " (%s/s)", format.HumanBytes(int64(float64(c.value)/elapsed.Seconds())))
	}

	return sb.String()
}
