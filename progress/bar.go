package progress

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/jtrefon/blt/format"
)

// Bar tracks a run whose total input size is known up front.
type Bar struct {
	message      string
	maxValue     int64
	currentValue int64

	started time.Time
}

func NewBar(message string, maxValue int64) *Bar {
	return &Bar{
		message:  message,
		maxValue: maxValue,
		started:  time.Now(),
	}
}

func (b *Bar) Set(value int64) {
	if value >= b.maxValue {
		value = b.maxValue
	}

	b.currentValue = value
}

func (b *Bar) percent() float64 {
	if b.maxValue > 0 {
		return float64(b.currentValue) / float64(b.maxValue) * 100
	}

	return 0
}

// rate is the average throughput in bytes per second since the bar was
// created.
func (b *Bar) rate() float64 {
	elapsed := time.Since(b.started)
	if elapsed <= 0 {
		return 0
	}

	return float64(b.currentValue) / elapsed.Seconds()
}

func (b *Bar) remaining() time.Duration {
	rate := b.rate()
	if rate <= 0 {
		return time.Duration(math.MaxInt64)
	}

	return time.Duration(float64(b.maxValue-b.currentValue) / rate * float64(time.Second))
}

// formatDuration limits the rendering of a time.Duration to 2 units
func formatDuration(d time.Duration) string {
	if d >= 100*time.Hour {
		return "99h+"
	}

	if d >= time.Hour {
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}

	return d.Round(time.Second).String()
}

func (b *Bar) String() string {
	termWidth, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil {
		termWidth = 80
	}

	var pre, mid, suf strings.Builder

	if b.message != "" {
		pre.WriteString(strings.TrimSpace(b.message))
		pre.WriteString(" ")
	}

	fmt.Fprintf(&pre, "%3.0f%% ", math.Floor(b.percent()))

	fmt.Fprintf(&suf, "(%s/%s", format.HumanBytes(b.currentValue), format.HumanBytes(b.maxValue))

	var timing string
	if b.currentValue > 0 && b.currentValue < b.maxValue {
		fmt.Fprintf(&suf, ", %s/s", format.HumanBytes(int64(b.rate())))
		timing = fmt.Sprintf(" [%s:%s]", formatDuration(time.Since(b.started)), formatDuration(b.remaining()))
	}

	suf.WriteString(")")
	suf.WriteString(timing)

	// 3 extra characters: 2 boundary characters and 1 space
	f := termWidth - pre.Len() - suf.Len() - 3
	n := int(float64(f) * b.percent() / 100)

	if f > 0 {
		mid.WriteString("▕")
		mid.WriteString(strings.Repeat("█", max(n, 0)))
		if f-n > 0 {
			mid.WriteString(strings.Repeat(" ", f-n))
		}
		mid.WriteString("▏ ")
	}

	return pre.String() + mid.String() + suf.String()
}
