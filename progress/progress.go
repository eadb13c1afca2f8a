// Package progress renders a live status line on a terminal while a
// run is in flight.
package progress

import (
	"bufio"
	"fmt"
	"io"
	"sync"
	"time"
)

type State interface {
	String() string
}

// Progress redraws its state on a fixed tick. Output is buffered to
// minimize flickering on all terminals.
type Progress struct {
	mu sync.Mutex
	w  *bufio.Writer

	ticker *time.Ticker
	state  State
}

func NewProgress(w io.Writer) *Progress {
	p := &Progress{w: bufio.NewWriter(w)}
	go p.start()
	return p
}

func (p *Progress) SetState(state State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = state
}

func (p *Progress) stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ticker == nil {
		return false
	}

	p.ticker.Stop()
	p.ticker = nil
	p.draw()
	return true
}

func (p *Progress) Stop() bool {
	stopped := p.stop()
	if stopped {
		fmt.Fprintln(p.w)
	}

	// show cursor
	fmt.Fprint(p.w, "\033[?25h")
	p.w.Flush()
	return stopped
}

func (p *Progress) StopAndClear() bool {
	stopped := p.stop()
	if stopped {
		// clear the progress line
		fmt.Fprint(p.w, "\033[2K", "\033[1G")
	}

	// show cursor
	fmt.Fprint(p.w, "\033[?25h")
	p.w.Flush()
	return stopped
}

// draw repaints the current state in place. Callers hold p.mu.
func (p *Progress) draw() {
	if p.state == nil {
		return
	}

	fmt.Fprint(p.w, "\033[1G", p.state.String(), "\033[K")
	p.w.Flush()
}

func (p *Progress) render() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.draw()
}

func (p *Progress) start() {
	p.mu.Lock()
	p.ticker = time.NewTicker(100 * time.Millisecond)
	ticker := p.ticker
	p.mu.Unlock()

	// hide cursor
	fmt.Fprint(p.w, "\033[?25l")
	for range ticker.C {
		p.render()
	}
}
