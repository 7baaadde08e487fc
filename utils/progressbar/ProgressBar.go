package progressbar

import (
	"fmt"
	"io"
	"sync"
)

// ProgressBar implements a progress bar which can be incremented from
// multiple goroutines. The bar is redrawn on each increment.
type ProgressBar struct {
	mu     sync.Mutex
	bar    *ManualProgressBar
	closed bool
}

// NewProgressBar returns a new progress bar that prints to w, is width
// characters wide, and reaches 100% after max calls to Increment
func NewProgressBar(w io.Writer, width, max int) *ProgressBar {
	return &ProgressBar{bar: NewManualProgressBar(w, width, max)}
}

// Increment increments the progress counter and redraws the bar
func (p *ProgressBar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.bar.Increment()
	p.bar.Display()
}

// Progress returns the fraction of iterations completed
func (p *ProgressBar) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bar.Progress()
}

// Close stops the progress bar from redrawing and moves to the next
// line. Close panics if the bar is already closed.
func (p *ProgressBar) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		panic("close: close on closed progress bar")
	}
	p.closed = true
	fmt.Fprintln(p.bar.w)
}
