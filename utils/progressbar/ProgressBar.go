// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressBar implements a concurrent progress bar. The bar is redrawn
// in a separate goroutine so that the progress bar runs concurrently
// with all other processes. All methods are safe for concurrent use.
type ProgressBar struct {
	mu sync.Mutex

	// Width determines the number of characters wide that the progress
	// bar should be
	width float64

	// maxProgress determines the number of times Increment() should
	// be called before the progress bar reaches 100%.
	maxProgress float64

	// currentProgress measures the current progess, equivalently it
	// measures the number of times Increment() was called
	currentProgress float64

	out         io.Writer
	start       time.Time
	updateEvery time.Duration

	closeEvent chan struct{}
	done       chan struct{}
	displayed  bool
	closed     bool
}

// NewProgressBar returns a new progress bar that is width characters
// wide and reaches 100% capacity after max Increment() calls. The bar is
// redrawn to os.Stderr every updateEvery.
func NewProgressBar(width, max int, updateEvery time.Duration) *ProgressBar {
	return &ProgressBar{
		width:       float64(width),
		maxProgress: float64(max),
		out:         os.Stderr,
		updateEvery: updateEvery,
		closeEvent:  make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// SetOutput sets the writer the progress bar is drawn to. It must be
// called before Display.
func (p *ProgressBar) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = w
}

// Increment increments the interal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ProgressBar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.currentProgress < p.maxProgress && !p.closed {
		p.currentProgress++
	}
}

// Progress returns the fraction of progress completed
func (p *ProgressBar) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentProgress / p.maxProgress
}

// Close closes the progress bar so that it will no longer display to
// the screen. The bar is drawn a final time before Close returns.
func (p *ProgressBar) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		panic("close: close on closed progress bar")
	}
	p.closed = true
	displayed := p.displayed
	close(p.closeEvent)
	p.mu.Unlock()

	if displayed {
		<-p.done
	}
}

// Display displays the progress bar on the screen. It should only be
// called once.
func (p *ProgressBar) Display() {
	p.mu.Lock()
	if p.displayed || p.closed {
		p.mu.Unlock()
		return
	}
	p.displayed = true
	p.start = time.Now()
	p.mu.Unlock()

	go func() {
		defer close(p.done)

		tick := time.NewTicker(p.updateEvery)
		defer tick.Stop()

		for {
			select {
			case <-tick.C:
				p.draw()

			case <-p.closeEvent:
				p.draw()
				p.mu.Lock()
				fmt.Fprintln(p.out) // Jump to next line after printed pbar
				p.mu.Unlock()
				return
			}
		}
	}()
}

// draw prints the current state of the progress bar
func (p *ProgressBar) draw() {
	p.mu.Lock()
	defer p.mu.Unlock()

	var bar strings.Builder
	bar.WriteString("|")

	currentProg := p.currentProgress / p.maxProgress * p.width
	for i := 0.0; i < currentProg; i++ {
		bar.WriteString("█")
	}
	for i := currentProg; i < p.width; i++ {
		bar.WriteString(" ")
	}

	elapsed := time.Since(p.start).Round(time.Second)
	fmt.Fprintf(&bar, "| [%.2f%v | elapsed: %v]",
		p.currentProgress/p.maxProgress*100, "%", elapsed)

	fmt.Fprintf(p.out, "\n\033[1A\033[K%v", bar.String())
}
