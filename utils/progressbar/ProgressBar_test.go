package progressbar

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	var out bytes.Buffer
	p := NewProgressBar(10, 4, time.Millisecond)
	p.SetOutput(&out)
	p.Display()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Increment()
		}()
	}
	wg.Wait()

	// Progress saturates at the maximum
	assert.Equal(t, 1.0, p.Progress())

	p.Close()
	assert.Contains(t, out.String(), "100.00%")
	assert.Panics(t, p.Close)
}

func TestProgressBarNotDisplayed(t *testing.T) {
	p := NewProgressBar(10, 2, time.Second)
	p.Increment()
	assert.Equal(t, 0.5, p.Progress())
	p.Close()
}
