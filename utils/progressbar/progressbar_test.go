package progressbar

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManualProgressBar(t *testing.T) {
	var buf bytes.Buffer
	p := NewManualProgressBar(&buf, 4, 2)

	assert.Equal(t, "|    | [0.00%]", p.String())
	p.Increment()
	assert.Equal(t, "|██  | [50.00%]", p.String())
	p.Increment()
	p.Increment()
	assert.Equal(t, 1.0, p.Progress())

	p.Display()
	assert.Contains(t, buf.String(), "[100.00%]")
}

func TestProgressBarConcurrent(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressBar(&buf, 10, 100)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				p.Increment()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1.0, p.Progress())
	p.Close()
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
	assert.Panics(t, p.Close)

	// Increments after closing are ignored
	before := buf.Len()
	p.Increment()
	assert.Equal(t, before, buf.Len())
}
