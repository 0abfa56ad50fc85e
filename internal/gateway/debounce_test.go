package gateway

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerCoalescesBurst(t *testing.T) {
	var runs atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() { runs.Add(1) })

	for i := 0; i < 10; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestDebouncerTrailingEdge(t *testing.T) {
	var runs atomic.Int32
	d := NewDebouncer(50*time.Millisecond, func() { runs.Add(1) })

	d.Trigger()
	// Nothing fires during the quiet period.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestDebouncerFlushRunsImmediately(t *testing.T) {
	var runs atomic.Int32
	d := NewDebouncer(time.Hour, func() { runs.Add(1) })

	d.Trigger()
	d.Flush()
	assert.Equal(t, int32(1), runs.Load())

	// Flush with nothing armed is a no-op.
	d.Flush()
	assert.Equal(t, int32(1), runs.Load())
}

func TestDebouncerStopDropsArmedRun(t *testing.T) {
	var runs atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func() { runs.Add(1) })

	d.Trigger()
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}
