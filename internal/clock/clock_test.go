package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_Tick(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)
	fake := clockwork.NewFakeClockAt(start)
	c := New(fake)

	assert.Equal(t, start.UnixMilli(), c.Tick())
	// время не изменилось - значение все равно растет
	assert.Equal(t, start.UnixMilli()+1, c.Tick())

	fake.Advance(10 * time.Second)
	assert.Equal(t, start.UnixMilli()+10_000, c.Tick())
}

func TestClock_Update(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.UnixMilli(1000))
	c := New(fake)

	c.Update(5000)
	assert.Equal(t, int64(5000), c.Last())
	assert.Equal(t, int64(5001), c.Tick())

	// старые значения не откатывают часы назад
	c.Update(10)
	assert.Equal(t, int64(5002), c.Tick())
}

func TestClock_Restore(t *testing.T) {
	c := New(clockwork.NewFakeClockAt(time.UnixMilli(100)))
	c.Restore(900)
	assert.Equal(t, int64(901), c.Tick())
	assert.Equal(t, int64(100), c.Now())
}

func TestClock_Concurrent(t *testing.T) {
	c := New(clockwork.NewFakeClockAt(time.UnixMilli(1)))

	const goroutines = 10
	const ticks = 100

	var (
		mu   sync.Mutex
		seen = make(map[int64]bool)
		wg   sync.WaitGroup
	)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range ticks {
				ts := c.Tick()
				mu.Lock()
				seen[ts] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, goroutines*ticks, "все значения должны быть уникальными")
}

func TestNew_DefaultsToRealClock(t *testing.T) {
	c := New(nil)
	assert.NotNil(t, c.Wall())
	assert.Positive(t, c.Tick())
}
