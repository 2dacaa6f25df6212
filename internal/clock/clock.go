// Package clock выдает метки времени для элементов синхронизации.
package clock

import (
	"sync"

	"github.com/jonboulle/clockwork"
)

// Clock представляет монотонные часы на основе системного времени (unix ms).
// Каждый вызов Tick возвращает значение строго больше предыдущего, даже если
// системное время не изменилось или ушло назад.
type Clock struct {
	wall clockwork.Clock // источник физического времени
	last int64           // последнее выданное значение
	mu   sync.Mutex      // мьютекс для потокобезопасности
}

// New создает часы поверх заданного источника времени.
func New(wall clockwork.Clock) *Clock {
	if wall == nil {
		wall = clockwork.NewRealClock()
	}
	return &Clock{wall: wall}
}

// Tick возвращает timestamp для нового локального события:
// max(текущее время, последнее значение + 1).
func (c *Clock) Tick() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.wall.Now().UnixMilli()
	if now <= c.last {
		now = c.last + 1
	}
	c.last = now
	return now
}

// Update учитывает timestamp, полученный от другого устройства, чтобы
// следующий локальный Tick оказался позже него.
func (c *Clock) Update(remote int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remote > c.last {
		c.last = remote
	}
}

// Now returns the current wall time in unix milliseconds without advancing the clock.
func (c *Clock) Now() int64 {
	return c.wall.Now().UnixMilli()
}

// Last returns the most recent value handed out or observed.
func (c *Clock) Last() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.last
}

// Restore sets the clock after a restart.
func (c *Clock) Restore(last int64) {
	c.Update(last)
}

// Wall returns the underlying time source.
func (c *Clock) Wall() clockwork.Clock {
	return c.wall
}
