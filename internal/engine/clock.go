package engine

import (
	"sync"
	"time"
)

// Clock отдаёт текущее время. Календарный день берётся в часовом поясе
// возвращённого времени.
type Clock interface {
	Now() time.Time
}

// LocationClock — настоящие часы в заданном часовом поясе.
type LocationClock struct {
	Loc *time.Location
}

func (c LocationClock) Now() time.Time {
	if c.Loc == nil {
		return time.Now()
	}
	return time.Now().In(c.Loc)
}

// FakeClock — управляемые часы для тестов.
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{t: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// AdvanceDays переводит часы на n календарных дней.
func (c *FakeClock) AdvanceDays(n int) {
	c.mu.Lock()
	c.t = c.t.AddDate(0, 0, n)
	c.mu.Unlock()
}
