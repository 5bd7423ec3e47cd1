// Package clock abstracts time for the pieces that stamp it into records:
// order creation times and idempotency key expiries. Tests swap in a mock so
// TTL math stays deterministic.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func NewRealClock() Clock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}

// MockClock reports a fixed instant until moved with Set or Add.
type MockClock struct {
	currentTime time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

func (c *MockClock) Now() time.Time {
	return c.currentTime
}

func (c *MockClock) Set(t time.Time) {
	c.currentTime = t
}

// Add advances the clock, e.g. to push an idempotency key past its TTL.
func (c *MockClock) Add(d time.Duration) {
	c.currentTime = c.currentTime.Add(d)
}
