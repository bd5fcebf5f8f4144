// Package session holds the per-session state around recognition attempts:
// the attendance cooldown, the retry budget and the capture session that owns
// the camera resources.
package session

import (
	"sync"
	"time"
)

// DefaultCooldown is the minimum gap between two accepted attendance events.
const DefaultCooldown = 3000 * time.Millisecond

// Cooldown prevents a freshly recognized person from being recorded twice in
// quick succession. It is checked before any detection work runs.
type Cooldown struct {
	mu          sync.Mutex
	cooldown    time.Duration
	lastSuccess time.Time
	hasSuccess  bool
}

// NewCooldown creates a cooldown gate. Non-positive durations fall back to
// DefaultCooldown.
func NewCooldown(d time.Duration) *Cooldown {
	if d <= 0 {
		d = DefaultCooldown
	}
	return &Cooldown{cooldown: d}
}

// TryAcquire reports whether a new recognition attempt may start at the given
// instant. When denied, remaining holds the wait time rounded up to whole
// seconds for display.
func (c *Cooldown) TryAcquire(now time.Time) (granted bool, remaining time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasSuccess {
		return true, 0
	}

	elapsed := now.Sub(c.lastSuccess)
	if elapsed >= c.cooldown {
		return true, 0
	}

	return false, roundUpToSecond(c.cooldown - elapsed)
}

// RecordSuccess marks an accepted attendance event. Callers invoke it only
// after a true accept decision, never on rejections.
func (c *Cooldown) RecordSuccess(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSuccess = now
	c.hasSuccess = true
}

// Reset clears the cooldown state, used on session stop.
func (c *Cooldown) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasSuccess = false
	c.lastSuccess = time.Time{}
}

// roundUpToSecond rounds a duration up to the next whole second.
func roundUpToSecond(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	secs := (d + time.Second - 1) / time.Second
	return secs * time.Second
}
