package session

import (
	"testing"
	"time"
)

func TestCooldownGrantsWithoutPriorSuccess(t *testing.T) {
	c := NewCooldown(DefaultCooldown)

	granted, remaining := c.TryAcquire(time.Now())
	if !granted {
		t.Error("expected grant with no prior success")
	}
	if remaining != 0 {
		t.Errorf("expected zero remaining, got %v", remaining)
	}
}

func TestCooldownDeniesWithinWindow(t *testing.T) {
	c := NewCooldown(3000 * time.Millisecond)
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	c.RecordSuccess(t0)

	granted, remaining := c.TryAcquire(t0.Add(2999 * time.Millisecond))
	if granted {
		t.Fatal("expected denial 1ms before cooldown expiry")
	}
	// 1ms left, rounded up to a whole second for display.
	if remaining != time.Second {
		t.Errorf("expected remaining 1s, got %v", remaining)
	}
}

func TestCooldownGrantsAtExpiry(t *testing.T) {
	c := NewCooldown(3000 * time.Millisecond)
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	c.RecordSuccess(t0)

	granted, _ := c.TryAcquire(t0.Add(3000 * time.Millisecond))
	if !granted {
		t.Error("expected grant exactly at cooldown expiry")
	}
}

func TestCooldownRemainingRoundsUp(t *testing.T) {
	c := NewCooldown(3000 * time.Millisecond)
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	c.RecordSuccess(t0)

	granted, remaining := c.TryAcquire(t0.Add(500 * time.Millisecond))
	if granted {
		t.Fatal("expected denial")
	}
	// 2500ms left rounds up to 3s.
	if remaining != 3*time.Second {
		t.Errorf("expected remaining 3s, got %v", remaining)
	}
}

func TestCooldownReset(t *testing.T) {
	c := NewCooldown(3000 * time.Millisecond)
	t0 := time.Now()
	c.RecordSuccess(t0)
	c.Reset()

	granted, _ := c.TryAcquire(t0.Add(time.Millisecond))
	if !granted {
		t.Error("expected grant after reset")
	}
}
