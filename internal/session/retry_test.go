package session

import "testing"

func TestRetryBudgetExhaustsAfterMax(t *testing.T) {
	r := NewRetryBudget(3)

	for i := range 3 {
		if r.Exhausted() {
			t.Fatalf("budget exhausted too early at attempt %d", i)
		}
		if !r.Attempt() {
			t.Fatalf("expected attempt %d permitted", i+1)
		}
	}

	if !r.Exhausted() {
		t.Error("expected exhaustion exactly after 3rd attempt")
	}
	if r.Attempt() {
		t.Error("expected 4th attempt refused without reset")
	}
	if r.Count() != 3 {
		t.Errorf("expected count 3, got %d", r.Count())
	}
}

func TestRetryBudgetReset(t *testing.T) {
	r := NewRetryBudget(3)
	for range 3 {
		r.Attempt()
	}
	r.Reset()

	if r.Exhausted() {
		t.Error("expected fresh budget after reset")
	}
	if !r.Attempt() {
		t.Error("expected attempt permitted after reset")
	}
}
