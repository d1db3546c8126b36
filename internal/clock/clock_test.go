// FILENAME: internal/clock/clock_test.go
package clock

import (
	"testing"
	"time"
)

func TestNow_Monotonic(t *testing.T) {
	prev := Now()
	for i := 0; i < 1000; i++ {
		cur := Now()
		if cur < prev {
			t.Fatalf("Clock went backwards: %d after %d", cur, prev)
		}
		prev = cur
	}
}

func TestNow_Microseconds(t *testing.T) {
	before := Now()
	time.Sleep(5 * time.Millisecond)
	delta := Now() - before
	if delta < 5000 {
		t.Errorf("Expected at least 5000us after a 5ms sleep, got %d", delta)
	}
	if delta > 5_000_000 {
		t.Errorf("Delta %d is not in microseconds", delta)
	}
}

func TestStopwatch_Laps(t *testing.T) {
	sw := NewStopwatch()

	t.Run("First wait counts from creation", func(t *testing.T) {
		time.Sleep(2 * time.Millisecond)
		wait := sw.Start()
		if wait < 2000 {
			t.Errorf("Expected wait >= 2000us, got %d", wait)
		}
	})

	t.Run("Wait is measured from the recorded end of the burst", func(t *testing.T) {
		sw.Stop(0)
		time.Sleep(3 * time.Millisecond)
		wait := sw.Start()
		if wait < 3000 {
			t.Errorf("Expected wait >= 3000us, got %d", wait)
		}
	})

	t.Run("Run longer than real time clamps wait to zero", func(t *testing.T) {
		sw.Start()
		sw.Stop(uint64(time.Hour / time.Microsecond))
		if wait := sw.Start(); wait != 0 {
			t.Errorf("Expected zero wait, got %d", wait)
		}
	})

	t.Run("Reset", func(t *testing.T) {
		sw.Reset()
		if wait := sw.Start(); wait > 1_000_000 {
			t.Errorf("Expected a small wait after reset, got %d", wait)
		}
	})
}

func TestStopwatch_Elapsed(t *testing.T) {
	sw := NewStopwatch()
	sw.Start()
	time.Sleep(time.Millisecond)
	if e := sw.Elapsed(); e < 1000 {
		t.Errorf("Expected elapsed >= 1000us, got %d", e)
	}
}
