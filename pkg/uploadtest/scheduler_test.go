package uploadtest

import (
	"testing"
	"time"
)

func TestScheduler_AfterFunc(t *testing.T) {
	s := NewScheduler()
	var fired []time.Duration
	s.AfterFunc(30*time.Millisecond, func() { fired = append(fired, s.Now()) })
	s.AfterFunc(10*time.Millisecond, func() { fired = append(fired, s.Now()) })

	s.Advance(5 * time.Millisecond)
	if len(fired) != 0 {
		t.Fatalf("fired early: %v", fired)
	}
	s.Advance(25 * time.Millisecond)
	if len(fired) != 2 || fired[0] != 10*time.Millisecond || fired[1] != 30*time.Millisecond {
		t.Errorf("fired = %v, want [10ms 30ms]", fired)
	}
	if s.Active() != 0 {
		t.Errorf("Active() = %d, want 0", s.Active())
	}
}

func TestScheduler_EveryAndStop(t *testing.T) {
	s := NewScheduler()
	n := 0
	tm := s.Every(100*time.Millisecond, func() { n++ })

	s.Advance(350 * time.Millisecond)
	if n != 3 {
		t.Errorf("ticks = %d, want 3", n)
	}
	if !tm.Stop() {
		t.Error("Stop() should report true")
	}
	s.Advance(time.Second)
	if n != 3 {
		t.Errorf("ticks after Stop = %d, want 3", n)
	}
	if tm.Stop() {
		t.Error("second Stop() should report false")
	}
}

func TestScheduler_CallbackSchedulesWithinAdvance(t *testing.T) {
	s := NewScheduler()
	var order []string
	s.AfterFunc(10*time.Millisecond, func() {
		order = append(order, "first")
		s.AfterFunc(10*time.Millisecond, func() { order = append(order, "second") })
	})

	s.Advance(20 * time.Millisecond)
	if len(order) != 2 {
		t.Errorf("order = %v, want [first second]", order)
	}
}

func TestScheduler_StopFromCallback(t *testing.T) {
	s := NewScheduler()
	n := 0
	var tm interface{ Stop() bool }
	tm = s.Every(10*time.Millisecond, func() {
		n++
		if n == 2 {
			tm.Stop()
		}
	})

	s.Advance(100 * time.Millisecond)
	if n != 2 {
		t.Errorf("ticks = %d, want 2", n)
	}
}

func TestScheduler_DeferGo(t *testing.T) {
	s := NewScheduler()
	ran := false
	s.Go(func() { ran = true })
	if !ran {
		t.Fatal("Go should run synchronously by default")
	}

	s.DeferGo()
	ran = false
	s.Go(func() { ran = true })
	if ran {
		t.Fatal("Go ran before RunPending")
	}
	if got := s.RunPending(); got != 1 {
		t.Errorf("RunPending() = %d, want 1", got)
	}
	if !ran {
		t.Error("queued function did not run")
	}
	if got := s.RunPending(); got != 0 {
		t.Errorf("second RunPending() = %d, want 0", got)
	}
}
