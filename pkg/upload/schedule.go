package upload

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents future firings. It reports whether the timer was
	// still active.
	Stop() bool
}

// Scheduler runs the widget's deferred work: the progress interval, the
// completion delay and the asynchronous decode.
type Scheduler interface {
	// AfterFunc calls fn once after d.
	AfterFunc(d time.Duration, fn func()) Timer

	// Every calls fn every d until the returned Timer is stopped.
	// The first call happens after d.
	Every(d time.Duration, fn func()) Timer

	// Go runs fn asynchronously.
	Go(fn func())
}

// SystemScheduler returns a Scheduler backed by the runtime's timers and
// goroutines.
func SystemScheduler() Scheduler {
	return systemScheduler{}
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	t := &timeout{}
	t.timer = time.AfterFunc(d, func() {
		// Use atomic to prevent a fire racing with Stop.
		if t.fired.CompareAndSwap(false, true) {
			fn()
		}
	})
	return t
}

func (systemScheduler) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		d = time.Millisecond
	}
	iv := &interval{done: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				// A tick may already be selected when done closes.
				select {
				case <-iv.done:
					return
				default:
				}
				fn()
			case <-iv.done:
				return
			}
		}
	}()

	return iv
}

func (systemScheduler) Go(fn func()) {
	go fn()
}

type timeout struct {
	timer *time.Timer
	fired atomic.Bool
}

func (t *timeout) Stop() bool {
	active := t.fired.CompareAndSwap(false, true)
	t.timer.Stop()
	return active
}

type interval struct {
	done chan struct{}
	once sync.Once
}

func (iv *interval) Stop() bool {
	stopped := false
	iv.once.Do(func() {
		close(iv.done)
		stopped = true
	})
	return stopped
}
