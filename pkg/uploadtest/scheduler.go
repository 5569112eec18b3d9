package uploadtest

import (
	"sync"
	"time"

	"github.com/vango-dev/dropzone/pkg/upload"
)

// Scheduler is a manual upload.Scheduler. Time only moves when Advance is
// called, and timers fire on the goroutine calling Advance.
//
// By default Go runs its function synchronously, so an offer has finished
// decoding when Offer returns. Call DeferGo to queue async work until
// RunPending instead.
type Scheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     uint64
	timers  []*timer
	deferGo bool
	queued  []func()
}

var _ upload.Scheduler = (*Scheduler)(nil)

// NewScheduler creates a manual scheduler at time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

type timer struct {
	s       *Scheduler
	seq     uint64
	due     time.Duration
	period  time.Duration // zero for one-shot timers
	fn      func()
	stopped bool
}

func (t *timer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	active := !t.stopped
	t.stopped = true
	return active
}

// AfterFunc implements upload.Scheduler.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) upload.Timer {
	return s.add(d, 0, fn)
}

// Every implements upload.Scheduler.
func (s *Scheduler) Every(d time.Duration, fn func()) upload.Timer {
	if d <= 0 {
		d = time.Nanosecond
	}
	return s.add(d, d, fn)
}

// Go implements upload.Scheduler.
func (s *Scheduler) Go(fn func()) {
	s.mu.Lock()
	if s.deferGo {
		s.queued = append(s.queued, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	fn()
}

// DeferGo makes Go queue its functions until RunPending is called.
func (s *Scheduler) DeferGo() *Scheduler {
	s.mu.Lock()
	s.deferGo = true
	s.mu.Unlock()
	return s
}

// RunPending runs the functions queued by Go and returns how many ran.
func (s *Scheduler) RunPending() int {
	s.mu.Lock()
	queued := s.queued
	s.queued = nil
	s.mu.Unlock()

	for _, fn := range queued {
		fn()
	}
	return len(queued)
}

// Advance moves time forward by d, firing every timer that comes due in
// order. Timers scheduled by fired callbacks also fire if they come due
// within d.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d

	for {
		t := s.nextDue(target)
		if t == nil {
			break
		}
		s.now = t.due
		if t.period > 0 {
			t.due += t.period
		} else {
			t.stopped = true
		}
		fn := t.fn
		s.mu.Unlock()
		fn()
		s.mu.Lock()
	}

	s.now = target
	s.compact()
	s.mu.Unlock()
}

// Now returns the elapsed manual time.
func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Active returns the number of timers that have not fired or been stopped.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (s *Scheduler) add(d, period time.Duration, fn func()) *timer {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &timer{s: s, seq: s.seq, due: s.now + d, period: period, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// nextDue returns the earliest active timer due at or before target.
// Ties fire in scheduling order.
func (s *Scheduler) nextDue(target time.Duration) *timer {
	var next *timer
	for _, t := range s.timers {
		if t.stopped || t.due > target {
			continue
		}
		if next == nil || t.due < next.due || (t.due == next.due && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (s *Scheduler) compact() {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	clear(s.timers[len(live):])
	s.timers = live
}
