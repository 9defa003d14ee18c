package sim

import (
	"container/heap"
	"time"
)

type entry struct {
	deadline time.Duration
	seq      uint64
	fn       func()
	index    int
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Scheduler runs callbacks at simulation deadlines. Entries due at the same
// time fire in the order they were armed. It is not safe for concurrent use;
// the World serialises access.
type Scheduler struct {
	now     time.Duration
	seq     uint64
	entries entryHeap
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Len reports how many callbacks are pending.
func (s *Scheduler) Len() int {
	return len(s.entries)
}

// NewTimer returns an unarmed single-slot timer bound to s.
func (s *Scheduler) NewTimer() *Timer {
	return &Timer{sched: s}
}

// Advance moves the scheduler to now and fires every entry due by then.
// Callbacks armed while advancing with a deadline of now or earlier wait for
// the next Advance, so a zero-delay re-arm cannot spin.
func (s *Scheduler) Advance(now time.Duration) int {
	if now > s.now {
		s.now = now
	}
	limit := s.seq
	fired := 0
	for len(s.entries) > 0 {
		next := s.entries[0]
		if next.deadline > s.now || next.seq >= limit {
			break
		}
		heap.Pop(&s.entries)
		fired++
		if next.fn != nil {
			next.fn()
		}
	}
	return fired
}

func (s *Scheduler) push(delay time.Duration, fn func()) *entry {
	if delay < 0 {
		delay = 0
	}
	e := &entry{deadline: s.now + delay, seq: s.seq, fn: fn}
	s.seq++
	heap.Push(&s.entries, e)
	return e
}

func (s *Scheduler) remove(e *entry) bool {
	if e == nil || e.index < 0 || e.index >= len(s.entries) || s.entries[e.index] != e {
		return false
	}
	heap.Remove(&s.entries, e.index)
	return true
}

// Timer holds at most one pending callback. Arming replaces whatever was
// pending, so an owner can never have two deferred transitions in flight.
type Timer struct {
	sched *Scheduler
	e     *entry
}

func (t *Timer) Arm(delay time.Duration, fn func()) {
	t.Cancel()
	if fn == nil {
		return
	}
	var e *entry
	e = t.sched.push(delay, func() {
		if t.e == e {
			t.e = nil
		}
		fn()
	})
	t.e = e
}

// Cancel drops the pending callback and reports whether there was one.
func (t *Timer) Cancel() bool {
	if t.e == nil {
		return false
	}
	removed := t.sched.remove(t.e)
	t.e = nil
	return removed
}

func (t *Timer) Pending() bool {
	return t.e != nil
}

// Deadline reports when the pending callback fires.
func (t *Timer) Deadline() (time.Duration, bool) {
	if t.e == nil {
		return 0, false
	}
	return t.e.deadline, true
}
