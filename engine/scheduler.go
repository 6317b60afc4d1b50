package engine

import (
	"container/heap"
	"time"
)

// TaskID identifies a scheduled continuation for cancellation
type TaskID uint64

type task struct {
	id  TaskID
	due time.Duration
	fn  func()
}

// taskHeap orders by due time, then by scheduling order (ids are monotonic)
type taskHeap []task

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].id < h[j].id
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)   { *h = append(*h, x.(task)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}

// Scheduler runs cooperative continuations on the tick goroutine
// Continuations are keyed by GameClock time and fire from Poll, never from timers
// Reset drops everything pending and bumps the epoch so a Reset issued by a
// running continuation also stops the rest of that Poll batch
type Scheduler struct {
	clock     *GameClock
	tasks     taskHeap
	nextID    TaskID
	epoch     uint64
	cancelled map[TaskID]struct{}
}

// NewScheduler creates a scheduler reading time from clock
func NewScheduler(clock *GameClock) *Scheduler {
	return &Scheduler{
		clock:     clock,
		tasks:     make(taskHeap, 0, 16),
		cancelled: make(map[TaskID]struct{}),
	}
}

// After schedules fn to run on the first Poll at or after now+d
func (s *Scheduler) After(d time.Duration, fn func()) TaskID {
	if d < 0 {
		d = 0
	}
	s.nextID++
	id := s.nextID
	heap.Push(&s.tasks, task{id: id, due: s.clock.Now() + d, fn: fn})
	return id
}

// Cancel prevents a pending continuation from firing
// Returns false if the task already ran or was never scheduled
func (s *Scheduler) Cancel(id TaskID) bool {
	for _, t := range s.tasks {
		if t.id == id {
			s.cancelled[id] = struct{}{}
			return true
		}
	}
	return false
}

// Poll runs every continuation due at the current clock time
// Tasks scheduled while polling wait for the next Poll, even with zero delay
// Returns number of continuations executed
func (s *Scheduler) Poll() int {
	now := s.clock.Now()
	epoch := s.epoch
	limit := s.nextID
	ran := 0

	for len(s.tasks) > 0 {
		top := s.tasks[0]
		if top.due > now || top.id > limit {
			break
		}
		heap.Pop(&s.tasks)

		if _, skip := s.cancelled[top.id]; skip {
			delete(s.cancelled, top.id)
			continue
		}

		top.fn()
		ran++

		if s.epoch != epoch {
			break
		}
	}
	return ran
}

// Pending returns the number of continuations not yet run or cancelled
func (s *Scheduler) Pending() int {
	return len(s.tasks) - len(s.cancelled)
}

// Reset invalidates all pending continuations
func (s *Scheduler) Reset() {
	s.epoch++
	s.tasks = s.tasks[:0]
	clear(s.cancelled)
}
