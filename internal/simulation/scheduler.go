package simulation

import (
	"sync"
	"time"

	"mockchat/internal/observability"
)

// Scheduler runs delayed tasks grouped by key. Cancelling a key stops every task still
// pending under it.
type Scheduler struct {
	clock Clock

	mu      sync.Mutex
	tasks   map[string]map[uint64]Timer
	nextID  uint64
	stopped bool
}

// NewScheduler builds a scheduler on clock.
func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{clock: clock, tasks: make(map[string]map[uint64]Timer)}
}

// Schedule runs fn after delay unless key is cancelled first. It reports false once the
// scheduler is stopped.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.nextID++
	id := s.nextID
	if s.tasks[key] == nil {
		s.tasks[key] = make(map[uint64]Timer)
	}
	s.tasks[key][id] = s.clock.AfterFunc(delay, func() {
		if !s.take(key, id) {
			return
		}
		fn()
	})
	return true
}

// take removes a task that is about to run. It fails if the task was cancelled meanwhile.
func (s *Scheduler) take(key string, id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, ok := s.tasks[key]
	if !ok {
		return false
	}
	if _, ok := tasks[id]; !ok {
		return false
	}
	delete(tasks, id)
	if len(tasks) == 0 {
		delete(s.tasks, key)
	}
	return true
}

// Cancel stops all pending tasks under key and returns how many were stopped.
func (s *Scheduler) Cancel(key string) int {
	s.mu.Lock()
	tasks := s.tasks[key]
	delete(s.tasks, key)
	s.mu.Unlock()

	for _, t := range tasks {
		t.Stop()
	}
	if len(tasks) > 0 {
		observability.AddSimulationCancelled(len(tasks))
	}
	return len(tasks)
}

// Pending returns the number of tasks waiting under key.
func (s *Scheduler) Pending(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks[key])
}

// Stop cancels everything and rejects new tasks.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	all := s.tasks
	s.tasks = make(map[string]map[uint64]Timer)
	s.mu.Unlock()

	for _, tasks := range all {
		for _, t := range tasks {
			t.Stop()
		}
	}
}
