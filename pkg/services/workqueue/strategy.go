package workqueue

import "sync"

// ConcurrencyStrategy decides whether another task may start given the
// tasks already running.
type ConcurrencyStrategy interface {
	// CanStart returns true if one more task may start now.
	CanStart() bool
	// OnStart is called when a task starts.
	OnStart()
	// OnComplete is called when a task reaches a terminal state.
	OnComplete()
}

// SerializedStrategy runs one task at a time.
type SerializedStrategy struct {
	ThrottledStrategy
}

// NewSerializedStrategy creates a strategy that runs tasks one after another.
func NewSerializedStrategy() *SerializedStrategy {
	return &SerializedStrategy{ThrottledStrategy{maxConcurrent: 1}}
}

// ThrottledStrategy allows up to maxConcurrent tasks to run in parallel.
type ThrottledStrategy struct {
	mu            sync.Mutex
	maxConcurrent int
	running       int
}

// NewThrottledStrategy creates a strategy that allows up to maxConcurrent
// tasks at once. Values below one are treated as one.
func NewThrottledStrategy(maxConcurrent int) *ThrottledStrategy {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &ThrottledStrategy{maxConcurrent: maxConcurrent}
}

func (s *ThrottledStrategy) CanStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running < s.maxConcurrent
}

func (s *ThrottledStrategy) OnStart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running++
}

func (s *ThrottledStrategy) OnComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running > 0 {
		s.running--
	}
}

