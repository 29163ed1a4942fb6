// Package loop hands work from background goroutines back to the single
// logic goroutine.
package loop

import "sync"

// Queue collects callbacks posted from any goroutine. Drain runs them, in
// post order, on the goroutine that calls it.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	closed  bool
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Post schedules fn for the next Drain. It reports false if the queue has
// been closed, in which case fn is dropped.
func (q *Queue) Post(fn func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.pending = append(q.pending, fn)
	return true
}

// Drain runs every callback posted before the call and returns how many ran.
// Callbacks posted while draining wait for the next Drain.
func (q *Queue) Drain() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Len returns the number of pending callbacks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close drops pending callbacks and rejects further posts.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.pending = nil
}
