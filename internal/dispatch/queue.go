// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package dispatch provides the message queue that carries work from any
// goroutine onto the single rendering goroutine.
package dispatch

import "sync"

// Queue is an unbounded FIFO of closures. The zero value is ready to use,
// but a Queue must not be copied.
//
// Post may be called from any goroutine. Drain must only be called from
// the goroutine that owns the state the closures mutate.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	spare   []func() // recycled backing array
}

// Post appends fn to the queue. It never blocks on the consumer.
// Nil functions are ignored.
func (q *Queue) Post(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Drain runs, in order, every closure queued before the call and returns
// how many ran. Closures posted while draining, including by the closures
// themselves, are left for the next Drain.
func (q *Queue) Drain() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = q.spare[:0]
	q.spare = nil
	q.mu.Unlock()

	for i, fn := range batch {
		fn()
		batch[i] = nil
	}

	q.mu.Lock()
	if q.spare == nil {
		q.spare = batch[:0]
	}
	q.mu.Unlock()
	return len(batch)
}

// Len returns the number of queued closures.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Reset drops every queued closure without running it.
func (q *Queue) Reset() {
	q.mu.Lock()
	clear(q.pending)
	q.pending = q.pending[:0]
	q.mu.Unlock()
}
