// File: equeue/queue.go
// Package equeue implements the link's bounded event FIFO: single
// producer, single consumer, fixed capacity, by-value storage.
//
// The ring itself is github.com/eapache/queue, the same library the
// teacher reaches for in its task-dispatch executor. That library grows
// without bound, so Queue layers the capacity ceiling the link depends
// on (push fails once the ring holds EVENT_QUEUE_CAP items) on top of
// it as an explicit length check. Full and empty are told apart by the
// library's own length count, so every one of the capacity slots can
// hold an event; no cell is held back as in an index-based ring.
// Author: rinelu <rinelu@users.noreply.github.com>
// License: Apache-2.0
package equeue

import (
	"github.com/eapache/queue"

	"github.com/rinelu/wen/api"
)

// Queue is a fixed-capacity FIFO of api.Event values.
type Queue struct {
	inner *queue.Queue
	cap   int
}

// New creates a Queue with the given capacity. capacity must be
// positive.
func New(capacity int) *Queue {
	if capacity <= 0 {
		panic("equeue: capacity must be positive")
	}
	return &Queue{inner: queue.New(), cap: capacity}
}

// Push appends an event. It returns false, leaving the queue unchanged,
// if the queue is already at capacity.
func (q *Queue) Push(ev api.Event) bool {
	if q.inner.Length() >= q.cap {
		return false
	}
	q.inner.Add(ev)
	return true
}

// Pop removes and returns the oldest event. ok is false if the queue is
// empty.
func (q *Queue) Pop() (ev api.Event, ok bool) {
	if q.inner.Length() == 0 {
		return api.Event{}, false
	}
	v := q.inner.Peek()
	q.inner.Remove()
	return v.(api.Event), true
}

// Len returns the number of events currently queued.
func (q *Queue) Len() int { return q.inner.Length() }

// Cap returns the fixed capacity.
func (q *Queue) Cap() int { return q.cap }
