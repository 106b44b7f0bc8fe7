// Copyright 2026 The Inspektor Gadget authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package eventqueue

import "container/heap"

// EventQueue merges the events of any number of ring buffers into a single
// stream sorted by timestamp. See the package documentation for how it
// works and for the ordering contract producers must follow.
type EventQueue[T any] struct {
	// rings associates a ring buffer with its queue of pending events. A
	// ring is present iff it has at least one pending event: the entry is
	// deleted the instant its queue drains and recreated transparently if
	// the ring pushes again. The heap below holds pointers into this map's
	// values, which stay valid across map growth and deletion.
	rings map[RingID]*ringQueue[T]

	// orderedRings is the heap of the queues in rings, keyed by each
	// queue's front event timestamp.
	orderedRings ringHeap[T]

	// unordered holds the events pushed with Ordered unset.
	unordered unorderedHeap[T]
}

// New creates an empty event queue for payloads of type T.
func New[T any]() *EventQueue[T] {
	return &EventQueue[T]{
		rings: make(map[RingID]*ringQueue[T]),
	}
}

// Push adds one event to the queue. Events with Ordered set must be pushed
// in non-decreasing timestamp order per ring; this is a precondition of the
// merge, not something Push verifies.
func (q *EventQueue[T]) Push(ev Event[T]) {
	if !ev.Ordered {
		heap.Push(&q.unordered, ev)
		return
	}

	if rq, ok := q.rings[ev.Ring]; ok {
		// The front of the queue does not change, so the position of
		// the queue in the heap does not change either.
		rq.enqueue(ev)
		return
	}

	rq := &ringQueue[T]{ring: ev.Ring}
	rq.enqueue(ev)
	q.rings[ev.Ring] = rq
	heap.Push(&q.orderedRings, rq)
}

// HasEvent reports whether at least one event is pending.
func (q *EventQueue[T]) HasEvent() bool {
	return len(q.orderedRings) > 0 || len(q.unordered) > 0
}

// Len returns the number of pending events.
func (q *EventQueue[T]) Len() int {
	n := len(q.unordered)
	for _, rq := range q.rings {
		n += len(rq.events)
	}
	return n
}

// TopEvent returns the pending event with the smallest timestamp without
// removing it. When the earliest ring-ordered event and the earliest
// unordered event carry the same timestamp, the ring-ordered one wins; the
// choice is stable across repeated calls with no intervening Push or
// PopEvent. The returned pointer is only valid until the next Push or
// PopEvent. TopEvent panics if the queue is empty.
func (q *EventQueue[T]) TopEvent() *Event[T] {
	if q.nextFromRing() {
		return q.orderedRings[0].front()
	}
	return &q.unordered[0]
}

// PopEvent removes and returns the pending event with the smallest
// timestamp, selected by the same rule as TopEvent. PopEvent panics if the
// queue is empty.
func (q *EventQueue[T]) PopEvent() Event[T] {
	if !q.nextFromRing() {
		return heap.Pop(&q.unordered).(Event[T])
	}

	rq := q.orderedRings[0]
	ev := rq.dequeue()
	if rq.empty() {
		// A drained queue has no key to sift with: evict it and forget
		// the ring until it pushes again.
		heap.Pop(&q.orderedRings)
		delete(q.rings, rq.ring)
	} else {
		// Only the root key may have changed: a single sift-down
		// restores the heap invariant.
		heap.Fix(&q.orderedRings, 0)
	}
	return ev
}

// nextFromRing reports whether the next event to pop comes from the heap of
// ring queues rather than from the unordered heap. It panics when both are
// empty: popping from an empty queue is a bug in the caller, and returning
// anything here would corrupt the merge order with no visible symptom.
func (q *EventQueue[T]) nextFromRing() bool {
	hasRing := len(q.orderedRings) > 0
	hasUnordered := len(q.unordered) > 0
	switch {
	case hasRing && hasUnordered:
		return q.orderedRings[0].front().Timestamp <= q.unordered[0].Timestamp
	case hasRing:
		return true
	case hasUnordered:
		return false
	default:
		panic("eventqueue: TopEvent/PopEvent called on an empty queue")
	}
}
