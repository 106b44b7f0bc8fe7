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

// ringQueue holds the pending events of a single ring buffer, in the order
// the producer pushed them. The producer guarantees that order is
// non-decreasing by timestamp; the queue does not verify it, so the front
// event always carries the smallest timestamp of the ring.
type ringQueue[T any] struct {
	ring   RingID
	events []Event[T]
}

func (r *ringQueue[T]) enqueue(ev Event[T]) {
	r.events = append(r.events, ev)
}

// front returns the pending event with the smallest timestamp of this ring
// without removing it. Only called on non-empty queues.
func (r *ringQueue[T]) front() *Event[T] {
	return &r.events[0]
}

func (r *ringQueue[T]) dequeue() Event[T] {
	ev := r.events[0]
	// Zero the slot so the backing array does not keep the payload alive.
	r.events[0] = Event[T]{}
	r.events = r.events[1:]
	return ev
}

func (r *ringQueue[T]) empty() bool {
	return len(r.events) == 0
}
