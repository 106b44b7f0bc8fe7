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

/*
Package eventqueue merges events coming from multiple perf ring buffers into
a single stream sorted by timestamp, oldest first.

Events read from one ring buffer are already sorted by timestamp, so keeping
a single priority queue over every buffered event would waste work: its cost
grows with the number of buffered events. This queue instead keeps one FIFO
per ring buffer and a min-heap over those FIFOs, keyed by the timestamp of
each FIFO's front event. Push and pop then cost at most one heap adjustment
bounded by the number of rings with pending events, independent of how many
events are buffered behind the fronts.

Some events are known to be unordered even in relation to other events of
their own ring buffer, for example events timestamped at a point other than
their insertion into the buffer. Those are pushed with Ordered unset and go
through an additional min-heap keyed directly by timestamp.

The queue is clock-agnostic: timestamps are uint64 values that are only
compared with each other, never with time.Now(). bpf_ktime_get_ns(),
bpf_ktime_get_boot_ns() or a plain sequence counter all work, as long as
every event pushed into the same queue uses the same clock.

The queue is not safe for concurrent use. A reader goroutine that both
pushes and pops, like pkg/perf-reader, needs no locking; anything else must
serialize access externally.

# How to use it

	q := eventqueue.New[myEvent]()

	// Push events as they are read from the ring buffers. Events from the
	// same ring must be pushed in non-decreasing timestamp order.
	q.Push(eventqueue.Event[myEvent]{
		Timestamp: bpfEvent.Timestamp,
		Ring:      eventqueue.RingID(record.CPU),
		Ordered:   true,
		Payload:   ev,
	})

	// Drain in global timestamp order.
	for q.HasEvent() {
		ev := q.PopEvent()
		process(ev)
	}
*/
package eventqueue
