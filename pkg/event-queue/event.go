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

// RingID identifies one ring buffer, i.e. one ordering domain. Typical
// values are the per-CPU index of a perf buffer or the file descriptor used
// to read from it.
type RingID int

// Event is one captured record to be merged into the global order.
type Event[T any] struct {
	// Timestamp of the event in nanoseconds. The clock does not matter as
	// long as every event pushed into the same queue uses the same one.
	Timestamp uint64

	// Ring is the ring buffer the event was read from. It is only
	// meaningful when Ordered is set.
	Ring RingID

	// Ordered reports that the event respects the per-ring ordering
	// contract: no event with a smaller timestamp will ever be pushed for
	// the same Ring after this one.
	Ordered bool

	// Payload is the decoded event itself. The queue never inspects it.
	Payload T
}
