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

// ringHeap is the min-heap over the per-ring queues, keyed by the timestamp
// of each queue's front event. The heap holds references to the queues
// owned by the registry map; it never owns events itself.
//
// The heap is maintained lazily: appending to an already active ring leaves
// its front event, and therefore its key, untouched, so no adjustment is
// needed. Only two operations move a queue: heap.Push when a ring gets its
// first pending event (sift-up from the back) and heap.Fix on index 0 after
// the front event of the root was popped (sift-down from the root). A
// drained queue has no key and must be evicted with heap.Pop before any
// other operation looks at the heap.
type ringHeap[T any] []*ringQueue[T]

func (h ringHeap[T]) Len() int { return len(h) }

func (h ringHeap[T]) Less(i, j int) bool {
	return h[i].front().Timestamp < h[j].front().Timestamp
}

func (h ringHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *ringHeap[T]) Push(x any) {
	*h = append(*h, x.(*ringQueue[T]))
}

func (h *ringHeap[T]) Pop() any {
	old := *h
	n := len(old)
	rq := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return rq
}

// unorderedHeap is the min-heap owning the events that do not follow any
// per-ring ordering contract, keyed directly by timestamp.
type unorderedHeap[T any] []Event[T]

func (h unorderedHeap[T]) Len() int { return len(h) }

func (h unorderedHeap[T]) Less(i, j int) bool {
	return h[i].Timestamp < h[j].Timestamp
}

func (h unorderedHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *unorderedHeap[T]) Push(x any) {
	*h = append(*h, x.(Event[T]))
}

func (h *unorderedHeap[T]) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	old[n-1] = Event[T]{}
	*h = old[:n-1]
	return ev
}
