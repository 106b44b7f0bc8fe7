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

import (
	"fmt"
	"testing"
)

// benchmarkPushPop keeps batchSize events per ring in flight and measures
// the steady-state cost of one push plus one pop. The per-event cost should
// depend on the number of rings, not on batchSize.
func benchmarkPushPop(b *testing.B, rings int, batchSize int) {
	q := New[int]()
	clocks := make([]uint64, rings)

	for ring := 0; ring < rings; ring++ {
		for i := 0; i < batchSize; i++ {
			clocks[ring]++
			q.Push(Event[int]{Timestamp: clocks[ring], Ring: RingID(ring), Ordered: true})
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ring := i % rings
		clocks[ring] += uint64(rings)
		q.Push(Event[int]{Timestamp: clocks[ring], Ring: RingID(ring), Ordered: true})
		q.PopEvent()
	}
}

func BenchmarkPushPop(b *testing.B) {
	for _, rings := range []int{1, 4, 16, 64} {
		for _, batchSize := range []int{1, 64, 4096} {
			b.Run(fmt.Sprintf("rings=%d/batch=%d", rings, batchSize), func(b *testing.B) {
				benchmarkPushPop(b, rings, batchSize)
			})
		}
	}
}

func BenchmarkPushPopUnordered(b *testing.B) {
	q := New[int]()
	for i := 0; i < 4096; i++ {
		q.Push(Event[int]{Timestamp: uint64(i)})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Push(Event[int]{Timestamp: uint64(4096 + i)})
		q.PopEvent()
	}
}
