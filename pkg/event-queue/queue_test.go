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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ordered(ring RingID, timestamp uint64) Event[string] {
	return Event[string]{
		Timestamp: timestamp,
		Ring:      ring,
		Ordered:   true,
	}
}

func unordered(timestamp uint64) Event[string] {
	return Event[string]{
		Timestamp: timestamp,
	}
}

func drain(q *EventQueue[string]) []uint64 {
	var timestamps []uint64
	for q.HasEvent() {
		timestamps = append(timestamps, q.PopEvent().Timestamp)
	}
	return timestamps
}

func TestMergeAcrossRings(t *testing.T) {
	t.Parallel()

	q := New[string]()
	q.Push(ordered(1, 10))
	q.Push(ordered(1, 30))
	q.Push(ordered(2, 20))
	q.Push(ordered(2, 40))
	q.Push(unordered(25))

	assert.Equal(t, []uint64{10, 20, 25, 30, 40}, drain(q))
	assert.False(t, q.HasEvent())
}

func TestRingRevival(t *testing.T) {
	t.Parallel()

	q := New[string]()
	q.Push(ordered(1, 5))
	ev := q.PopEvent()
	require.Equal(t, uint64(5), ev.Timestamp)
	require.False(t, q.HasEvent())

	// Ring 1 drained and was forgotten; pushing for it again must not see
	// any stale state.
	q.Push(ordered(1, 50))
	q.Push(ordered(2, 1))

	assert.Equal(t, []uint64{1, 50}, drain(q))
}

func TestUnorderedOnly(t *testing.T) {
	t.Parallel()

	q := New[string]()
	for _, timestamp := range []uint64{42, 7, 19, 3, 100, 19} {
		q.Push(unordered(timestamp))
	}

	assert.Equal(t, []uint64{3, 7, 19, 19, 42, 100}, drain(q))
}

func TestRingIsolation(t *testing.T) {
	t.Parallel()

	q := New[string]()
	q.Push(Event[string]{Timestamp: 10, Ring: 1, Ordered: true, Payload: "b1"})
	q.Push(Event[string]{Timestamp: 20, Ring: 1, Ordered: true, Payload: "b2"})

	// A burst on another ring must not reorder or drop ring 1's events.
	for i := uint64(0); i < 100; i++ {
		q.Push(ordered(2, 15+i))
	}

	var ring1 []string
	for q.HasEvent() {
		ev := q.PopEvent()
		if ev.Ring == 1 {
			ring1 = append(ring1, ev.Payload)
		}
	}
	assert.Equal(t, []string{"b1", "b2"}, ring1)
}

func TestHasEvent(t *testing.T) {
	t.Parallel()

	q := New[string]()
	assert.False(t, q.HasEvent())
	assert.Zero(t, q.Len())

	q.Push(ordered(1, 10))
	assert.True(t, q.HasEvent())
	assert.Equal(t, 1, q.Len())

	q.Push(unordered(5))
	assert.Equal(t, 2, q.Len())

	q.PopEvent()
	assert.True(t, q.HasEvent())
	q.PopEvent()
	assert.False(t, q.HasEvent())
	assert.Zero(t, q.Len())
}

func TestTopEventIdempotent(t *testing.T) {
	t.Parallel()

	q := New[string]()
	q.Push(Event[string]{Timestamp: 10, Ring: 1, Ordered: true, Payload: "first"})
	q.Push(unordered(20))

	first := q.TopEvent()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, q.TopEvent())
	}
	assert.Equal(t, "first", q.PopEvent().Payload)
}

func TestTieBreakPrefersRingOrdered(t *testing.T) {
	t.Parallel()

	q := New[string]()
	q.Push(Event[string]{Timestamp: 10, Payload: "unordered"})
	q.Push(Event[string]{Timestamp: 10, Ring: 3, Ordered: true, Payload: "ordered"})

	top := q.TopEvent()
	assert.True(t, top.Ordered)
	assert.Equal(t, "ordered", top.Payload)

	// Stable under repeated peeks, and the pop order follows the peek.
	assert.Equal(t, top, q.TopEvent())
	assert.Equal(t, "ordered", q.PopEvent().Payload)
	assert.Equal(t, "unordered", q.PopEvent().Payload)
}

func TestPopEmptyPanics(t *testing.T) {
	t.Parallel()

	q := New[string]()
	require.Panics(t, func() { q.PopEvent() })
	require.Panics(t, func() { q.TopEvent() })

	// Draining a non-empty queue and popping once more also panics.
	q.Push(ordered(1, 10))
	q.PopEvent()
	require.Panics(t, func() { q.PopEvent() })
}

func TestMergeManyRingsRandom(t *testing.T) {
	t.Parallel()

	const (
		rings         = 16
		eventsPerRing = 500
		unorderedEvs  = 200
	)

	r := rand.New(rand.NewSource(42))
	q := New[string]()
	total := 0

	clocks := make([]uint64, rings)
	for i := 0; i < rings*eventsPerRing; i++ {
		ring := r.Intn(rings)
		clocks[ring] += uint64(r.Intn(100)) // deltas of 0 are valid
		q.Push(ordered(RingID(ring), clocks[ring]))
		total++
	}
	for i := 0; i < unorderedEvs; i++ {
		q.Push(unordered(uint64(r.Intn(rings * eventsPerRing * 50))))
		total++
	}

	timestamps := drain(q)
	require.Len(t, timestamps, total)
	for i := 1; i < len(timestamps); i++ {
		require.GreaterOrEqual(t, timestamps[i], timestamps[i-1],
			"merged stream must be non-decreasing at index %d", i)
	}
}

func TestInterleavedPushPop(t *testing.T) {
	t.Parallel()

	q := New[string]()
	q.Push(ordered(1, 10))
	q.Push(ordered(2, 20))

	assert.Equal(t, uint64(10), q.PopEvent().Timestamp)

	// Pushes arriving between pops still merge at the right position.
	q.Push(ordered(1, 15))
	q.Push(unordered(12))

	assert.Equal(t, []uint64{12, 15, 20}, drain(q))
}
