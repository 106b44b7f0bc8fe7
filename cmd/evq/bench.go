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

package main

import (
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	eventqueue "github.com/inspektor-gadget/perf-event-queue/pkg/event-queue"
)

func newBenchCmd() *cobra.Command {
	var (
		rings             int
		events            int
		unorderedFraction float64
		seed              int64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure queue throughput on synthetic per-ring event streams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(rings, events, unorderedFraction, seed)
		},
	}
	cmd.Flags().IntVar(&rings, "rings", 8, "number of simulated ring buffers")
	cmd.Flags().IntVar(&events, "events", 1_000_000, "total number of events to push")
	cmd.Flags().Float64Var(&unorderedFraction, "unordered-fraction", 0.01, "fraction of events pushed outside any per-ring ordering")
	cmd.Flags().Int64Var(&seed, "seed", 1, "seed for the synthetic streams")

	return cmd
}

func runBench(rings int, events int, unorderedFraction float64, seed int64) error {
	if rings < 1 {
		return fmt.Errorf("need at least one ring, got %d", rings)
	}
	if unorderedFraction < 0 || unorderedFraction > 1 {
		return fmt.Errorf("unordered fraction must be in [0, 1], got %f", unorderedFraction)
	}

	r := rand.New(rand.NewSource(seed))
	q := eventqueue.New[struct{}]()
	clocks := make([]uint64, rings)

	log.Infof("pushing %d events across %d rings (%.1f%% unordered)",
		events, rings, unorderedFraction*100)

	pushStart := time.Now()
	var globalClock uint64
	for i := 0; i < events; i++ {
		ring := r.Intn(rings)
		delta := uint64(r.Intn(1000))
		clocks[ring] += delta
		globalClock += delta

		if r.Float64() < unorderedFraction {
			q.Push(eventqueue.Event[struct{}]{Timestamp: globalClock})
			continue
		}
		q.Push(eventqueue.Event[struct{}]{
			Timestamp: clocks[ring],
			Ring:      eventqueue.RingID(ring),
			Ordered:   true,
		})
	}
	pushDuration := time.Since(pushStart)

	drainStart := time.Now()
	last := uint64(0)
	popped := 0
	for q.HasEvent() {
		ev := q.PopEvent()
		if ev.Timestamp < last {
			return fmt.Errorf("merge violated ordering: %d after %d", ev.Timestamp, last)
		}
		last = ev.Timestamp
		popped++
	}
	drainDuration := time.Since(drainStart)

	if popped != events {
		return fmt.Errorf("pushed %d events but popped %d", events, popped)
	}

	log.Infof("push: %s (%.0f events/s)", pushDuration, float64(events)/pushDuration.Seconds())
	log.Infof("drain: %s (%.0f events/s)", drainDuration, float64(events)/drainDuration.Seconds())
	return nil
}
