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

// Package eventprocessor delivers the events of an event queue to a
// callback in global timestamp order.
//
// Events are held back for a processing delay before being delivered: a
// ring buffer that is drained late can still contribute an event older than
// everything already queued, and delivering too eagerly would emit that
// event behind its successors. Once an event is older than the delay, no
// well-behaved ring can still produce anything before it.
package eventprocessor

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	eventqueue "github.com/inspektor-gadget/perf-event-queue/pkg/event-queue"
)

// defaultProcessingDelay is the time an event stays queued to give a
// lagging ring buffer the chance to deliver an older event first. One
// polling round over all per-CPU buffers is well below this.
const defaultProcessingDelay = 50 * time.Millisecond

const instrumentationName = "github.com/inspektor-gadget/perf-event-queue/pkg/event-processor"

// Processor drains an event queue through a delay window. It is driven
// synchronously by its caller and is not safe for concurrent use: the
// goroutine pushing events is expected to be the one calling
// ProcessOldEvents, as pkg/perf-reader does.
type Processor[T any] struct {
	queue    *eventqueue.EventQueue[T]
	callback func(eventqueue.Event[T])
	delay    uint64

	// lastDelivered is the watermark: the timestamp of the newest event
	// delivered so far. An event delivered behind it means a ring broke
	// its ordering contract or the delay is too small.
	lastDelivered uint64

	pushedEvents    metric.Int64Counter
	deliveredEvents metric.Int64Counter
	lateEvents      metric.Int64Counter
}

type options struct {
	delay         time.Duration
	meterProvider metric.MeterProvider
}

// Option configures a Processor using the functional option pattern.
type Option func(*options)

// WithProcessingDelay overrides the default delay events are held back for.
func WithProcessingDelay(delay time.Duration) Option {
	return func(o *options) {
		o.delay = delay
	}
}

// WithMeterProvider sets the provider used to create the processor's
// counters. The default is the global provider, a no-op unless the host
// process installed one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// New creates a Processor delivering events to callback.
func New[T any](callback func(eventqueue.Event[T]), opts ...Option) (*Processor[T], error) {
	o := options{
		delay:         defaultProcessingDelay,
		meterProvider: otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	meter := o.meterProvider.Meter(instrumentationName)
	pushed, err := meter.Int64Counter("events_pushed_total",
		metric.WithDescription("Events pushed into the queue"))
	if err != nil {
		return nil, fmt.Errorf("creating events_pushed_total counter: %w", err)
	}
	delivered, err := meter.Int64Counter("events_delivered_total",
		metric.WithDescription("Events delivered to the callback"))
	if err != nil {
		return nil, fmt.Errorf("creating events_delivered_total counter: %w", err)
	}
	late, err := meter.Int64Counter("events_late_total",
		metric.WithDescription("Events delivered behind the watermark"))
	if err != nil {
		return nil, fmt.Errorf("creating events_late_total counter: %w", err)
	}

	return &Processor[T]{
		queue:           eventqueue.New[T](),
		callback:        callback,
		delay:           uint64(o.delay.Nanoseconds()),
		pushedEvents:    pushed,
		deliveredEvents: delivered,
		lateEvents:      late,
	}, nil
}

// PushEvent adds one event to the queue. The per-ring ordering contract of
// eventqueue.EventQueue.Push applies.
func (p *Processor[T]) PushEvent(ev eventqueue.Event[T]) {
	p.queue.Push(ev)
	p.pushedEvents.Add(context.TODO(), 1)
}

// Len returns the number of events currently held back.
func (p *Processor[T]) Len() int {
	return p.queue.Len()
}

// ProcessOldEvents delivers, in timestamp order, every queued event whose
// timestamp is at least the processing delay behind now. now must come from
// the same clock as the event timestamps.
func (p *Processor[T]) ProcessOldEvents(now uint64) {
	for p.queue.HasEvent() {
		// The top event is the oldest pending one: once it is too
		// recent, everything else is too.
		if p.queue.TopEvent().Timestamp+p.delay > now {
			return
		}
		p.deliver(p.queue.PopEvent())
	}
}

// ProcessAllEvents delivers every queued event regardless of age. Meant for
// shutdown, once the producers are known to be done.
func (p *Processor[T]) ProcessAllEvents() {
	for p.queue.HasEvent() {
		p.deliver(p.queue.PopEvent())
	}
}

func (p *Processor[T]) deliver(ev eventqueue.Event[T]) {
	if ev.Timestamp < p.lastDelivered {
		log.Warnf("delivering event %d ns behind the previous one; a ring broke its ordering contract or the processing delay is too small",
			p.lastDelivered-ev.Timestamp)
		p.lateEvents.Add(context.TODO(), 1)
	} else {
		p.lastDelivered = ev.Timestamp
	}
	p.deliveredEvents.Add(context.TODO(), 1)
	p.callback(ev)
}
