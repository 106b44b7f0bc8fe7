//go:build linux

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

// Package perfreader drains a perf ring buffer reader and delivers its
// records in timestamp order.
//
// It is the glue between a cilium/ebpf perf.Reader and the merge queue: one
// goroutine reads raw records, decodes them with a caller-supplied
// function, pushes them into an event processor and periodically lets the
// processor deliver whatever is old enough. Since that single goroutine
// does both the pushing and the popping, the queue underneath needs no
// locking.
package perfreader

import (
	"errors"
	"fmt"

	"github.com/cilium/ebpf/perf"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	eventprocessor "github.com/inspektor-gadget/perf-event-queue/pkg/event-processor"
	eventqueue "github.com/inspektor-gadget/perf-event-queue/pkg/event-queue"
)

// DefaultPerfBufferPages is the per-CPU buffer size, in pages, to use when
// creating the perf.Reader this package drains:
//
//	perf.NewReader(events, perfreader.DefaultPerfBufferPages*os.Getpagesize())
const DefaultPerfBufferPages = 64

// RecordReader is the part of *perf.Reader the Reader needs. Tests inject
// fakes through it.
type RecordReader interface {
	Read() (perf.Record, error)
	Close() error
}

// DecodeFunc turns one raw perf record into an event. The decoder assigns
// the timestamp, the payload and the ordered tag; record.CPU is the natural
// RingID for ordered records, since each per-CPU buffer is written in
// timestamp order.
type DecodeFunc[T any] func(record perf.Record) (eventqueue.Event[T], error)

type options struct {
	clock            func() uint64
	processorOptions []eventprocessor.Option
}

// Option configures a Reader using the functional option pattern.
type Option func(*options)

// WithClock replaces the clock used to decide which queued events are old
// enough to deliver. The default is CLOCK_BOOTTIME, the clock
// bpf_ktime_get_boot_ns() timestamps events with.
func WithClock(clock func() uint64) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithProcessorOptions passes options to the underlying event processor.
func WithProcessorOptions(opts ...eventprocessor.Option) Option {
	return func(o *options) {
		o.processorOptions = append(o.processorOptions, opts...)
	}
}

// Reader drains a perf ring buffer reader and delivers its records to a
// callback in timestamp order.
type Reader[T any] struct {
	source RecordReader
	decode DecodeFunc[T]
	proc   *eventprocessor.Processor[T]
	clock  func() uint64
	done   chan struct{}
}

// New creates a Reader and starts draining source. callback runs on the
// reader's goroutine; it must not block for long or the ring buffers will
// overflow and drop samples.
func New[T any](source RecordReader, decode DecodeFunc[T], callback func(eventqueue.Event[T]), opts ...Option) (*Reader[T], error) {
	o := options{
		clock: bootTimeNanos,
	}
	for _, opt := range opts {
		opt(&o)
	}

	proc, err := eventprocessor.New[T](callback, o.processorOptions...)
	if err != nil {
		return nil, fmt.Errorf("creating event processor: %w", err)
	}

	r := &Reader[T]{
		source: source,
		decode: decode,
		proc:   proc,
		clock:  o.clock,
		done:   make(chan struct{}),
	}
	go r.run()
	return r, nil
}

func (r *Reader[T]) run() {
	defer close(r.done)

	for {
		record, err := r.source.Read()
		if err != nil {
			if !errors.Is(err, perf.ErrClosed) {
				log.Errorf("reading perf ring buffer: %s", err)
			}
			// The producer side is gone: whatever is still queued
			// is final, deliver it without waiting for the delay.
			r.proc.ProcessAllEvents()
			return
		}

		if record.LostSamples > 0 {
			log.Warnf("lost %d samples on cpu %d", record.LostSamples, record.CPU)
			continue
		}

		ev, err := r.decode(record)
		if err != nil {
			log.Warnf("decoding perf record from cpu %d: %s", record.CPU, err)
			continue
		}

		r.proc.PushEvent(ev)
		r.proc.ProcessOldEvents(r.clock())
	}
}

// Close stops the reader, flushes the events still queued through the
// callback and closes the underlying record source.
func (r *Reader[T]) Close() error {
	err := r.source.Close()
	<-r.done
	if err != nil {
		return fmt.Errorf("closing perf reader: %w", err)
	}
	return nil
}

// bootTimeNanos returns CLOCK_BOOTTIME in nanoseconds.
func bootTimeNanos() uint64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_BOOTTIME, &ts); err != nil {
		panic(err)
	}
	return uint64(ts.Nano())
}
