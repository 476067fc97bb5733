// Copyright (c) 2026 The Reactor Authors. All rights reserved.
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

package reactor

import (
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/panjf2000/reactor/pkg/errors"
	"github.com/panjf2000/reactor/pkg/logging"
	"github.com/panjf2000/reactor/pkg/pool/goroutine"
)

// Dispatcher decides which goroutine runs a ready handler task.
//
// Dispatch must never drop a task: it either runs it, schedules it, or
// returns an error, in which case the caller runs the task itself.
type Dispatcher interface {
	// Dispatch runs or schedules task.
	Dispatch(task func()) error

	// Shutdown stops accepting new tasks and waits up to timeout for the
	// in-flight ones to finish, a non-positive timeout waits indefinitely.
	Shutdown(timeout time.Duration) error
}

// InlineDispatcher runs every task synchronously on the event-loop.
// A slow handler stalls all I/O, so it only suits handlers that never block.
type InlineDispatcher struct{}

// NewInlineDispatcher returns a dispatcher running tasks on the caller's goroutine.
func NewInlineDispatcher() *InlineDispatcher {
	return &InlineDispatcher{}
}

// Dispatch runs task right away.
func (*InlineDispatcher) Dispatch(task func()) error {
	task()
	return nil
}

// Shutdown has nothing to wait for.
func (*InlineDispatcher) Shutdown(time.Duration) error {
	return nil
}

// QueuePolicy tells a PoolDispatcher what to do when all workers are busy.
type QueuePolicy int

const (
	// BlockWhenFull makes Dispatch wait for an idle worker.
	BlockWhenFull QueuePolicy = iota

	// GrowWhenFull runs the overflowing task on an extra goroutine.
	GrowWhenFull
)

func (p QueuePolicy) String() string {
	switch p {
	case BlockWhenFull:
		return "block"
	case GrowWhenFull:
		return "grow"
	}
	return "unknown"
}

// PoolDispatcher hands tasks to a fixed-size worker pool.
type PoolDispatcher struct {
	pool     *goroutine.Pool
	policy   QueuePolicy
	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
	running  atomic.Int64
}

// NewPoolDispatcher creates a dispatcher backed by workers goroutines.
func NewPoolDispatcher(workers int, policy QueuePolicy, logger logging.Logger) (*PoolDispatcher, error) {
	if logger == nil {
		logger = logging.GetDefaultLogger()
	}
	p, err := goroutine.New(workers, policy == GrowWhenFull, logger, func(v any) {
		logger.Errorf("worker exits from panic: %v", v)
	})
	if err != nil {
		return nil, err
	}
	return &PoolDispatcher{pool: p, policy: policy}, nil
}

// Dispatch submits task to the pool, waiting for an idle worker or spawning
// an extra goroutine according to the queue policy.
func (d *PoolDispatcher) Dispatch(task func()) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return errors.ErrDispatcherClosed
	}

	d.inflight.Add(1)
	fn := func() {
		d.running.Inc()
		defer func() {
			d.running.Dec()
			d.inflight.Done()
		}()
		task()
	}
	err := d.pool.Submit(fn)
	if err == goroutine.ErrPoolOverload && d.policy == GrowWhenFull {
		go fn()
		return nil
	}
	if err != nil {
		d.inflight.Done()
	}
	return err
}

// Workers returns the capacity of the pool.
func (d *PoolDispatcher) Workers() int {
	return d.pool.Cap()
}

// Running returns the number of tasks being executed right now.
func (d *PoolDispatcher) Running() int {
	return int(d.running.Load())
}

// Shutdown stops accepting tasks, waits for in-flight ones and releases the pool.
func (d *PoolDispatcher) Shutdown(timeout time.Duration) (err error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()

	if timeout <= 0 {
		<-done
	} else {
		timer := time.NewTimer(timeout)
		select {
		case <-done:
			timer.Stop()
		case <-timer.C:
			err = errors.ErrDispatcherTimeout
		}
	}

	d.pool.Release()
	return
}
