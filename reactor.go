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

//go:build linux

package reactor

import (
	"runtime"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/panjf2000/reactor/pkg/errors"
	"github.com/panjf2000/reactor/pkg/logging"
	"github.com/panjf2000/reactor/pkg/netpoll"
	"github.com/panjf2000/reactor/pkg/queue"
)

const (
	stateStopped int32 = iota
	stateRunning
	stateStopping
)

// Handle identifies the registration of a channel with a reactor.
type Handle struct {
	id uint64
	ch *Channel
}

// Channel returns the registered channel.
func (h Handle) Channel() *Channel { return h.ch }

// Reactor demultiplexes readiness events of its channels on a single
// event-loop goroutine and dispatches them to their handlers.
type Reactor struct {
	opts       *Options
	logger     logging.Logger
	dispatcher Dispatcher

	mu       sync.RWMutex // serializes state transitions with registrations and wakeups
	state    atomic.Int32
	poller   *netpoll.Poller
	channels map[int]*Channel // owned by the event-loop while running
	count    atomic.Int32
	nextID   atomic.Uint64
	changes  *queue.LockFreeQueue[*pendingChange]
	eg       *errgroup.Group
}

// New creates a stopped reactor.
func New(opts ...Option) *Reactor {
	options := loadOptions(opts...)
	return &Reactor{
		opts:       options,
		logger:     options.Logger,
		dispatcher: options.Dispatcher,
		channels:   make(map[int]*Channel),
		changes:    queue.New[*pendingChange](),
	}
}

// IsRunning reports whether the event-loop is running.
func (r *Reactor) IsRunning() bool {
	return r.state.Load() == stateRunning
}

// CountChannels returns the number of channels currently registered,
// accepted channels included.
func (r *Reactor) CountChannels() int {
	return int(r.count.Load())
}

// RegisterChannel registers ch with handler h, the channel is watched for the
// operations in its interest set. Registering a channel with a running reactor
// takes effect on the next iteration of the event-loop.
func (r *Reactor) RegisterChannel(ch *Channel, h Handler) (Handle, error) {
	if ch == nil {
		return Handle{}, errors.ErrNilChannel
	}
	if h == nil {
		return Handle{}, errors.ErrNilHandler
	}
	if ch.IsClosed() {
		return Handle{}, errors.ErrChannelClosed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if ch.reactor != nil {
		return Handle{}, errors.ErrChannelRegistered
	}
	state := r.state.Load()
	if state == stateStopping {
		return Handle{}, errors.ErrReactorShutdown
	}

	ch.reactor, ch.handler, ch.id = r, h, r.nextID.Inc()
	if ch.kind == KindListener {
		ch.interest.Store(uint32(OpAccept))
	}
	r.count.Inc()
	if state == stateStopped {
		r.channels[ch.fd] = ch
	} else {
		r.submitLocked(&pendingChange{ch: ch, op: changeRegister})
	}
	return Handle{id: ch.id, ch: ch}, nil
}

// DeregisterChannel stops watching the channel of h and closes it, its
// handler's OnClosed is called with a nil error. A channel with a handler
// task in flight is closed once the task is done.
func (r *Reactor) DeregisterChannel(h Handle) error {
	ch := h.ch
	if ch == nil || ch.reactor != r || ch.id != h.id {
		return errors.ErrInvalidHandle
	}

	r.mu.Lock()
	switch r.state.Load() {
	case stateRunning:
		r.submitLocked(&pendingChange{ch: ch, op: changeClose})
		r.mu.Unlock()
		return nil
	case stateStopping:
		r.mu.Unlock()
		return errors.ErrReactorShutdown
	}
	// The socket is released and the handler notified outside r.mu, both may
	// call back into the reactor.
	unlinked, err := r.unlink(ch)
	r.mu.Unlock()
	if !unlinked {
		return err
	}
	err = multierr.Append(err, ch.release())
	r.notifyClosed(ch, nil)
	return err
}

// Start brings up the event-loop, it returns once the loop is running.
func (r *Reactor) Start() error {
	r.mu.Lock()
	switch r.state.Load() {
	case stateRunning:
		r.mu.Unlock()
		return errors.ErrReactorRunning
	case stateStopping:
		r.mu.Unlock()
		return errors.ErrReactorShutdown
	}

	if len(r.channels) == 0 {
		r.mu.Unlock()
		return &errors.StartupError{Err: errors.ErrNoChannels}
	}
	p, err := netpoll.OpenPoller(r.opts.EventsCap)
	if err != nil {
		r.mu.Unlock()
		return &errors.StartupError{Err: err}
	}
	r.poller = p
	var failed []closedChannel
	for _, ch := range r.channels {
		if err := r.arm(ch); err != nil {
			r.logger.Errorf("failed to register %s: %v", ch, err)
			_, _ = r.unlink(ch)
			failed = append(failed, closedChannel{ch, err})
		}
	}

	started := make(chan struct{})
	r.eg = new(errgroup.Group)
	r.state.Store(stateRunning)
	r.eg.Go(func() error {
		if r.opts.LockOSThread {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
		}
		close(started)
		return r.run()
	})
	r.mu.Unlock()

	for _, f := range failed {
		_ = f.ch.release()
		r.notifyClosed(f.ch, f.err)
	}
	<-started
	r.logger.Debugf("reactor is running with %d channels", r.CountChannels())
	return nil
}

// Stop shuts the reactor down: it lets the event-loop finish its current
// pass, waits for in-flight handler tasks, then closes every channel, whose
// OnClosed gets errors.ErrReactorShutdown. Stopping a reactor that isn't
// running is a no-op.
//
// Stop must not be called from within a handler, return Shutdown instead.
func (r *Reactor) Stop() error {
	r.mu.Lock()
	if r.state.Load() != stateRunning {
		r.mu.Unlock()
		return nil
	}
	r.state.Store(stateStopping)
	r.mu.Unlock()

	var errs error
	if err := r.poller.Wakeup(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := r.eg.Wait(); err != nil {
		r.logger.Errorf("event-loop exited with error: %v", err)
		errs = multierr.Append(errs, err)
	}
	if err := r.dispatcher.Shutdown(r.opts.ShutdownTimeout); err != nil {
		r.logger.Warnf("failed to shut down dispatcher: %v", err)
		errs = multierr.Append(errs, err)
	}

	// The event-loop is gone, nothing else touches the table from now on.
	for {
		c, ok := r.changes.Dequeue()
		if !ok {
			break
		}
		if c.op == changeRegister {
			r.channels[c.ch.fd] = c.ch
		}
	}
	for _, ch := range r.channels {
		errs = multierr.Append(errs, r.closeChannel(ch, errors.ErrReactorShutdown))
	}
	// No wakeup can reach the poller once the state has left Running under r.mu.
	r.mu.Lock()
	errs = multierr.Append(errs, r.poller.Close())
	r.state.Store(stateStopped)
	r.mu.Unlock()
	r.logger.Debugf("reactor is stopped")
	return errs
}

type closedChannel struct {
	ch  *Channel
	err error
}

// submit queues a change for the event-loop and wakes it up.
func (r *Reactor) submit(c *pendingChange) {
	r.mu.RLock()
	r.submitLocked(c)
	r.mu.RUnlock()
}

// submitLocked is submit with r.mu held, which keeps the poller open while
// it's being woken up.
func (r *Reactor) submitLocked(c *pendingChange) {
	r.changes.Enqueue(c)
	if r.state.Load() != stateRunning {
		return
	}
	if err := r.poller.Wakeup(); err != nil {
		r.logger.Errorf("failed to wake up the event-loop: %v", err)
	}
}
