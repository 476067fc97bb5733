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
	"time"

	"github.com/panjf2000/reactor/pkg/logging"
)

const (
	// DefaultPollTimeout bounds a single wait of the poller.
	DefaultPollTimeout = 100 * time.Millisecond

	// DefaultShutdownTimeout bounds how long Stop waits for in-flight handler tasks.
	DefaultShutdownTimeout = 5 * time.Second
)

// Option is a function that will set up option.
type Option func(opts *Options)

func loadOptions(options ...Option) *Options {
	opts := new(Options)
	for _, option := range options {
		option(opts)
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = NewInlineDispatcher()
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetDefaultLogger()
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = DefaultPollTimeout
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	return opts
}

// Options are configurations for the reactor.
type Options struct {
	// Dispatcher executes handler tasks, an InlineDispatcher is used if it's nil.
	Dispatcher Dispatcher

	// Logger is the customized logger for logging info, if it is not set,
	// then reactor will use the default logger powered by go.uber.org/zap.
	Logger logging.Logger

	// PollTimeout is the maximum duration the event-loop blocks in the poller,
	// which bounds how long it takes to notice a stop request without a wakeup.
	PollTimeout time.Duration

	// ShutdownTimeout bounds how long Stop waits for in-flight handler tasks.
	ShutdownTimeout time.Duration

	// EventsCap is the initial capacity of the event-list of the poller.
	EventsCap int

	// LockOSThread is used to determine whether the event-loop goroutine is bound to an OS thread.
	LockOSThread bool

	// TCPNoDelay controls whether the operating system should delay
	// packet transmission on accepted connections (Nagle's algorithm).
	TCPNoDelay bool

	// TCPKeepAlive sets up a duration for (SO_KEEPALIVE) socket option of accepted connections.
	TCPKeepAlive time.Duration
}

// WithOptions sets up all options.
func WithOptions(options Options) Option {
	return func(opts *Options) {
		*opts = options
	}
}

// WithDispatcher sets up the strategy that runs handler tasks.
func WithDispatcher(d Dispatcher) Option {
	return func(opts *Options) {
		opts.Dispatcher = d
	}
}

// WithLogger sets up a customized logger.
func WithLogger(logger logging.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithPollTimeout sets up the maximum duration of a single poller wait.
func WithPollTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.PollTimeout = timeout
	}
}

// WithShutdownTimeout sets up how long Stop waits for in-flight handler tasks.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.ShutdownTimeout = timeout
	}
}

// WithEventsCap sets up the initial capacity of the poller event-list.
func WithEventsCap(n int) Option {
	return func(opts *Options) {
		opts.EventsCap = n
	}
}

// WithLockOSThread sets up LockOSThread mode for the event-loop.
func WithLockOSThread(lockOSThread bool) Option {
	return func(opts *Options) {
		opts.LockOSThread = lockOSThread
	}
}

// WithTCPNoDelay enable/disable the TCP_NODELAY socket option on accepted connections.
func WithTCPNoDelay(noDelay bool) Option {
	return func(opts *Options) {
		opts.TCPNoDelay = noDelay
	}
}

// WithTCPKeepAlive sets up the SO_KEEPALIVE socket option with duration on accepted connections.
func WithTCPKeepAlive(tcpKeepAlive time.Duration) Option {
	return func(opts *Options) {
		opts.TCPKeepAlive = tcpKeepAlive
	}
}
