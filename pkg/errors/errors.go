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

// Package errors defines common errors for reactor.
package errors

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"syscall"
)

var (
	// ErrReactorShutdown occurs when the reactor is shutting down or has been shut down.
	ErrReactorShutdown = errors.New("reactor: reactor is going to be shutdown")
	// ErrReactorRunning occurs when calling Start on a reactor that is already running.
	ErrReactorRunning = errors.New("reactor: reactor is already running")
	// ErrNoChannels occurs when starting a reactor that has no registered channels.
	ErrNoChannels = errors.New("reactor: no channels have been registered")
	// ErrChannelRegistered occurs when registering a channel more than once.
	ErrChannelRegistered = errors.New("reactor: channel is already registered")
	// ErrChannelClosed occurs when operating on a closed channel.
	ErrChannelClosed = errors.New("reactor: channel is closed")
	// ErrInvalidHandle occurs when deregistering with a handle that doesn't belong to the reactor.
	ErrInvalidHandle = errors.New("reactor: invalid registration handle")
	// ErrNilChannel occurs when registering a nil channel.
	ErrNilChannel = errors.New("reactor: nil channel is not allowed")
	// ErrNilHandler occurs when registering a channel without a handler.
	ErrNilHandler = errors.New("reactor: nil handler is not allowed")
	// ErrUnsupportedOp occurs when calling a method that the channel kind doesn't support.
	ErrUnsupportedOp = errors.New("reactor: unsupported operation")
	// ErrUnsupportedProtocol occurs when trying to use protocol that is not supported.
	ErrUnsupportedProtocol = errors.New("reactor: only tcp/tcp4/tcp6, udp/udp4/udp6 are supported")
	// ErrUnsupportedTCPProtocol occurs when trying to use an unsupported TCP protocol.
	ErrUnsupportedTCPProtocol = errors.New("reactor: only tcp/tcp4/tcp6 are supported")
	// ErrUnsupportedUDPProtocol occurs when trying to use an unsupported UDP protocol.
	ErrUnsupportedUDPProtocol = errors.New("reactor: only udp/udp4/udp6 are supported")
	// ErrUnsupportedPlatform occurs when running on a platform without an epoll poller.
	ErrUnsupportedPlatform = errors.New("reactor: unsupported platform")
	// ErrInvalidAddress occurs when a datagram destination is not a UDP address.
	ErrInvalidAddress = errors.New("reactor: invalid network address")
	// ErrDispatcherTimeout occurs when in-flight handler tasks outlive the shutdown timeout.
	ErrDispatcherTimeout = errors.New("reactor: timed out waiting for in-flight tasks")
	// ErrDispatcherClosed occurs when submitting a task to a dispatcher that has been shut down.
	ErrDispatcherClosed = errors.New("reactor: dispatcher is closed")
)

// BindError is returned when a channel can't be bound to its address.
type BindError struct {
	Network string
	Address string
	Port    int
	Err     error
}

func (e *BindError) Error() string {
	return "reactor: failed to bind " + e.Network + " port " + strconv.Itoa(e.Port) +
		" (" + e.Address + "): " + e.Err.Error()
}

func (e *BindError) Unwrap() error { return e.Err }

// StartupError is returned by Reactor.Start when the event-loop can't be brought up.
type StartupError struct {
	Err error
}

func (e *StartupError) Error() string {
	return "reactor: failed to start: " + e.Err.Error()
}

func (e *StartupError) Unwrap() error { return e.Err }

// TransientIOError reports a single failed I/O attempt that is worth retrying
// on the next readiness notification.
type TransientIOError struct {
	Op  string
	Err error
}

func (e *TransientIOError) Error() string {
	return "reactor: transient " + e.Op + " error: " + e.Err.Error()
}

func (e *TransientIOError) Unwrap() error { return e.Err }

// Temporary is always true.
func (e *TransientIOError) Temporary() bool { return true }

// ConnectionTerminalError reports that a connection is no longer usable,
// the channel gets closed and deregistered after the handler returns.
type ConnectionTerminalError struct {
	Op  string
	Err error
}

func (e *ConnectionTerminalError) Error() string {
	return "reactor: connection terminated on " + e.Op + ": " + e.Err.Error()
}

func (e *ConnectionTerminalError) Unwrap() error { return e.Err }

// HandlerError wraps a panic raised by application handler code.
type HandlerError struct {
	Channel string
	Panic   any
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("reactor: handler panicked on channel %s: %v", e.Channel, e.Panic)
}

// Unwrap returns the panic value if it's an error.
func (e *HandlerError) Unwrap() error {
	if err, ok := e.Panic.(error); ok {
		return err
	}
	return nil
}

// IsTerminal reports whether err means the peer is gone and the connection
// can't be used anymore.
func IsTerminal(err error) bool {
	var te *ConnectionTerminalError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, io.EOF) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET, syscall.EPIPE, syscall.ECONNABORTED,
			syscall.ENOTCONN, syscall.ETIMEDOUT, syscall.EBADF:
			return true
		}
	}
	return false
}
