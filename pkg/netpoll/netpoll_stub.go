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

//go:build !linux

package netpoll

import (
	"time"

	"github.com/panjf2000/reactor/pkg/errors"
)

// IOEvent is the integer type of I/O events.
type IOEvent = uint32

const (
	// ReadEvents represents readable events.
	ReadEvents IOEvent = 0x1
	// WriteEvents represents writeable events.
	WriteEvents IOEvent = 0x4
	// ErrEvents represents exceptional events.
	ErrEvents IOEvent = 0x8 | 0x10
	// OneShot disables the fd after one event.
	OneShot IOEvent = 1 << 30
)

// IsReadEvent checks if the event is a read event.
func IsReadEvent(event IOEvent) bool { return event&ReadEvents != 0 }

// IsWriteEvent checks if the event is a write event.
func IsWriteEvent(event IOEvent) bool { return event&WriteEvents != 0 }

// IsErrorEvent checks if the event is an error event.
func IsErrorEvent(event IOEvent) bool { return event&ErrEvents != 0 }

// Poller is not available on this platform.
type Poller struct{}

// OpenPoller always fails on this platform.
func OpenPoller(int) (*Poller, error) { return nil, errors.ErrUnsupportedPlatform }

// Close is a no-op.
func (*Poller) Close() error { return nil }

// Wakeup is not supported.
func (*Poller) Wakeup() error { return errors.ErrUnsupportedPlatform }

// Poll is not supported.
func (*Poller) Poll(time.Duration, func(int, IOEvent)) (int, error) {
	return 0, errors.ErrUnsupportedPlatform
}

// Add is not supported.
func (*Poller) Add(int, IOEvent) error { return errors.ErrUnsupportedPlatform }

// Mod is not supported.
func (*Poller) Mod(int, IOEvent) error { return errors.ErrUnsupportedPlatform }

// Delete is not supported.
func (*Poller) Delete(int) error { return errors.ErrUnsupportedPlatform }
