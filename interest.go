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

import "strings"

// Interest is the set of operations a channel wants to be woken up for.
type Interest uint8

const (
	// OpAccept fires when a listening channel has inbound connections pending.
	OpAccept Interest = 1 << iota
	// OpRead fires when a channel has data (or an EOF) to read.
	OpRead
	// OpWrite fires when a channel can accept more outbound data.
	OpWrite
	// OpConnect fires when an outbound connection attempt has completed.
	OpConnect
)

// Has reports whether all operations of o are in the set.
func (i Interest) Has(o Interest) bool {
	return i&o == o
}

func (i Interest) String() string {
	if i == 0 {
		return "none"
	}
	var ops []string
	for _, op := range []struct {
		op   Interest
		name string
	}{{OpAccept, "accept"}, {OpRead, "read"}, {OpWrite, "write"}, {OpConnect, "connect"}} {
		if i&op.op != 0 {
			ops = append(ops, op.name)
		}
	}
	return strings.Join(ops, "|")
}

// Kind tells what sort of endpoint a channel wraps.
type Kind uint8

const (
	// KindListener is a listening stream socket.
	KindListener Kind = iota
	// KindStream is a connected stream socket, usually accepted by a listener.
	KindStream
	// KindDatagram is a bound datagram socket.
	KindDatagram
)

func (k Kind) String() string {
	switch k {
	case KindListener:
		return "listener"
	case KindStream:
		return "stream"
	case KindDatagram:
		return "datagram"
	}
	return "unknown"
}

// Action is performed after an event handler returns.
type Action int

const (
	// None indicates that no action should occur following an event.
	None Action = iota

	// Close closes the channel.
	Close

	// Shutdown stops the reactor.
	Shutdown
)
