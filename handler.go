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

type (
	// Handler represents the callbacks invoked by the reactor when a channel
	// becomes ready. The methods run on whatever goroutine the Dispatcher
	// picks, so a Handler shared by several channels must be safe for
	// concurrent use unless the InlineDispatcher is in charge. The reactor
	// never runs two callbacks for the same channel at the same time.
	Handler interface {
		// OnAcceptable fires for each connection accepted by a listening channel,
		// before the new channel is armed for reading.
		// Returning Close rejects the connection.
		OnAcceptable(listener, c *Channel) (action Action)

		// OnReadable fires when the channel has data to read, call c.Read()
		// (or c.ReadFrom() on a datagram channel) until it yields nothing.
		OnReadable(c *Channel) (action Action)

		// OnWritable fires when the channel has room for outbound data.
		// Data buffered by c.Send or c.SendTo has already been flushed as far
		// as the socket allowed by the time OnWritable is called.
		OnWritable(c *Channel) (action Action)

		// OnClosed fires once a channel has been closed and deregistered.
		// The parameter err is the last known error, nil if the channel was
		// closed on purpose. It runs on the event-loop goroutine, or on the
		// goroutine calling Stop, so it must not block.
		OnClosed(c *Channel, err error)
	}

	// BuiltinHandler is a built-in implementation of Handler which sets up each
	// method with a default implementation, you can compose it with your own
	// implementation of Handler when you don't want to implement all methods.
	BuiltinHandler struct{}
)

// OnAcceptable accepts every connection.
func (*BuiltinHandler) OnAcceptable(_, _ *Channel) (action Action) {
	return
}

// OnReadable does nothing.
func (*BuiltinHandler) OnReadable(_ *Channel) (action Action) {
	return
}

// OnWritable does nothing.
func (*BuiltinHandler) OnWritable(_ *Channel) (action Action) {
	return
}

// OnClosed does nothing.
func (*BuiltinHandler) OnClosed(_ *Channel, _ error) {
}
