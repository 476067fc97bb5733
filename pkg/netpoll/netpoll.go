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

/*
Package netpoll provides the readiness demultiplexer of the reactor,
backed by epoll on Linux - https://man7.org/linux/man-pages/man7/epoll.7.html.

A Poller is owned by exactly one goroutine, the event-loop. Registration
(Add, Mod, Delete) and Poll must only be called from that goroutine;
Wakeup is the one method that is safe to call from anywhere, it interrupts
a blocked Poll so the loop can look at work handed to it by other goroutines:

	poller, err := netpoll.OpenPoller(netpoll.InitPollEventsCap)
	if err != nil {
		// handle error
	}
	defer poller.Close()

	if err := poller.Add(fd, netpoll.ReadEvents); err != nil {
		// handle error
	}

	for {
		_, err := poller.Poll(100*time.Millisecond, func(fd int, ev netpoll.IOEvent) {
			if netpoll.IsReadEvent(ev) {
				// read from fd
			}
		})
		if err != nil {
			// handle error
		}
	}
*/
package netpoll

import "time"

const (
	// InitPollEventsCap represents the initial capacity of poller event-list.
	InitPollEventsCap = 128
	// MaxPollEventsCap is the maximum limitation of events that the poller can process.
	MaxPollEventsCap = 1024
	// MinPollEventsCap is the minimum limitation of events that the poller can process.
	MinPollEventsCap = 32
)

// msec converts a bounded wait into epoll milliseconds, a non-positive
// duration never blocks.
func msec(timeout time.Duration) int {
	if timeout <= 0 {
		return 0
	}
	ms := int(timeout / time.Millisecond)
	if ms == 0 {
		ms = 1
	}
	return ms
}
