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
Package reactor is an event-driven I/O multiplexing framework. A single
event-loop goroutine watches many non-blocking sockets (listening stream
sockets, accepted stream connections and datagram sockets) through epoll and
hands every readiness event to the application's Handler, either right on the
event-loop or on a bounded pool of worker goroutines.

A channel never has more than one handler task in flight, so a handler
doesn't need to lock per-channel state even when it runs on the pool.

Echo server built upon reactor is shown below:

	package main

	import (
		"log"

		"github.com/panjf2000/reactor"
	)

	type echoHandler struct {
		*reactor.BuiltinHandler
	}

	func (*echoHandler) OnReadable(c *reactor.Channel) reactor.Action {
		buf := make([]byte, 4096)
		for {
			n, err := c.Read(buf)
			if err != nil {
				return reactor.Close
			}
			if n == 0 {
				return reactor.None
			}
			if err = c.Send(buf[:n]); err != nil {
				return reactor.Close
			}
		}
	}

	func main() {
		ln, err := reactor.BindStream(9000)
		if err != nil {
			log.Fatal(err)
		}
		r := reactor.New()
		if _, err = r.RegisterChannel(ln, &echoHandler{}); err != nil {
			log.Fatal(err)
		}
		if err = r.Start(); err != nil {
			log.Fatal(err)
		}
		select {}
	}
*/
package reactor
