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

type changeOp uint8

const (
	// changeRegister adds a channel to the registration table and arms it.
	changeRegister changeOp = iota
	// changeInterest re-arms a channel with its latest interest set.
	changeInterest
	// changeRelease hands a channel back to the event-loop after its handler task finished.
	changeRelease
	// changeClose closes and deregisters a channel, deferred until its task is released.
	changeClose
)

func (op changeOp) String() string {
	switch op {
	case changeRegister:
		return "register"
	case changeInterest:
		return "interest"
	case changeRelease:
		return "release"
	case changeClose:
		return "close"
	}
	return "unknown"
}

// pendingChange is a request from any goroutine to alter the registration of
// a channel, it is only ever applied on the event-loop goroutine.
type pendingChange struct {
	ch    *Channel
	op    changeOp
	close bool  // a released channel must be closed
	err   error // reported to OnClosed when the channel gets closed
}

// applyChanges drains the change queue, changes for the same channel are
// applied in submission order and the latest interest set always wins.
func (r *Reactor) applyChanges() {
	for {
		c, ok := r.changes.Dequeue()
		if !ok {
			return
		}
		r.apply(c)
	}
}

func (r *Reactor) apply(c *pendingChange) {
	ch := c.ch
	if c.op == changeRegister {
		r.channels[ch.fd] = ch
		if err := r.arm(ch); err != nil {
			r.logger.Errorf("failed to register %s: %v", ch, err)
			r.closeChannel(ch, err)
		}
		return
	}

	// The channel may have been closed already and its fd reused by another one.
	if r.channels[ch.fd] != ch {
		return
	}

	switch c.op {
	case changeInterest:
		if ch.busy || ch.closing {
			return
		}
		if err := r.arm(ch); err != nil {
			r.logger.Errorf("failed to update interest of %s: %v", ch, err)
			r.closeChannel(ch, err)
		}
	case changeRelease:
		ch.busy = false
		if c.close || ch.closing {
			err := c.err
			if err == nil {
				err = ch.closingErr
			}
			r.closeChannel(ch, err)
			return
		}
		if err := r.arm(ch); err != nil {
			r.logger.Errorf("failed to re-arm %s: %v", ch, err)
			r.closeChannel(ch, err)
		}
	case changeClose:
		if ch.busy {
			ch.closing, ch.closingErr = true, c.err
			return
		}
		r.closeChannel(ch, c.err)
	}
}
