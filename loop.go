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
	"io"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/panjf2000/reactor/pkg/errors"
	"github.com/panjf2000/reactor/pkg/netpoll"
	"github.com/panjf2000/reactor/pkg/socket"
)

func (r *Reactor) run() error {
	r.logger.Debugf("event-loop is started")
	defer r.logger.Debugf("event-loop is exiting")

	for {
		r.applyChanges()
		if _, err := r.poller.Poll(r.opts.PollTimeout, r.onEvent); err != nil {
			r.logger.Errorf("event-loop failed to poll: %v", err)
			return err
		}
		if r.state.Load() != stateRunning {
			return nil
		}
	}
}

// pollEvents translates the interest set of ch into epoll events, every
// channel but a listener is armed for one event at a time.
func pollEvents(ch *Channel) netpoll.IOEvent {
	var ev netpoll.IOEvent
	i := ch.Interest()
	if i&(OpAccept|OpRead) != 0 {
		ev |= netpoll.ReadEvents
	}
	if i&(OpWrite|OpConnect) != 0 {
		ev |= netpoll.WriteEvents
	}
	if ch.kind != KindListener {
		ev |= netpoll.OneShot
	}
	return ev
}

func (r *Reactor) arm(ch *Channel) error {
	ev := pollEvents(ch)
	if !ch.armed {
		if err := r.poller.Add(ch.fd, ev); err != nil {
			return err
		}
		ch.armed = true
		return nil
	}
	return r.poller.Mod(ch.fd, ev)
}

func (r *Reactor) onEvent(fd int, ev netpoll.IOEvent) {
	ch, ok := r.channels[fd]
	if !ok || ch.busy {
		return
	}
	if ch.kind == KindListener {
		r.accept(ch)
		return
	}

	// Hang-ups and errors surface through whichever operation is wanted.
	var ops Interest
	if netpoll.IsReadEvent(ev) {
		ops |= OpRead
	}
	if netpoll.IsWriteEvent(ev) {
		ops |= OpWrite
	}
	if netpoll.IsErrorEvent(ev) {
		ops |= OpRead | OpWrite
	}
	if ops &= ch.Interest(); ops == 0 {
		if netpoll.IsErrorEvent(ev) {
			_ = r.closeChannel(ch, &errors.ConnectionTerminalError{Op: "poll", Err: io.EOF})
			return
		}
		// The event consumed the one-shot arming.
		if err := r.arm(ch); err != nil {
			_ = r.closeChannel(ch, err)
		}
		return
	}
	r.dispatch(ch, ops)
}

// accept drains every pending connection of the listener ln.
func (r *Reactor) accept(ln *Channel) {
	for {
		c, err := ln.Accept()
		if err != nil {
			// A connection reset before it was accepted doesn't stop the others.
			if e, ok := err.(*errors.TransientIOError); ok && (e.Err == unix.EINTR || e.Err == unix.ECONNABORTED) {
				continue
			}
			r.logger.Errorf("failed to accept on %s: %v", ln, err)
			return
		}
		if c == nil {
			return
		}
		r.configure(c)
		c.reactor, c.handler, c.listener, c.id = r, ln.handler, ln, r.nextID.Inc()
		c.interest.Store(uint32(OpRead))
		r.channels[c.fd] = c
		r.count.Inc()
		r.dispatch(c, OpAccept)
	}
}

func (r *Reactor) configure(c *Channel) {
	if r.opts.TCPNoDelay {
		if err := socket.SetNoDelay(c.fd, 1); err != nil {
			r.logger.Warnf("failed to set TCP_NODELAY on %s: %v", c, err)
		}
	}
	if r.opts.TCPKeepAlive > 0 {
		if err := socket.SetKeepAlivePeriod(c.fd, r.opts.TCPKeepAlive); err != nil {
			r.logger.Warnf("failed to set SO_KEEPALIVE on %s: %v", c, err)
		}
	}
}

// dispatch hands ch to its handler, the channel stays busy until the handler
// task submits its release.
func (r *Reactor) dispatch(ch *Channel, ops Interest) {
	ch.busy = true
	task := func() { r.serve(ch, ops) }
	if err := r.dispatcher.Dispatch(task); err != nil {
		r.logger.Warnf("dispatcher rejected the task of %s, running it on the event-loop: %v", ch, err)
		task()
	}
}

// serve runs the handler of ch for the fired operations, in Read-before-Write
// order, and releases the channel back to the event-loop.
func (r *Reactor) serve(ch *Channel, ops Interest) {
	action, err := r.invoke(ch, ops)
	if err != nil {
		r.logger.Errorf("%v", err)
	} else {
		err = ch.terminalErr()
	}
	if action == Shutdown {
		go func() {
			if err := r.Stop(); err != nil {
				r.logger.Errorf("failed to stop the reactor: %v", err)
			}
		}()
	}
	r.submit(&pendingChange{ch: ch, op: changeRelease, close: err != nil || action == Close, err: err})
}

func (r *Reactor) invoke(ch *Channel, ops Interest) (action Action, err error) {
	defer func() {
		if p := recover(); p != nil {
			action, err = Close, &errors.HandlerError{Channel: ch.String(), Panic: p}
		}
	}()

	h := ch.handler
	if ops.Has(OpAccept) {
		return h.OnAcceptable(ch.listener, ch), nil
	}
	if ops.Has(OpRead) {
		if action = h.OnReadable(ch); action != None || ch.terminalErr() != nil {
			return
		}
	}
	if ops.Has(OpWrite) {
		if ferr := ch.flush(); ferr != nil && ch.kind == KindDatagram {
			r.logger.Warnf("failed to flush %s: %v", ch, ferr)
		}
		if ch.terminalErr() != nil {
			return
		}
		action = h.OnWritable(ch)
	}
	return
}

// closeChannel removes ch from the table and the poller, closes its socket
// and notifies its handler.
func (r *Reactor) closeChannel(ch *Channel, cause error) error {
	detached, err := r.detach(ch)
	if detached {
		r.notifyClosed(ch, cause)
	}
	return err
}

// detach is closeChannel without notifying the handler, it reports whether
// ch was still in the table.
func (r *Reactor) detach(ch *Channel) (bool, error) {
	unlinked, err := r.unlink(ch)
	if !unlinked {
		return false, nil
	}
	return true, multierr.Append(err, ch.release())
}

// unlink removes ch from the table and the poller, leaving its socket open.
func (r *Reactor) unlink(ch *Channel) (unlinked bool, err error) {
	if r.channels[ch.fd] != ch {
		return false, nil
	}
	delete(r.channels, ch.fd)
	r.count.Dec()
	if ch.armed {
		err = r.poller.Delete(ch.fd)
		ch.armed = false
	}
	return true, err
}

func (r *Reactor) notifyClosed(ch *Channel, cause error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Errorf("%v", &errors.HandlerError{Channel: ch.String(), Panic: p})
		}
	}()
	ch.handler.OnClosed(ch, cause)
}
