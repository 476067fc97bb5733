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
	"net"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/eapache/queue"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/panjf2000/reactor/pkg/errors"
	"github.com/panjf2000/reactor/pkg/pool/bytebuffer"
	"github.com/panjf2000/reactor/pkg/socket"
)

// Channel wraps one non-blocking socket watched by a Reactor: a listening
// stream socket, a connected stream socket or a datagram socket.
//
// Read, Write, Accept, ReadFrom and WriteTo are single non-blocking attempts
// meant to be called from the channel's handler. Send and SendTo buffer
// whatever the socket doesn't take right away and are safe to call from any
// goroutine.
type Channel struct {
	id       uint64
	fd       int
	kind     Kind
	local    net.Addr
	remote   net.Addr
	handler  Handler
	listener *Channel // the listening channel a stream channel was accepted by
	reactor  *Reactor
	interest atomic.Uint32
	closed   atomic.Bool
	ctx      any

	mu        sync.Mutex
	terminal  error                  // first unrecoverable I/O error
	outbound  *bytebuffer.ByteBuffer // stream data not written yet
	datagrams *queue.Queue           // *datagram not sent yet
	pending   int                    // buffered datagram bytes

	// Owned by the event-loop.
	armed      bool
	busy       bool
	closing    bool
	closingErr error
}

type datagram struct {
	sa   unix.Sockaddr
	data []byte
}

func newChannel(fd int, kind Kind, local, remote net.Addr) *Channel {
	c := &Channel{fd: fd, kind: kind, local: local, remote: remote}
	switch kind {
	case KindListener:
		c.interest.Store(uint32(OpAccept))
	default:
		c.interest.Store(uint32(OpRead))
	}
	return c
}

// Fd returns the underlying file descriptor.
func (c *Channel) Fd() int { return c.fd }

// Kind returns the kind of endpoint.
func (c *Channel) Kind() Kind { return c.kind }

// LocalAddr is the channel's local socket address.
func (c *Channel) LocalAddr() net.Addr { return c.local }

// RemoteAddr is the peer address of a stream channel, nil for the other kinds.
func (c *Channel) RemoteAddr() net.Addr { return c.remote }

// Handler returns the handler the channel has been registered with.
func (c *Channel) Handler() Handler { return c.handler }

// Listener returns the listening channel that accepted c, nil if c wasn't accepted.
func (c *Channel) Listener() *Channel { return c.listener }

// Context returns a user-defined context.
func (c *Channel) Context() any { return c.ctx }

// SetContext sets a user-defined context.
func (c *Channel) SetContext(ctx any) { c.ctx = ctx }

// IsClosed reports whether the underlying socket has been closed.
func (c *Channel) IsClosed() bool { return c.closed.Load() }

// Interest returns the latest requested interest set, which the reactor
// applies on its next iteration.
func (c *Channel) Interest() Interest { return Interest(c.interest.Load()) }

// SetInterest replaces the set of operations the channel is woken up for.
// A listening channel only ever waits for OpAccept.
func (c *Channel) SetInterest(i Interest) error {
	if c.IsClosed() {
		return errors.ErrChannelClosed
	}
	if c.kind == KindListener {
		i = OpAccept
	}
	c.interest.Store(uint32(i))
	if r := c.reactor; r != nil {
		r.submit(&pendingChange{ch: c, op: changeInterest})
	}
	return nil
}

func (c *Channel) String() string {
	var sb strings.Builder
	sb.WriteString(c.kind.String())
	sb.WriteString("(fd=")
	sb.WriteString(strconv.Itoa(c.fd))
	if c.local != nil {
		sb.WriteString(", ")
		sb.WriteString(c.local.String())
	}
	if c.remote != nil {
		sb.WriteString("<->")
		sb.WriteString(c.remote.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

func (c *Channel) fail(op string, err error) error {
	err = &errors.ConnectionTerminalError{Op: op, Err: err}
	c.mu.Lock()
	if c.terminal == nil {
		c.terminal = err
	}
	c.mu.Unlock()
	return err
}

func (c *Channel) terminalErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminal
}

// Read performs a single non-blocking read into p. It returns (0, nil) if no
// data is available and io.EOF once the peer has closed the connection.
func (c *Channel) Read(p []byte) (int, error) {
	if c.kind != KindStream {
		return 0, errors.ErrUnsupportedOp
	}
	if c.IsClosed() {
		return 0, errors.ErrChannelClosed
	}
	n, err := unix.Read(c.fd, p)
	switch {
	case err == unix.EAGAIN:
		return 0, nil
	case err == unix.EINTR:
		return 0, &errors.TransientIOError{Op: "read", Err: err}
	case err != nil:
		return 0, c.fail("read", err)
	case n == 0 && len(p) > 0:
		_ = c.fail("read", io.EOF)
		return 0, io.EOF
	}
	return n, nil
}

// Write performs a single non-blocking write of p and returns how many bytes
// the socket accepted, which may be fewer than len(p), the caller keeps the
// rest. Use Send to have the channel buffer and flush the rest for you.
func (c *Channel) Write(p []byte) (int, error) {
	if c.kind != KindStream {
		return 0, errors.ErrUnsupportedOp
	}
	if c.IsClosed() {
		return 0, errors.ErrChannelClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := unix.Write(c.fd, p)
	switch {
	case err == unix.EAGAIN:
		return 0, nil
	case err == unix.EINTR:
		return 0, &errors.TransientIOError{Op: "write", Err: err}
	case err != nil:
		return 0, c.fail("write", err)
	}
	return n, nil
}

// Accept pulls one pending connection off a listening channel. The new
// channel is non-blocking and has no interest set yet. It returns (nil, nil)
// when no connection is pending.
func (c *Channel) Accept() (*Channel, error) {
	if c.kind != KindListener {
		return nil, errors.ErrUnsupportedOp
	}
	if c.IsClosed() {
		return nil, errors.ErrChannelClosed
	}
	nfd, sa, err := socket.Accept(c.fd)
	if err != nil {
		if err == unix.EAGAIN {
			return nil, nil
		}
		return nil, &errors.TransientIOError{Op: "accept", Err: err}
	}
	local, err := socket.LocalAddr(nfd, true)
	if err != nil {
		local = c.local
	}
	nc := newChannel(nfd, KindStream, local, socket.SockaddrToTCPAddr(sa))
	nc.interest.Store(0)
	return nc, nil
}

// ReadFrom reads one datagram into p. A nil addr means no datagram was pending.
func (c *Channel) ReadFrom(p []byte) (n int, addr net.Addr, err error) {
	if c.kind != KindDatagram {
		return 0, nil, errors.ErrUnsupportedOp
	}
	if c.IsClosed() {
		return 0, nil, errors.ErrChannelClosed
	}
	n, sa, err := unix.Recvfrom(c.fd, p, 0)
	if err != nil {
		if err == unix.EAGAIN {
			return 0, nil, nil
		}
		return 0, nil, &errors.TransientIOError{Op: "recvfrom", Err: err}
	}
	return n, socket.SockaddrToUDPAddr(sa), nil
}

// WriteTo sends p as one datagram to addr, it returns (0, nil) if the
// socket buffer is full.
func (c *Channel) WriteTo(p []byte, addr net.Addr) (int, error) {
	if c.kind != KindDatagram {
		return 0, errors.ErrUnsupportedOp
	}
	sa, err := toSockaddr(addr)
	if err != nil {
		return 0, err
	}
	return c.sendto(p, sa)
}

func (c *Channel) sendto(p []byte, sa unix.Sockaddr) (int, error) {
	if c.IsClosed() {
		return 0, errors.ErrChannelClosed
	}
	switch err := unix.Sendto(c.fd, p, 0, sa); err {
	case nil:
		return len(p), nil
	case unix.EAGAIN:
		return 0, nil
	default:
		return 0, &errors.TransientIOError{Op: "sendto", Err: err}
	}
}

func toSockaddr(addr net.Addr) (unix.Sockaddr, error) {
	ua, ok := addr.(*net.UDPAddr)
	if !ok || ua == nil {
		return nil, errors.ErrInvalidAddress
	}
	sa := socket.UDPAddrToSockaddr(ua)
	if sa == nil {
		return nil, errors.ErrInvalidAddress
	}
	return sa, nil
}

// Send writes p to a stream channel. Whatever the socket doesn't accept right
// away is buffered, in order, and flushed by the reactor as soon as the
// channel becomes writable again, with OpWrite enabled until then.
func (c *Channel) Send(p []byte) error {
	if c.kind != KindStream {
		return errors.ErrUnsupportedOp
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminal != nil {
		return c.terminal
	}
	if c.outbound == nil || c.outbound.Len() == 0 {
		n, err := c.writeLocked(p)
		if err != nil {
			return err
		}
		if p = p[n:]; len(p) == 0 {
			return nil
		}
	}
	if c.outbound == nil {
		c.outbound = bytebuffer.Get()
	}
	_, _ = c.outbound.Write(p)
	return c.enableWrite()
}

// SendTo sends p as one datagram to addr, queuing it if the socket buffer is full.
// Queued datagrams go out in order once the channel becomes writable.
func (c *Channel) SendTo(p []byte, addr net.Addr) error {
	if c.kind != KindDatagram {
		return errors.ErrUnsupportedOp
	}
	sa, err := toSockaddr(addr)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.datagrams == nil || c.datagrams.Length() == 0 {
		n, err := c.sendto(p, sa)
		if err != nil || n > 0 {
			return err
		}
	}
	if c.datagrams == nil {
		c.datagrams = queue.New()
	}
	c.datagrams.Add(&datagram{sa: sa, data: append([]byte(nil), p...)})
	c.pending += len(p)
	return c.enableWrite()
}

// Buffered returns the number of outbound bytes waiting to be flushed.
func (c *Channel) Buffered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outbound != nil {
		return c.outbound.Len() + c.pending
	}
	return c.pending
}

// writeLocked is Write with c.mu held, terminal errors are recorded in place.
func (c *Channel) writeLocked(p []byte) (int, error) {
	if c.IsClosed() {
		return 0, errors.ErrChannelClosed
	}
	n, err := unix.Write(c.fd, p)
	switch {
	case err == unix.EAGAIN, err == unix.EINTR:
		return 0, nil
	case err != nil:
		err = &errors.ConnectionTerminalError{Op: "write", Err: err}
		if c.terminal == nil {
			c.terminal = err
		}
		return 0, err
	}
	return n, nil
}

func (c *Channel) enableWrite() error {
	if i := c.Interest(); !i.Has(OpWrite) {
		return c.SetInterest(i | OpWrite)
	}
	return nil
}

// flush writes as much buffered data as the socket takes without spinning on
// a full socket buffer, and drops OpWrite once the buffer drains.
func (c *Channel) flush() (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.kind {
	case KindStream:
		if c.outbound == nil {
			return nil
		}
		for c.outbound.Len() > 0 {
			n, werr := c.writeLocked(c.outbound.B)
			if werr != nil {
				return werr
			}
			if n == 0 {
				return nil
			}
			bytebuffer.Consume(c.outbound, n)
		}
		bytebuffer.Put(c.outbound)
		c.outbound = nil
	case KindDatagram:
		if c.datagrams == nil || c.datagrams.Length() == 0 {
			return nil
		}
		for c.datagrams.Length() > 0 {
			d := c.datagrams.Peek().(*datagram)
			n, serr := c.sendto(d.data, d.sa)
			if serr == nil && n == 0 {
				return nil
			}
			c.datagrams.Remove()
			c.pending -= len(d.data)
			// A datagram the kernel refuses is reported and dropped, the rest still go out.
			err = multierr.Append(err, serr)
		}
	default:
		return nil
	}

	if i := c.Interest(); i.Has(OpWrite) {
		err = multierr.Append(err, c.SetInterest(i&^OpWrite))
	}
	return
}

// Close closes the channel. A registered channel is deregistered by its
// reactor first, the socket is closed once no handler is using it anymore.
func (c *Channel) Close() error {
	if r := c.reactor; r != nil {
		return r.DeregisterChannel(Handle{id: c.id, ch: c})
	}
	return c.release()
}

// release closes the socket, sending out what's left in the outbound buffer
// on a best-effort basis.
func (c *Channel) release() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.mu.Lock()
	if c.outbound != nil {
		for c.outbound.Len() > 0 {
			n, err := unix.Write(c.fd, c.outbound.B)
			if err != nil || n == 0 {
				break
			}
			bytebuffer.Consume(c.outbound, n)
		}
		bytebuffer.Put(c.outbound)
		c.outbound = nil
	}
	c.datagrams, c.pending = nil, 0
	c.mu.Unlock()
	return os.NewSyscallError("close", unix.Close(c.fd))
}
