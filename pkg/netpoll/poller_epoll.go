// Copyright (c) 2026 The Reactor Authors. All rights reserved.
// Copyright (c) 2019 Andy Pan
// Copyright (c) 2017 Joshua J Baker
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

package netpoll

import (
	"os"
	"time"
	"unsafe"

	"go.uber.org/atomic"
	"golang.org/x/sys/unix"
)

// Poller represents a poller which is in charge of monitoring file-descriptors.
type Poller struct {
	fd         int    // epoll fd
	efd        int    // eventfd
	efdBuf     []byte // efd buffer to read an 8-byte integer
	wakeupCall atomic.Int32
	el         *eventList
}

// OpenPoller instantiates a poller whose event-list starts with eventsCap slots.
func OpenPoller(eventsCap int) (poller *Poller, err error) {
	poller = new(Poller)
	if poller.fd, err = unix.EpollCreate1(unix.EPOLL_CLOEXEC); err != nil {
		poller = nil
		err = os.NewSyscallError("epoll_create1", err)
		return
	}
	if poller.efd, err = unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC); err != nil {
		_ = unix.Close(poller.fd)
		poller = nil
		err = os.NewSyscallError("eventfd", err)
		return
	}
	poller.efdBuf = make([]byte, 8)
	if err = poller.Add(poller.efd, ReadEvents); err != nil {
		_ = poller.Close()
		poller = nil
		return
	}
	poller.el = newEventList(eventsCap)
	return
}

// Close closes the poller.
func (p *Poller) Close() error {
	_ = unix.Close(p.efd)
	return os.NewSyscallError("close", unix.Close(p.fd))
}

// Make the endianness of bytes compatible with more linux OSs under different processor-architectures,
// according to http://man7.org/linux/man-pages/man2/eventfd.2.html.
var (
	u uint64 = 1
	b        = (*(*[8]byte)(unsafe.Pointer(&u)))[:]
)

// Wakeup interrupts a blocked Poll, it's safe to be called concurrently.
// Consecutive calls made before the poller notices the first one collapse
// into a single notification.
func (p *Poller) Wakeup() (err error) {
	if !p.wakeupCall.CompareAndSwap(0, 1) {
		return nil
	}
	for {
		_, err = unix.Write(p.efd, b)
		if err == unix.EAGAIN {
			_, _ = unix.Read(p.efd, p.efdBuf)
			continue
		}
		break
	}
	return os.NewSyscallError("write", err)
}

// Poll blocks for at most timeout, waiting for I/O events, and calls fn with
// every ready file-descriptor. It returns the number of ready file-descriptors,
// not counting the internal wakeup.
func (p *Poller) Poll(timeout time.Duration, fn func(fd int, ev IOEvent)) (int, error) {
	n, err := unix.EpollWait(p.fd, p.el.events, msec(timeout))
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, os.NewSyscallError("epoll_wait", err)
	}

	ready := 0
	for i := 0; i < n; i++ {
		ev := &p.el.events[i]
		if fd := int(ev.Fd); fd == p.efd {
			_, _ = unix.Read(p.efd, p.efdBuf)
			p.wakeupCall.Store(0)
		} else {
			ready++
			fn(fd, ev.Events)
		}
	}

	if n == p.el.size {
		p.el.expand()
	} else if n < p.el.size>>1 {
		p.el.shrink()
	}
	return ready, nil
}

// Add registers the given file-descriptor with the given events.
func (p *Poller) Add(fd int, events IOEvent) error {
	return os.NewSyscallError("epoll_ctl add",
		unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{Fd: int32(fd), Events: events}))
}

// Mod renews the events of the given file-descriptor, which also re-arms
// a file-descriptor registered with OneShot.
func (p *Poller) Mod(fd int, events IOEvent) error {
	return os.NewSyscallError("epoll_ctl mod",
		unix.EpollCtl(p.fd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{Fd: int32(fd), Events: events}))
}

// Delete removes the given file-descriptor from the poller.
func (p *Poller) Delete(fd int) error {
	return os.NewSyscallError("epoll_ctl del", unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, nil))
}
