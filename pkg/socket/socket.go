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

// Package socket creates the non-blocking sockets that back reactor channels
// and converts between unix.Sockaddr and net.Addr.
package socket

import (
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// Option is a socket option applied to a freshly created socket before it's bound.
type Option struct {
	SetSockOpt func(int, int) error
	Opt        int
}

func execSockOpts(fd int, opts []Option) error {
	for _, opt := range opts {
		if err := opt.SetSockOpt(fd, opt.Opt); err != nil {
			return err
		}
	}
	return nil
}

// TCPSocket creates a non-blocking TCP socket, binds it to addr and starts listening on it.
func TCPSocket(proto, addr string, sockOpts ...Option) (int, net.Addr, error) {
	return tcpSocket(proto, addr, sockOpts)
}

// UDPSocket creates a non-blocking UDP socket bound to addr.
func UDPSocket(proto, addr string, sockOpts ...Option) (int, net.Addr, error) {
	return udpSocket(proto, addr, sockOpts)
}

// Accept pulls one pending connection off the listening socket fd,
// the returned socket is already in non-blocking and close-on-exec mode.
func Accept(fd int) (int, unix.Sockaddr, error) {
	nfd, sa, err := unix.Accept4(fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		return -1, nil, err
	}
	return nfd, sa, nil
}

// LocalAddr returns the address the socket fd is bound to.
func LocalAddr(fd int, stream bool) (net.Addr, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return nil, os.NewSyscallError("getsockname", err)
	}
	if stream {
		return SockaddrToTCPAddr(sa), nil
	}
	return SockaddrToUDPAddr(sa), nil
}

func sysSocket(family, sotype, proto int) (int, error) {
	return unix.Socket(family, sotype|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, proto)
}
