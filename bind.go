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
	"net"
	"strconv"
	"strings"

	"github.com/panjf2000/reactor/pkg/errors"
	"github.com/panjf2000/reactor/pkg/socket"
)

// SocketOption tweaks a socket after it's created and before it's bound.
type SocketOption = socket.Option

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// WithReuseAddr sets SO_REUSEADDR, which stream listeners have on by default.
func WithReuseAddr(reuseAddr bool) SocketOption {
	return SocketOption{SetSockOpt: socket.SetReuseAddr, Opt: boolInt(reuseAddr)}
}

// WithReusePort sets SO_REUSEPORT.
func WithReusePort(reusePort bool) SocketOption {
	return SocketOption{SetSockOpt: socket.SetReuseport, Opt: boolInt(reusePort)}
}

// WithRecvBuffer sets SO_RCVBUF.
func WithRecvBuffer(size int) SocketOption {
	return SocketOption{SetSockOpt: socket.SetRecvBuffer, Opt: size}
}

// WithSendBuffer sets SO_SNDBUF.
func WithSendBuffer(size int) SocketOption {
	return SocketOption{SetSockOpt: socket.SetSendBuffer, Opt: size}
}

// BindStream opens a listening stream channel on the given port of all interfaces.
func BindStream(port int, opts ...SocketOption) (*Channel, error) {
	return Bind("tcp", ":"+strconv.Itoa(port), opts...)
}

// BindDatagram opens a datagram channel on the given port of all interfaces.
func BindDatagram(port int, opts ...SocketOption) (*Channel, error) {
	return Bind("udp", ":"+strconv.Itoa(port), opts...)
}

// Bind opens a channel on address, network is one of tcp, tcp4, tcp6 (which
// gives a listening channel) or udp, udp4, udp6 (which gives a datagram channel).
// Any failure is reported as an *errors.BindError.
func Bind(network, address string, opts ...SocketOption) (*Channel, error) {
	var (
		fd    int
		local net.Addr
		err   error
		kind  Kind
	)
	switch {
	case strings.HasPrefix(network, "tcp"):
		kind = KindListener
		opts = append([]SocketOption{WithReuseAddr(true)}, opts...)
		fd, local, err = socket.TCPSocket(network, address, opts...)
	case strings.HasPrefix(network, "udp"):
		kind = KindDatagram
		fd, local, err = socket.UDPSocket(network, address, opts...)
	default:
		err = errors.ErrUnsupportedProtocol
	}
	if err != nil {
		return nil, &errors.BindError{Network: network, Address: address, Port: portOf(address), Err: err}
	}
	return newChannel(fd, kind, local, nil), nil
}

func portOf(address string) int {
	_, p, err := net.SplitHostPort(address)
	if err != nil {
		return 0
	}
	port, _ := strconv.Atoi(p)
	return port
}
