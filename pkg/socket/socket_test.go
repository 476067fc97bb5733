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

package socket

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestTCPSocket(t *testing.T) {
	fd, addr, err := TCPSocket("tcp", "127.0.0.1:0", Option{SetSockOpt: SetReuseAddr, Opt: 1})
	require.NoError(t, err)
	defer unix.Close(fd) //nolint:errcheck

	tcpAddr, ok := addr.(*net.TCPAddr)
	require.True(t, ok, "expect a *net.TCPAddr but got %T", addr)
	assert.NotZero(t, tcpAddr.Port, "the ephemeral port must be resolved")
	assert.True(t, tcpAddr.IP.Equal(net.IPv4(127, 0, 0, 1)))

	// Nothing is pending yet.
	_, _, err = Accept(fd)
	assert.ErrorIs(t, err, unix.EAGAIN)

	c, err := net.Dial("tcp", tcpAddr.String())
	require.NoError(t, err)
	defer c.Close() //nolint:errcheck

	var nfd int
	require.Eventually(t, func() bool {
		nfd, _, err = Accept(fd)
		return err == nil
	}, time.Second, 5*time.Millisecond)
	defer unix.Close(nfd) //nolint:errcheck

	flags, err := unix.FcntlInt(uintptr(nfd), unix.F_GETFL, 0)
	require.NoError(t, err)
	assert.NotZero(t, flags&unix.O_NONBLOCK, "accepted sockets must be non-blocking")
}

func TestTCPSocketAddressInUse(t *testing.T) {
	fd, addr, err := TCPSocket("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer unix.Close(fd) //nolint:errcheck

	_, _, err = TCPSocket("tcp", addr.String())
	assert.ErrorIs(t, err, unix.EADDRINUSE)
}

func TestUDPSocket(t *testing.T) {
	fd, addr, err := UDPSocket("udp", "127.0.0.1:0", Option{SetSockOpt: SetRecvBuffer, Opt: 1 << 16})
	require.NoError(t, err)
	defer unix.Close(fd) //nolint:errcheck

	udpAddr, ok := addr.(*net.UDPAddr)
	require.True(t, ok, "expect a *net.UDPAddr but got %T", addr)
	assert.NotZero(t, udpAddr.Port)

	_, _, err = TCPSocket("udp", "127.0.0.1:0")
	assert.Error(t, err)
}

func TestSockaddrConversion(t *testing.T) {
	sa := UDPAddrToSockaddr(&net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 53})
	sa4, ok := sa.(*unix.SockaddrInet4)
	require.True(t, ok)
	assert.Equal(t, [4]byte{10, 0, 0, 1}, sa4.Addr)

	back := SockaddrToUDPAddr(sa).(*net.UDPAddr)
	assert.True(t, back.IP.Equal(net.IPv4(10, 0, 0, 1)))
	assert.Equal(t, 53, back.Port)

	sa6 := IPToSockaddr(net.ParseIP("::1"), 80, "")
	tcp := SockaddrToTCPAddr(sa6).(*net.TCPAddr)
	assert.True(t, tcp.IP.Equal(net.IPv6loopback))
	assert.Equal(t, 80, tcp.Port)

	assert.Nil(t, SockaddrToUDPAddr(&unix.SockaddrUnix{Name: "x"}))
}
