// Copyright (c) 2026 The Reactor Authors. All rights reserved.
// Copyright (c) 2020 Andy Pan
// Copyright (c) 2017 Max Riveiro
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
	"os"

	"golang.org/x/sys/unix"

	"github.com/panjf2000/reactor/pkg/errors"
)

// inetSockaddr resolves addr for either a TCP or a UDP socket, returning the
// sockaddr to bind to, its address family and whether the socket must be
// restricted to IPv6.
func inetSockaddr(ip net.IP, port int, zone, version string) (sa unix.Sockaddr, family int, ipv6only bool, err error) {
	switch version {
	case "tcp4", "udp4":
		sa4 := &unix.SockaddrInet4{Port: port}
		if ip != nil {
			copy(sa4.Addr[:], ip.To4())
		}
		return sa4, unix.AF_INET, false, nil
	case "tcp6", "udp6":
		ipv6only = true
		fallthrough
	case "tcp", "udp":
		sa6 := &unix.SockaddrInet6{Port: port}
		if ip != nil {
			copy(sa6.Addr[:], ip.To16())
		}
		if zone != "" {
			iface, err := net.InterfaceByName(zone)
			if err != nil {
				return nil, 0, false, err
			}
			sa6.ZoneId = uint32(iface.Index)
		}
		return sa6, unix.AF_INET6, ipv6only, nil
	}
	return nil, 0, false, errors.ErrUnsupportedProtocol
}

// determineProto figures out the actual protocol version from the size of
// the resolved IP address, a wildcard address keeps the caller's choice.
func determineProto(proto string, ip net.IP, family string) (string, error) {
	if ip.To4() != nil {
		return family + "4", nil
	}
	if ip.To16() != nil {
		return family + "6", nil
	}
	switch proto {
	case family, family + "4", family + "6":
		return proto, nil
	}
	if family == "tcp" {
		return "", errors.ErrUnsupportedTCPProtocol
	}
	return "", errors.ErrUnsupportedUDPProtocol
}

func tcpSocket(proto, addr string, sockOpts []Option) (fd int, netAddr net.Addr, err error) {
	tcpAddr, err := net.ResolveTCPAddr(proto, addr)
	if err != nil {
		return -1, nil, err
	}
	version, err := determineProto(proto, tcpAddr.IP, "tcp")
	if err != nil {
		return -1, nil, err
	}
	sa, family, ipv6only, err := inetSockaddr(tcpAddr.IP, tcpAddr.Port, tcpAddr.Zone, version)
	if err != nil {
		return -1, nil, err
	}

	if fd, err = sysSocket(family, unix.SOCK_STREAM, unix.IPPROTO_TCP); err != nil {
		return -1, nil, os.NewSyscallError("socket", err)
	}
	defer func() {
		if err != nil {
			_ = unix.Close(fd)
			fd = -1
		}
	}()

	if family == unix.AF_INET6 && ipv6only {
		if err = SetIPv6Only(fd, 1); err != nil {
			return
		}
	}
	if err = execSockOpts(fd, sockOpts); err != nil {
		return
	}
	if err = os.NewSyscallError("bind", unix.Bind(fd, sa)); err != nil {
		return
	}
	if err = os.NewSyscallError("listen", unix.Listen(fd, listenerBacklogMaxSize)); err != nil {
		return
	}
	// Pick up the real port when binding to port 0.
	netAddr, err = LocalAddr(fd, true)
	return
}

func udpSocket(proto, addr string, sockOpts []Option) (fd int, netAddr net.Addr, err error) {
	udpAddr, err := net.ResolveUDPAddr(proto, addr)
	if err != nil {
		return -1, nil, err
	}
	version, err := determineProto(proto, udpAddr.IP, "udp")
	if err != nil {
		return -1, nil, err
	}
	sa, family, ipv6only, err := inetSockaddr(udpAddr.IP, udpAddr.Port, udpAddr.Zone, version)
	if err != nil {
		return -1, nil, err
	}

	if fd, err = sysSocket(family, unix.SOCK_DGRAM, unix.IPPROTO_UDP); err != nil {
		return -1, nil, os.NewSyscallError("socket", err)
	}
	defer func() {
		if err != nil {
			_ = unix.Close(fd)
			fd = -1
		}
	}()

	if family == unix.AF_INET6 && ipv6only {
		if err = SetIPv6Only(fd, 1); err != nil {
			return
		}
	}
	// Allow broadcast.
	if err = os.NewSyscallError("setsockopt", unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_BROADCAST, 1)); err != nil {
		return
	}
	if err = execSockOpts(fd, sockOpts); err != nil {
		return
	}
	if err = os.NewSyscallError("bind", unix.Bind(fd, sa)); err != nil {
		return
	}
	netAddr, err = LocalAddr(fd, false)
	return
}
