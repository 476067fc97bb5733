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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errorx "github.com/panjf2000/reactor/pkg/errors"
)

func acceptOne(t *testing.T, ln *Channel) *Channel {
	var c *Channel
	require.Eventually(t, func() bool {
		var err error
		c, err = ln.Accept()
		return err == nil && c != nil
	}, waitFor, time.Millisecond)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestChannelStreamIO(t *testing.T) {
	ln, err := Bind("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	assert.Equal(t, KindListener, ln.Kind())
	assert.Equal(t, OpAccept, ln.Interest())

	c, err := ln.Accept()
	require.NoError(t, err)
	assert.Nil(t, c, "nothing pending yet")

	conn := dial(t, ln)
	c = acceptOne(t, ln)
	assert.Equal(t, KindStream, c.Kind())
	assert.Equal(t, Interest(0), c.Interest())
	assert.Equal(t, conn.LocalAddr().String(), c.RemoteAddr().String())
	assert.Equal(t, conn.RemoteAddr().String(), c.LocalAddr().String())
	assert.Contains(t, c.String(), "stream(fd=")

	buf := make([]byte, 16)
	n, err := c.Read(buf)
	require.NoError(t, err)
	assert.Zero(t, n, "would-block is not an error")

	_, err = conn.Write([]byte("hello"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		n, err = c.Read(buf)
		return err == nil && n > 0
	}, waitFor, time.Millisecond)
	assert.Equal(t, "hello", string(buf[:n]))

	n, err = c.Write([]byte("world"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	_ = conn.SetReadDeadline(time.Now().Add(waitFor))
	_, err = io.ReadFull(conn, buf[:5])
	require.NoError(t, err)
	assert.Equal(t, "world", string(buf[:5]))

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		_, err = c.Read(buf)
		return err != nil
	}, waitFor, time.Millisecond)
	assert.ErrorIs(t, err, io.EOF)
	assert.ErrorIs(t, c.terminalErr(), io.EOF)
	assert.True(t, errorx.IsTerminal(c.terminalErr()))
	assert.Error(t, c.Send([]byte("gone")))

	_, _, err = c.ReadFrom(buf)
	assert.ErrorIs(t, err, errorx.ErrUnsupportedOp)
	_, err = c.Accept()
	assert.ErrorIs(t, err, errorx.ErrUnsupportedOp)

	require.NoError(t, c.Close())
	assert.True(t, c.IsClosed())
	assert.NoError(t, c.Close(), "closing twice")
	_, err = c.Read(buf)
	assert.ErrorIs(t, err, errorx.ErrChannelClosed)
	assert.ErrorIs(t, c.SetInterest(OpRead), errorx.ErrChannelClosed)
}

func TestChannelDatagramIO(t *testing.T) {
	a, err := Bind("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer a.Close()
	b, err := Bind("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, KindDatagram, a.Kind())
	assert.Equal(t, OpRead, a.Interest())
	assert.Nil(t, a.RemoteAddr())

	buf := make([]byte, 64)
	n, addr, err := a.ReadFrom(buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Nil(t, addr)

	n, err = b.WriteTo([]byte("first"), a.LocalAddr())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	require.NoError(t, b.SendTo([]byte("second"), a.LocalAddr()))
	assert.Zero(t, b.Buffered())

	for _, want := range []string{"first", "second"} {
		require.Eventually(t, func() bool {
			n, addr, err = a.ReadFrom(buf)
			return err == nil && addr != nil
		}, waitFor, time.Millisecond)
		assert.Equal(t, want, string(buf[:n]))
		assert.Equal(t, b.LocalAddr().String(), addr.String())
	}

	_, err = b.WriteTo([]byte("x"), &net.TCPAddr{})
	assert.ErrorIs(t, err, errorx.ErrInvalidAddress)
	assert.ErrorIs(t, b.SendTo([]byte("x"), nil), errorx.ErrInvalidAddress)
	_, err = a.Read(buf)
	assert.ErrorIs(t, err, errorx.ErrUnsupportedOp)
	assert.ErrorIs(t, a.Send(buf), errorx.ErrUnsupportedOp)
}

func TestChannelContext(t *testing.T) {
	c, err := Bind("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer c.Close()
	assert.Nil(t, c.Context())
	c.SetContext("session")
	assert.Equal(t, "session", c.Context())
}

func TestSendBuffersRemainder(t *testing.T) {
	ln, err := Bind("tcp4", "127.0.0.1:0", WithSendBuffer(4096))
	require.NoError(t, err)
	defer ln.Close()
	conn := dial(t, ln)
	c := acceptOne(t, ln)
	c.interest.Store(uint32(OpRead))

	payload := make([]byte, 1<<20)
	require.NoError(t, c.Send(payload))
	require.NoError(t, c.Send([]byte("tail")))
	assert.Positive(t, c.Buffered())
	assert.True(t, c.Interest().Has(OpWrite), "pending data keeps the channel interested in writes")

	go func() {
		_ = conn.SetReadDeadline(time.Now().Add(waitFor))
		_, _ = io.Copy(io.Discard, conn)
	}()
	require.Eventually(t, func() bool {
		return c.flush() == nil && c.Buffered() == 0
	}, waitFor, time.Millisecond)
	assert.Equal(t, OpRead, c.Interest())
}
