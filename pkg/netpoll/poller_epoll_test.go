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

package netpoll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

func socketPair(t *testing.T) (int, int) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func collect(t *testing.T, p *Poller, timeout time.Duration) map[int]IOEvent {
	got := make(map[int]IOEvent)
	_, err := p.Poll(timeout, func(fd int, ev IOEvent) { got[fd] |= ev })
	require.NoError(t, err)
	return got
}

func TestPollerReadiness(t *testing.T) {
	p, err := OpenPoller(InitPollEventsCap)
	require.NoError(t, err)
	defer p.Close() //nolint:errcheck

	a, b := socketPair(t)
	require.NoError(t, p.Add(a, ReadEvents))

	assert.Empty(t, collect(t, p, 10*time.Millisecond), "nothing has been written yet")

	_, err = unix.Write(b, []byte("ping"))
	require.NoError(t, err)
	got := collect(t, p, time.Second)
	require.Contains(t, got, a)
	assert.True(t, IsReadEvent(got[a]))
	assert.False(t, IsWriteEvent(got[a]), "write readiness must not be reported without write interest")

	require.NoError(t, p.Mod(a, ReadEvents|WriteEvents))
	got = collect(t, p, time.Second)
	assert.True(t, IsWriteEvent(got[a]))

	require.NoError(t, p.Delete(a))
	assert.Empty(t, collect(t, p, 10*time.Millisecond))
}

func TestPollerOneShot(t *testing.T) {
	p, err := OpenPoller(InitPollEventsCap)
	require.NoError(t, err)
	defer p.Close() //nolint:errcheck

	a, b := socketPair(t)
	require.NoError(t, p.Add(a, ReadEvents|OneShot))
	_, err = unix.Write(b, []byte("x"))
	require.NoError(t, err)

	require.Contains(t, collect(t, p, time.Second), a)
	// Level-triggered data is still pending but the fd is disarmed.
	assert.NotContains(t, collect(t, p, 10*time.Millisecond), a)

	require.NoError(t, p.Mod(a, ReadEvents|OneShot))
	assert.Contains(t, collect(t, p, time.Second), a)
}

func TestPollerWakeup(t *testing.T) {
	p, err := OpenPoller(InitPollEventsCap)
	require.NoError(t, err)
	defer p.Close() //nolint:errcheck

	var eg errgroup.Group
	eg.Go(func() error {
		time.Sleep(20 * time.Millisecond)
		return p.Wakeup()
	})

	start := time.Now()
	n, err := p.Poll(5*time.Second, func(int, IOEvent) { t.Error("no fd is registered") })
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Less(t, time.Since(start), 5*time.Second)
	require.NoError(t, eg.Wait())
}

func TestPollerWakeupCollapses(t *testing.T) {
	p, err := OpenPoller(InitPollEventsCap)
	require.NoError(t, err)
	defer p.Close() //nolint:errcheck

	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wakeup())
	}
	assert.EqualValues(t, 1, p.wakeupCall.Load())

	start := time.Now()
	_, err = p.Poll(5*time.Second, func(int, IOEvent) { t.Error("no fd is registered") })
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Zero(t, p.wakeupCall.Load())

	// All three calls were served by a single notification.
	start = time.Now()
	_, err = p.Poll(50*time.Millisecond, func(int, IOEvent) { t.Error("no fd is registered") })
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestEventListResize(t *testing.T) {
	el := newEventList(MinPollEventsCap)
	el.shrink()
	assert.Equal(t, MinPollEventsCap, el.size)
	for i := 0; i < 10; i++ {
		el.expand()
	}
	assert.Equal(t, MaxPollEventsCap, el.size)
	assert.Len(t, el.events, MaxPollEventsCap)
}
