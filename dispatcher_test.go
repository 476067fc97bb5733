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

package reactor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errorx "github.com/panjf2000/reactor/pkg/errors"
)

func TestInlineDispatcher(t *testing.T) {
	d := NewInlineDispatcher()
	ran := false
	require.NoError(t, d.Dispatch(func() { ran = true }))
	assert.True(t, ran, "inline task must run before Dispatch returns")
	assert.NoError(t, d.Shutdown(time.Second))
}

func TestPoolDispatcherBlockWhenFull(t *testing.T) {
	d, err := NewPoolDispatcher(1, BlockWhenFull, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Workers())

	release := make(chan struct{})
	require.NoError(t, d.Dispatch(func() { <-release }))
	require.Eventually(t, func() bool { return d.Running() == 1 }, time.Second, time.Millisecond)

	submitted := make(chan error, 1)
	go func() { submitted <- d.Dispatch(func() {}) }()
	select {
	case <-submitted:
		t.Fatal("dispatch didn't wait for a free worker")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-submitted:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("dispatch still blocked after a worker was freed")
	}
	assert.NoError(t, d.Shutdown(time.Second))
	assert.Zero(t, d.Running())
}

func TestPoolDispatcherGrowWhenFull(t *testing.T) {
	d, err := NewPoolDispatcher(1, GrowWhenFull, nil)
	require.NoError(t, err)

	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		require.NoError(t, d.Dispatch(func() {
			defer wg.Done()
			<-release
		}))
	}
	assert.Eventually(t, func() bool { return d.Running() == 3 }, time.Second, time.Millisecond,
		"overflowing tasks must run on extra goroutines")
	close(release)
	wg.Wait()
	assert.NoError(t, d.Shutdown(time.Second))
}

func TestPoolDispatcherShutdown(t *testing.T) {
	d, err := NewPoolDispatcher(2, BlockWhenFull, nil)
	require.NoError(t, err)

	release := make(chan struct{})
	require.NoError(t, d.Dispatch(func() { <-release }))
	assert.ErrorIs(t, d.Shutdown(20*time.Millisecond), errorx.ErrDispatcherTimeout)
	assert.ErrorIs(t, d.Dispatch(func() {}), errorx.ErrDispatcherClosed)
	assert.NoError(t, d.Shutdown(time.Second), "shutting down twice")
	close(release)
}

func TestQueuePolicyString(t *testing.T) {
	assert.Equal(t, "block", BlockWhenFull.String())
	assert.Equal(t, "grow", GrowWhenFull.String())
	assert.Equal(t, "unknown", QueuePolicy(7).String())
}
