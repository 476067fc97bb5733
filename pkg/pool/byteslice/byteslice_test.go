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

package byteslice

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteSlice(t *testing.T) {
	buf := Get(8)
	copy(buf, "ff")
	require.Equal(t, "ff", string(buf[:2]))

	// Disable GC to test re-acquire the same data
	gc := debug.SetGCPercent(-1)
	defer debug.SetGCPercent(gc)

	Put(buf)

	newBuf := Get(7)
	assert.Same(t, &buf[0], &newBuf[0], "expect newBuf and buf to be the same array")
	assert.Equal(t, "ff", string(newBuf[:2]))
	assert.Len(t, newBuf, 7)
	assert.Equal(t, 8, cap(newBuf))
}

func TestByteSliceSizes(t *testing.T) {
	assert.Nil(t, Get(0))
	for _, size := range []int{1, 3, 64, 1000, 65536} {
		b := Get(size)
		assert.Len(t, b, size)
		assert.GreaterOrEqual(t, cap(b), size)
		Put(b)
	}
}

func BenchmarkByteSlice(b *testing.B) {
	b.Run("Run.N", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			bs := Get(1024)
			Put(bs)
		}
	})
	b.Run("Run.Parallel", func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				bs := Get(1024)
				Put(bs)
			}
		})
	})
}
