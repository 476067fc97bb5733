// Copyright (c) 2026 The Reactor Authors. All rights reserved.
// Copyright (c) 2019 The Gnet Authors. All rights reserved.
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

// Package bytebuffer pools the growable byte buffers that hold data
// a channel couldn't flush to the socket yet.
package bytebuffer

import "github.com/valyala/bytebufferpool"

// ByteBuffer is the alias of bytebufferpool.ByteBuffer.
type ByteBuffer = bytebufferpool.ByteBuffer

var (
	// Get returns an empty byte buffer from the pool.
	Get = bytebufferpool.Get
	// Put returns byte buffer to the pool, nil is ignored.
	Put = func(b *ByteBuffer) {
		if b != nil {
			bytebufferpool.Put(b)
		}
	}
)

// Consume drops the first n bytes of b, keeping the rest in order
// at the head of the same backing array.
func Consume(b *ByteBuffer, n int) {
	if n <= 0 {
		return
	}
	if n >= len(b.B) {
		b.Reset()
		return
	}
	rest := copy(b.B, b.B[n:])
	b.B = b.B[:rest]
}
