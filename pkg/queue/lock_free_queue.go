// Copyright (c) 2026 The Reactor Authors. All rights reserved.
// Copyright (c) 2021 Andy Pan
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

// Package queue delivers a lock-free concurrent queue based on the algorithm
// presented by Maged M. Michael and Michael L. Scott in 1996:
// https://dl.acm.org/doi/10.1145/248052.248106
//
// Producers never wait on the consumer, which is what the event-loop needs:
// any goroutine may hand work to the loop while the loop is blocked in the poller.
package queue

import (
	"sync/atomic"
	"unsafe"
)

// LockFreeQueue is a non-blocking FIFO queue safe for any number of
// concurrent producers and consumers. The zero value is not usable,
// call New instead.
type LockFreeQueue[T any] struct {
	head   unsafe.Pointer
	tail   unsafe.Pointer
	length int32
}

type node[T any] struct {
	value T
	next  unsafe.Pointer
}

// New instantiates an empty LockFreeQueue.
func New[T any]() *LockFreeQueue[T] {
	n := unsafe.Pointer(&node[T]{})
	return &LockFreeQueue[T]{head: n, tail: n}
}

// Enqueue puts the given value at the tail of the queue.
func (q *LockFreeQueue[T]) Enqueue(v T) {
	n := &node[T]{value: v}
	for {
		tail := load[T](&q.tail)
		next := load[T](&tail.next)
		if tail != load[T](&q.tail) {
			continue
		}
		if next == nil {
			if cas(&tail.next, next, n) {
				cas(&q.tail, tail, n)
				atomic.AddInt32(&q.length, 1)
				return
			}
			continue
		}
		// Tail is falling behind, swing it to the next node.
		cas(&q.tail, tail, next)
	}
}

// Dequeue removes and returns the value at the head of the queue,
// ok is false if the queue is empty.
func (q *LockFreeQueue[T]) Dequeue() (v T, ok bool) {
	for {
		head := load[T](&q.head)
		tail := load[T](&q.tail)
		next := load[T](&head.next)
		if head != load[T](&q.head) {
			continue
		}
		if head == tail {
			if next == nil {
				return v, false
			}
			cas(&q.tail, tail, next)
			continue
		}
		// Read value before CAS, otherwise another dequeue might free the next node.
		v = next.value
		if cas(&q.head, head, next) {
			atomic.AddInt32(&q.length, -1)
			return v, true
		}
	}
}

// Len returns an approximate number of queued values.
func (q *LockFreeQueue[T]) Len() int {
	return int(atomic.LoadInt32(&q.length))
}

// IsEmpty indicates whether this queue is empty or not.
func (q *LockFreeQueue[T]) IsEmpty() bool {
	return atomic.LoadInt32(&q.length) == 0
}

func load[T any](p *unsafe.Pointer) *node[T] {
	return (*node[T])(atomic.LoadPointer(p))
}

func cas[T any](p *unsafe.Pointer, old, new *node[T]) bool {
	return atomic.CompareAndSwapPointer(p, unsafe.Pointer(old), unsafe.Pointer(new))
}
