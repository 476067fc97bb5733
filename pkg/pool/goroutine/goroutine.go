// Copyright (c) 2026 The Reactor Authors. All rights reserved.
// Copyright (c) 2019 Andy Pan
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

// Package goroutine builds the fixed-size worker pools that run handler
// tasks off the event-loop, powered by github.com/panjf2000/ants/v2.
package goroutine

import (
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/panjf2000/reactor/pkg/logging"
)

const (
	// DefaultWorkers is the size of a worker pool when none is given.
	DefaultWorkers = 8

	// ExpiryDuration is the interval time to clean up those expired workers.
	ExpiryDuration = 10 * time.Second
)

func init() {
	// It releases the default pool from ants.
	ants.Release()
}

// Pool is the alias of ants.Pool.
type Pool = ants.Pool

// ErrPoolOverload is returned by a non-blocking pool that has no idle worker.
var ErrPoolOverload = ants.ErrPoolOverload

// ErrPoolClosed is returned when submitting to a released pool.
var ErrPoolClosed = ants.ErrPoolClosed

type printfLogger struct {
	logging.Logger
}

func (l printfLogger) Printf(format string, args ...any) {
	l.Errorf(format, args...)
}

// New instantiates a pool of size workers. A blocking pool makes Submit wait
// for an idle worker, a non-blocking one fails fast with ErrPoolOverload so
// that the caller can decide what to do with the task.
func New(size int, nonblocking bool, logger logging.Logger, panicHandler func(any)) (*Pool, error) {
	if size <= 0 {
		size = DefaultWorkers
	}
	if logger == nil {
		logger = logging.GetDefaultLogger()
	}
	options := ants.Options{
		ExpiryDuration: ExpiryDuration,
		Nonblocking:    nonblocking,
		PanicHandler:   panicHandler,
		Logger:         printfLogger{logger},
	}
	return ants.NewPool(size, ants.WithOptions(options))
}
