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

package bytebuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsume(t *testing.T) {
	b := Get()
	defer Put(b)

	_, _ = b.WriteString("hello, world")
	Consume(b, 0)
	assert.Equal(t, "hello, world", b.String())

	Consume(b, 7)
	assert.Equal(t, "world", b.String())

	Consume(b, 100)
	assert.Zero(t, b.Len())
}
