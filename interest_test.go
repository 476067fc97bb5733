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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterest(t *testing.T) {
	tests := []struct {
		interest Interest
		str      string
	}{
		{0, "none"},
		{OpAccept, "accept"},
		{OpRead | OpWrite, "read|write"},
		{OpAccept | OpRead | OpWrite | OpConnect, "accept|read|write|connect"},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			assert.Equal(t, tt.str, tt.interest.String())
		})
	}

	rw := OpRead | OpWrite
	assert.True(t, rw.Has(OpRead))
	assert.True(t, rw.Has(OpRead|OpWrite))
	assert.False(t, rw.Has(OpAccept))
	assert.False(t, OpRead.Has(OpRead|OpWrite))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "listener", KindListener.String())
	assert.Equal(t, "stream", KindStream.String())
	assert.Equal(t, "datagram", KindDatagram.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
