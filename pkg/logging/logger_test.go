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

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerAsLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reactor.log")
	logger, flush, err := CreateLoggerAsLocalFile(path, WarnLevel)
	require.NoError(t, err)

	logger.Infof("dropped below %s", "warn")
	logger.Warnf("channel %d closed", 7)
	logger.Errorf("event-loop failed: %v", os.ErrClosed)
	_ = flush()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, prefix)
	assert.Contains(t, content, "channel 7 closed")
	assert.Contains(t, content, "event-loop failed")
	assert.NotContains(t, content, "dropped below")

	_, _, err = CreateLoggerAsLocalFile("", InfoLevel)
	assert.Error(t, err)
}

func TestSetDefaultLoggerAndFlusher(t *testing.T) {
	logger, flusher := GetDefaultLogger(), GetDefaultFlusher()
	defer SetDefaultLoggerAndFlusher(logger, flusher)

	path := filepath.Join(t.TempDir(), "default.log")
	fileLogger, flush, err := CreateLoggerAsLocalFile(path, DebugLevel)
	require.NoError(t, err)
	SetDefaultLoggerAndFlusher(fileLogger, flush)

	Debugf("debug %d", 1)
	Infof("info %d", 2)
	Warnf("warn %d", 3)
	Errorf("error %d", 4)
	Error(nil)
	Error(os.ErrDeadlineExceeded)
	Cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, want := range []string{"debug 1", "info 2", "warn 3", "error 4", os.ErrDeadlineExceeded.Error()} {
		assert.Contains(t, string(data), want)
	}
	assert.NotEmpty(t, LogLevel())
}
