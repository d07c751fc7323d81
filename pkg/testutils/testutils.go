// Copyright 2025 walteh LLC
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

// Package testutils holds helpers shared by pagemigrate tests.
package testutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// 📝 Context returns a context whose zerolog logger writes through t.Log at debug level
func Context(t testing.TB) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.TestWriter{T: t}).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

// 🎨 NoColor disables colored console output for the rest of the test
func NoColor(t testing.TB) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

// 📄 WriteFile writes content to name inside dir and returns the full path
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755), "creating parent directory")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "writing %s", name)
	return path
}

// 📖 ReadFile returns the content of path
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "reading %s", path)
	return string(data)
}
