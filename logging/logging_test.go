// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)
	l.Debug().Msg("hidden")
	l.Info().Int("y", -3).Msg("frame")

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "frame", got["message"])
	assert.Equal(t, float64(-3), got["y"])
	assert.Contains(t, got, "time")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestSetupFile(t *testing.T) {
	old := log.Logger
	defer func() {
		log.Logger = old
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}()

	console, err := os.CreateTemp(t.TempDir(), "console")
	require.NoError(t, err)
	defer console.Close()
	path := filepath.Join(t.TempDir(), "logs", "oled.log")

	closer, err := Setup(&Opts{Debug: true, File: path, Console: console})
	require.NoError(t, err)
	log.Debug().Str("k", "v").Msg("hello")
	require.NoError(t, closer())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"message":"hello"`)

	c, err := os.ReadFile(console.Name())
	require.NoError(t, err)
	// A regular file is not a terminal: JSON output.
	assert.Contains(t, string(c), `"k":"v"`)
}
