/*
 * iptv-player is a project to browse and play IPTV playlists from the terminal.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package utils

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	prev := Config.DebugLoggingEnabled
	defer func() { Config.DebugLoggingEnabled = prev }()
	Config.DebugLoggingEnabled = false

	assert.Equal(t, LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, LevelError, ParseLogLevel(" error "))
	assert.Equal(t, LevelInfo, ParseLogLevel("chatty"))

	Config.DebugLoggingEnabled = true
	assert.Equal(t, LevelDebug, ParseLogLevel(""))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	prevLevel, prevDebug := Config.LogLevel, Config.DebugLoggingEnabled
	defer func() { Config.LogLevel, Config.DebugLoggingEnabled = prevLevel, prevDebug }()

	Config.LogLevel = LevelWarn
	Config.DebugLoggingEnabled = false

	InfoLog("tuning %s", "BBC One")
	DebugLog("lookahead line %d", 3)
	WarnLog("playlist %s has no groups", "flat.m3u")
	ErrorLog("player exited: %v", "signal: killed")

	out := buf.String()
	assert.NotContains(t, out, "BBC One")
	assert.NotContains(t, out, "lookahead")
	assert.Contains(t, out, "flat.m3u")
	assert.Contains(t, out, "signal: killed")
	assert.Contains(t, out, "logging_test.go")
}
