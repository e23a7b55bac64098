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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{value: "", def: true, want: true},
		{value: "true", want: true},
		{value: "1", want: true},
		{value: " YES ", want: true},
		{value: "off", def: true, want: false},
		{value: "0", def: true, want: false},
		{value: "maybe", def: true, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("IPTV_PLAYER_TEST_BOOL", tt.value)
			assert.Equal(t, tt.want, GetEnvBool("IPTV_PLAYER_TEST_BOOL", tt.def))
		})
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("DB_NAME", "")
	assert.Equal(t, "iptvplayer", GetEnvOrDefault("DB_NAME", "iptvplayer"))
	t.Setenv("DB_NAME", "tv")
	assert.Equal(t, "tv", GetEnvOrDefault("DB_NAME", "iptvplayer"))
}
