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

package playlist

// MoveDown selects the next channel. At the end of a group it moves to the
// first channel of the next group; at the end of the last group it returns s
// unchanged. It is a no-op for NoSelection and for selections that do not
// resolve inside m.
func MoveDown(m *Model, s Selection) Selection {
	if !m.Valid(s) {
		return s
	}
	if s.Channel < m.GroupLen(s.Group)-1 {
		return Selection{Group: s.Group, Channel: s.Channel + 1}
	}
	next := s.Group + 1
	if next < m.GroupCount() && m.GroupLen(next) > 0 {
		return Selection{Group: next, Channel: 0}
	}
	return s
}

// MoveUp selects the previous channel. At the start of a group it moves to
// the last channel of the previous group; at the start of the first group it
// returns s unchanged. It is a no-op for NoSelection and for selections that
// do not resolve inside m.
func MoveUp(m *Model, s Selection) Selection {
	if !m.Valid(s) {
		return s
	}
	if s.Channel > 0 {
		return Selection{Group: s.Group, Channel: s.Channel - 1}
	}
	prev := s.Group - 1
	if prev >= 0 {
		if n := m.GroupLen(prev); n > 0 {
			return Selection{Group: prev, Channel: n - 1}
		}
	}
	return s
}
