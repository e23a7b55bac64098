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

import (
	"bufio"
	"io"

	"github.com/jamesnetherton/m3u"
)

// ToM3U converts the model into an m3u.Playlist. Grouped channels carry a
// group-title tag; flat channels carry no tags.
func ToM3U(m *Model) m3u.Playlist {
	p := m3u.Playlist{Tracks: make([]m3u.Track, 0, m.Len())}
	for _, ch := range m.Channels() {
		track := m3u.Track{
			Name:   ch.Name,
			Length: -1,
			URI:    ch.URL,
		}
		if !m.Flat() {
			track.Tags = []m3u.Tag{{Name: "group-title", Value: ch.Group}}
		}
		p.Tracks = append(p.Tracks, track)
	}
	return p
}

// WriteM3U writes the model as an Extended M3U document. The output parses
// back to an equivalent model as long as channel names contain no commas.
func WriteM3U(w io.Writer, m *Model) error {
	bw := bufio.NewWriter(w)
	if err := m3u.MarshallInto(ToM3U(m), bw); err != nil {
		return err
	}
	return bw.Flush()
}
