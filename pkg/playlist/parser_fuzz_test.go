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
	"strings"
	"testing"
)

func FuzzParse(f *testing.F) {
	f.Add("#EXTM3U\n#EXTINF:-1 group-title=\"News\",BBC\nhttp://x/1\n")
	f.Add("#EXTINF:-1,\n\r\nhttp://")
	f.Add("#EXTINF:group-title=\"\",,,\nHTTP://x")
	f.Add("\r\r\n\n#extinf:")

	f.Fuzz(func(t *testing.T, input string) {
		m := Parse(input)

		total := 0
		for _, g := range m.Groups() {
			if len(g.Channels) == 0 {
				t.Fatalf("empty group %q", g.Name)
			}
			for _, ch := range g.Channels {
				if ch.Group != g.Name {
					t.Fatalf("channel %q in group %q reports group %q", ch.Name, g.Name, ch.Group)
				}
				if !strings.HasPrefix(strings.ToLower(ch.URL), "http") {
					t.Fatalf("accepted non-http url %q", ch.URL)
				}
				total++
			}
		}
		if total > strings.Count(strings.ToLower(input), "#extinf:") {
			t.Fatalf("more channels (%d) than #EXTINF lines", total)
		}

		for _, u := range ParseFlat(input) {
			if u == "" || strings.HasPrefix(u, "#") {
				t.Fatalf("flat parse returned %q", u)
			}
		}
	})
}
