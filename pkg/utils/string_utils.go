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
	"net/url"
	"strings"
)

// MaskString masks sensitive parts of strings for logging.
func MaskString(s string) string {
	if len(s) <= 8 {
		if len(s) <= 0 {
			return "[empty]"
		}
		return s[:1] + "******"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// MaskURL masks credentials carried by a playlist or stream URL: userinfo,
// username/password query parameters (Xtream get.php links) and the
// /live/<user>/<pass>/<id> path layout.
func MaskURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return urlStr
	}

	if u.User != nil {
		u.User = url.User(MaskString(u.User.Username()))
	}

	q := u.Query()
	masked := false
	for _, key := range []string{"username", "password", "token"} {
		if v := q.Get(key); v != "" {
			q.Set(key, MaskString(v))
			masked = true
		}
	}
	if masked {
		u.RawQuery = q.Encode()
	}

	parts := strings.Split(u.Path, "/")
	if len(parts) >= 5 && (parts[1] == "live" || parts[1] == "movie" || parts[1] == "series") {
		parts[2] = MaskString(parts[2])
		parts[3] = MaskString(parts[3])
		u.Path = strings.Join(parts, "/")
	}

	s, err := url.PathUnescape(u.String())
	if err != nil {
		return u.String()
	}
	return s
}
