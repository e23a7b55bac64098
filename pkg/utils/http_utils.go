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

import "os"

// DefaultUserAgent mimics libVLC, which most IPTV providers accept.
const DefaultUserAgent = "VLC/3.0.20 LibVLC/3.0.20"

// GetIPTVUserAgent returns the user agent to use for playlist and provider requests.
// Uses the USER_AGENT environment variable if set, otherwise DefaultUserAgent.
func GetIPTVUserAgent() string {
	userAgent := os.Getenv("USER_AGENT")
	if userAgent == "" {
		return DefaultUserAgent
	}
	return userAgent
}
