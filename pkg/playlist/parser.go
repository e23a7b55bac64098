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
	"fmt"
	"regexp"
	"strings"
)

// ParseMode selects how playlist text is interpreted.
type ParseMode string

const (
	// ModeGrouped reads Extended M3U (#EXTINF + URL pairs) and groups by group-title.
	ModeGrouped ParseMode = "grouped"
	// ModeFlat treats every non-comment line as a bare stream URL.
	ModeFlat ParseMode = "flat"
)

// ParseModeFromString converts a configuration value into a ParseMode.
// An empty value means ModeGrouped.
func ParseModeFromString(s string) (ParseMode, error) {
	switch ParseMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeGrouped:
		return ModeGrouped, nil
	case ModeFlat:
		return ModeFlat, nil
	default:
		return "", fmt.Errorf("unknown playlist mode %q (expected %q or %q)", s, ModeGrouped, ModeFlat)
	}
}

const extinfPrefix = "#extinf:"

var groupTitleRe = regexp.MustCompile(`(?i)group-title\s*=\s*"([^"]+)"`)

// splitLines splits on any run of CR and LF characters, dropping empty lines.
func splitLines(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r'
	})
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// Parse reads Extended M3U text into a grouped Model. It never fails:
// an #EXTINF line whose next line is missing or is not an http(s) URL is
// dropped, and every other line is ignored.
func Parse(text string) *Model {
	lines := splitLines(text)
	b := newBuilder()

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !hasPrefixFold(line, extinfPrefix) {
			continue
		}
		if i+1 >= len(lines) {
			break
		}

		url := strings.TrimSpace(lines[i+1])
		if !hasPrefixFold(url, "http") {
			continue
		}

		b.add(Channel{
			Name:  channelName(line),
			URL:   url,
			Group: groupTitle(line),
		})
	}

	return b.model(false)
}

// groupTitle extracts the first group-title attribute value.
func groupTitle(line string) string {
	m := groupTitleRe.FindStringSubmatch(line)
	if m == nil {
		return DefaultGroup
	}
	if g := strings.TrimSpace(m[1]); g != "" {
		return g
	}
	return DefaultGroup
}

// channelName returns the text after the last comma.
func channelName(line string) string {
	i := strings.LastIndex(line, ",")
	if i < 0 {
		return UnknownName
	}
	return strings.TrimSpace(line[i+1:])
}

// ParseFlat reads a bare-URL-per-line playlist. Comment lines (starting with
// '#') and blank lines are skipped; no metadata is extracted.
func ParseFlat(text string) []string {
	var urls []string
	for _, line := range splitLines(text) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls
}

// ParseWithMode parses text according to mode. Unknown modes are parsed as grouped.
func ParseWithMode(text string, mode ParseMode) *Model {
	if mode == ModeFlat {
		return NewFlatModel(ParseFlat(text))
	}
	return Parse(text)
}
