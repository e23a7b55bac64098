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

// Package settings persists the list of playlists and the last one used.
package settings

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultPlaylist is used when no settings have been saved yet.
const DefaultPlaylist = "https://iptv-org.github.io/iptv/index.m3u"

var (
	// ErrEmptyURL is returned when adding a blank playlist URL.
	ErrEmptyURL = errors.New("empty playlist URL")
	// ErrIndexOutOfRange is returned when selecting a playlist that does not exist.
	ErrIndexOutOfRange = errors.New("playlist index out of range")
	// ErrNotFound is returned when removing a URL that is not in the list.
	ErrNotFound = errors.New("playlist not found")
)

// Settings holds the ordered playlist URLs and the one in use.
type Settings struct {
	Playlists         []string `json:"playlists" mapstructure:"playlists"`
	LastSelectedIndex int      `json:"last_selected_index" mapstructure:"last_selected_index"`
}

// Store loads and saves Settings.
type Store interface {
	Load() (*Settings, error)
	Save(s *Settings) error
}

// Default returns the settings of a fresh install. Stores only fall back to
// it when nothing was ever saved; a list the user emptied stays empty.
func Default() *Settings {
	return &Settings{Playlists: []string{DefaultPlaylist}}
}

// Clone returns a deep copy, so edits can be discarded.
func (s *Settings) Clone() *Settings {
	return &Settings{
		Playlists:         append([]string(nil), s.Playlists...),
		LastSelectedIndex: s.LastSelectedIndex,
	}
}

// Add appends url. Duplicates are allowed.
func (s *Settings) Add(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrEmptyURL
	}
	s.Playlists = append(s.Playlists, url)
	return nil
}

// Remove deletes the first occurrence of url and keeps LastSelectedIndex
// pointing at the same playlist when possible.
func (s *Settings) Remove(url string) error {
	url = strings.TrimSpace(url)
	for i, p := range s.Playlists {
		if p != url {
			continue
		}
		s.Playlists = append(s.Playlists[:i], s.Playlists[i+1:]...)
		if i < s.LastSelectedIndex {
			s.LastSelectedIndex--
		}
		s.Normalize()
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotFound, url)
}

// Use makes the playlist at index the current one.
func (s *Settings) Use(index int) error {
	if index < 0 || index >= len(s.Playlists) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(s.Playlists))
	}
	s.LastSelectedIndex = index
	return nil
}

// Current returns the playlist in use, or "" when the list is empty.
func (s *Settings) Current() string {
	if len(s.Playlists) == 0 {
		return ""
	}
	i := s.LastSelectedIndex
	if i < 0 || i >= len(s.Playlists) {
		i = 0
	}
	return s.Playlists[i]
}

// Normalize drops blank entries and clamps LastSelectedIndex. Both stores
// apply it on load.
func (s *Settings) Normalize() {
	kept := make([]string, 0, len(s.Playlists))
	for _, p := range s.Playlists {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	s.Playlists = kept
	if s.LastSelectedIndex >= len(s.Playlists) {
		s.LastSelectedIndex = len(s.Playlists) - 1
	}
	if s.LastSelectedIndex < 0 {
		s.LastSelectedIndex = 0
	}
}
