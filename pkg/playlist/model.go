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

// Package playlist turns M3U playlist text into an immutable channel model and
// computes channel-to-channel navigation over it.
package playlist

import "fmt"

const (
	// DefaultGroup is used when an #EXTINF line carries no group-title.
	DefaultGroup = "Other"
	// UnknownName is used when an #EXTINF line has no comma separated title.
	UnknownName = "Unknown"
)

// Channel is a single playable playlist entry.
type Channel struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Group string `json:"group"`
}

// Group is a named, non-empty, ordered list of channels.
type Group struct {
	Name     string    `json:"name"`
	Channels []Channel `json:"channels"`
}

// Model is the parsed playlist. It is never mutated after construction;
// accessors hand out copies.
type Model struct {
	groups []Group
	flat   bool
}

// Selection points at a channel inside a Model.
type Selection struct {
	Group   int `json:"group"`
	Channel int `json:"channel"`
}

// NoSelection is the "nothing selected" state.
var NoSelection = Selection{Group: -1, Channel: -1}

// IsNone reports whether s selects nothing.
func (s Selection) IsNone() bool {
	return s.Group < 0 || s.Channel < 0
}

func (s Selection) String() string {
	if s.IsNone() {
		return "none"
	}
	return fmt.Sprintf("%d/%d", s.Group, s.Channel)
}

// builder accumulates groups in first-seen order.
type builder struct {
	groups []Group
	index  map[string]int
}

func newBuilder() *builder {
	return &builder{index: make(map[string]int)}
}

func (b *builder) add(ch Channel) {
	i, ok := b.index[ch.Group]
	if !ok {
		i = len(b.groups)
		b.index[ch.Group] = i
		b.groups = append(b.groups, Group{Name: ch.Group})
	}
	b.groups[i].Channels = append(b.groups[i].Channels, ch)
}

func (b *builder) model(flat bool) *Model {
	return &Model{groups: b.groups, flat: flat}
}

// NewModel builds a grouped model from channels, grouping by Channel.Group in
// first-seen order. Channels without a URL are skipped and a blank group
// falls back to DefaultGroup.
func NewModel(channels []Channel) *Model {
	b := newBuilder()
	for _, ch := range channels {
		if ch.URL == "" {
			continue
		}
		if ch.Group == "" {
			ch.Group = DefaultGroup
		}
		b.add(ch)
	}
	return b.model(false)
}

// NewFlatModel builds a flat model from bare stream URLs. Each channel is
// named after its URL and belongs to a single unnamed group.
func NewFlatModel(urls []string) *Model {
	b := newBuilder()
	for _, u := range urls {
		if u == "" {
			continue
		}
		b.add(Channel{Name: u, URL: u})
	}
	return b.model(true)
}

// Flat reports whether the model was produced from a bare-URL playlist.
func (m *Model) Flat() bool {
	return m != nil && m.flat
}

// Groups returns a deep copy of the groups.
func (m *Model) Groups() []Group {
	if m == nil {
		return nil
	}
	out := make([]Group, len(m.groups))
	for i, g := range m.groups {
		out[i] = Group{Name: g.Name, Channels: append([]Channel(nil), g.Channels...)}
	}
	return out
}

// GroupCount returns the number of groups.
func (m *Model) GroupCount() int {
	if m == nil {
		return 0
	}
	return len(m.groups)
}

// GroupLen returns the number of channels in group g, 0 when out of range.
func (m *Model) GroupLen(g int) int {
	if m == nil || g < 0 || g >= len(m.groups) {
		return 0
	}
	return len(m.groups[g].Channels)
}

// Len returns the total number of channels.
func (m *Model) Len() int {
	n := 0
	for g := 0; g < m.GroupCount(); g++ {
		n += m.GroupLen(g)
	}
	return n
}

// Channels returns all channels in display order.
func (m *Model) Channels() []Channel {
	out := make([]Channel, 0, m.Len())
	for g := 0; g < m.GroupCount(); g++ {
		out = append(out, m.groups[g].Channels...)
	}
	return out
}

// Valid reports whether s points at an existing channel.
func (m *Model) Valid(s Selection) bool {
	if s.IsNone() {
		return false
	}
	return s.Channel < m.GroupLen(s.Group)
}

// Channel resolves a selection.
func (m *Model) Channel(s Selection) (Channel, bool) {
	if !m.Valid(s) {
		return Channel{}, false
	}
	return m.groups[s.Group].Channels[s.Channel], true
}

// Find converts a zero-based position in display order into a Selection.
func (m *Model) Find(index int) (Selection, bool) {
	if index < 0 {
		return NoSelection, false
	}
	for g := 0; g < m.GroupCount(); g++ {
		n := m.GroupLen(g)
		if index < n {
			return Selection{Group: g, Channel: index}, true
		}
		index -= n
	}
	return NoSelection, false
}

// Index is the inverse of Find. It returns -1 for invalid selections.
func (m *Model) Index(s Selection) int {
	if !m.Valid(s) {
		return -1
	}
	idx := s.Channel
	for g := 0; g < s.Group; g++ {
		idx += m.GroupLen(g)
	}
	return idx
}
