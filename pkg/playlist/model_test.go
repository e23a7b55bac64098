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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelIsImmutable(t *testing.T) {
	m := navModel()
	groups := m.Groups()
	groups[0].Name = "Changed"
	groups[0].Channels[0].URL = "http://evil"

	ch, ok := m.Channel(Selection{0, 0})
	require.True(t, ok)
	assert.Equal(t, "http://x/n1", ch.URL)
	assert.Equal(t, "News", m.Groups()[0].Name)
}

func TestFindAndIndex(t *testing.T) {
	m := navModel()
	assert.Equal(t, 6, m.Len())

	for i := 0; i < m.Len(); i++ {
		sel, ok := m.Find(i)
		require.True(t, ok)
		assert.Equal(t, i, m.Index(sel))
	}

	sel, ok := m.Find(3)
	require.True(t, ok)
	assert.Equal(t, Selection{2, 0}, sel)

	_, ok = m.Find(6)
	assert.False(t, ok)
	_, ok = m.Find(-1)
	assert.False(t, ok)
	assert.Equal(t, -1, m.Index(NoSelection))
}

func TestNewModelDefaults(t *testing.T) {
	m := NewModel([]Channel{
		{Name: "a", URL: "http://x/a"},
		{Name: "no url"},
		{Name: "b", URL: "http://x/b", Group: "B"},
	})
	assert.Equal(t, []Group{
		{Name: DefaultGroup, Channels: []Channel{{Name: "a", URL: "http://x/a", Group: DefaultGroup}}},
		{Name: "B", Channels: []Channel{{Name: "b", URL: "http://x/b", Group: "B"}}},
	}, m.Groups())
}

func TestSelectionString(t *testing.T) {
	assert.Equal(t, "none", NoSelection.String())
	assert.True(t, Selection{Group: 0, Channel: -1}.IsNone())
	assert.Equal(t, "1/2", Selection{1, 2}.String())
}
