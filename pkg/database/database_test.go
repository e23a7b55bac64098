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

package database

import (
	"os"
	"testing"

	"github.com/lucasduport/iptv-player/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnStringFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "player")
	t.Setenv("DB_USER", "tv")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_SSLMODE", "require")

	assert.Equal(t, "host=db.internal port=6543 dbname=player user=tv password=pw sslmode=require", ConnStringFromEnv())
}

func TestNilManager(t *testing.T) {
	var m *DBManager
	assert.False(t, m.IsInitialized())
	assert.NoError(t, m.Close())

	_, err := m.Load()
	assert.Error(t, err)
	assert.Error(t, m.Save(settings.Default()))
	_, err = m.AddPlayHistory("s", "c", "g", "u")
	assert.Error(t, err)
	assert.Error(t, m.ClosePlayHistory(1))
	_, err = m.RecentPlays(5)
	assert.Error(t, err)
}

// TestPostgres runs against a live server when IPTV_PLAYER_TEST_DSN is set.
func TestPostgres(t *testing.T) {
	dsn := os.Getenv("IPTV_PLAYER_TEST_DSN")
	if dsn == "" {
		t.Skip("IPTV_PLAYER_TEST_DSN not set")
	}

	m, err := NewDBManager(dsn)
	require.NoError(t, err)
	defer m.Close()
	require.True(t, m.IsInitialized())

	in := &settings.Settings{Playlists: []string{"http://a", "http://b"}, LastSelectedIndex: 1}
	require.NoError(t, m.Save(in))
	out, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)

	require.NoError(t, m.Save(&settings.Settings{}))
	out, err = m.Load()
	require.NoError(t, err)
	assert.Empty(t, out.Playlists, "an emptied list does not come back as defaults")

	id, err := m.AddPlayHistory("session-1", "BBC", "News", "http://x/1")
	require.NoError(t, err)
	require.NoError(t, m.ClosePlayHistory(id))

	plays, err := m.RecentPlays(10)
	require.NoError(t, err)
	require.NotEmpty(t, plays)
	assert.Equal(t, id, plays[0].ID)
	assert.Equal(t, "BBC", plays[0].ChannelName)
	assert.NotNil(t, plays[0].EndTime)

	stats, err := m.GetPlayHistoryStats()
	require.NoError(t, err)
	assert.Contains(t, stats, "total_plays")
}
