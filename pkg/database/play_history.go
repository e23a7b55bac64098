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
	"database/sql"
	"time"

	"github.com/lucasduport/iptv-player/pkg/types"
	"github.com/lucasduport/iptv-player/pkg/utils"
)

// AddPlayHistory records the start of a play
func (m *DBManager) AddPlayHistory(sessionID, channelName, groupName, streamURL string) (int64, error) {
	utils.DebugLog("Database: Recording play history - session: %s, channel: %s", sessionID, channelName)
	if err := m.check(); err != nil {
		return 0, err
	}

	var id int64
	err := m.db.QueryRow(`
		INSERT INTO play_history (session_id, channel_name, group_name, stream_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, sessionID, channelName, groupName, streamURL).Scan(&id)
	if err != nil {
		utils.ErrorLog("Database error adding play history: %v", err)
		return 0, err
	}
	return id, nil
}

// ClosePlayHistory marks a play as ended
func (m *DBManager) ClosePlayHistory(historyID int64) error {
	utils.DebugLog("Database: Closing play history record %d", historyID)
	if err := m.check(); err != nil {
		return err
	}
	_, err := m.db.Exec(`UPDATE play_history SET end_time = CURRENT_TIMESTAMP WHERE id = $1 AND end_time IS NULL`, historyID)
	if err != nil {
		utils.ErrorLog("Database error closing play history: %v", err)
		return err
	}
	return nil
}

// RecentPlays returns the latest plays, newest first
func (m *DBManager) RecentPlays(limit int) ([]types.PlayRecord, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := m.db.Query(`
		SELECT id, session_id, channel_name, COALESCE(group_name, ''), stream_url, start_time, end_time
		FROM play_history
		ORDER BY start_time DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		utils.ErrorLog("Database error listing play history: %v", err)
		return nil, err
	}
	defer rows.Close()

	var records []types.PlayRecord
	for rows.Next() {
		var (
			r   types.PlayRecord
			end sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.ChannelName, &r.GroupName, &r.StreamURL, &r.StartTime, &end); err != nil {
			return nil, err
		}
		if end.Valid {
			t := end.Time
			r.EndTime = &t
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetPlayHistoryStats gets statistics about channel usage
func (m *DBManager) GetPlayHistoryStats() (map[string]interface{}, error) {
	utils.DebugLog("Database: Getting play history statistics")
	if err := m.check(); err != nil {
		return nil, err
	}

	stats := make(map[string]interface{})
	var total int
	if err := m.db.QueryRow("SELECT COUNT(*) FROM play_history").Scan(&total); err != nil {
		utils.ErrorLog("Database error counting plays: %v", err)
		return nil, err
	}
	stats["total_plays"] = total

	var channels int
	if err := m.db.QueryRow(`
		SELECT COUNT(DISTINCT stream_url) FROM play_history WHERE start_time > $1
	`, time.Now().Add(-24*time.Hour)).Scan(&channels); err != nil {
		utils.ErrorLog("Database error counting channels: %v", err)
		return nil, err
	}
	stats["channels_24h"] = channels

	return stats, nil
}
