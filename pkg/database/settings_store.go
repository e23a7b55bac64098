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
	"errors"
	"fmt"
	"strconv"

	"github.com/lucasduport/iptv-player/pkg/settings"
	"github.com/lucasduport/iptv-player/pkg/utils"
)

const lastSelectedKey = "last_selected_index"

// Load reads the playlist settings. Defaults are returned only when settings
// were never saved.
func (m *DBManager) Load() (*settings.Settings, error) {
	utils.DebugLog("Database: Loading settings")
	if err := m.check(); err != nil {
		return nil, err
	}

	rows, err := m.db.Query(`SELECT url FROM player_playlists ORDER BY position`)
	if err != nil {
		utils.ErrorLog("Database error loading playlists: %v", err)
		return nil, err
	}
	defer rows.Close()

	s := &settings.Settings{}
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		s.Playlists = append(s.Playlists, url)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var raw string
	err = m.db.QueryRow(`SELECT value FROM player_settings WHERE key = $1`, lastSelectedKey).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if len(s.Playlists) == 0 {
			utils.DebugLog("No settings stored, using defaults")
			return settings.Default(), nil
		}
	case err != nil:
		utils.ErrorLog("Database error loading %s: %v", lastSelectedKey, err)
		return nil, err
	default:
		if s.LastSelectedIndex, err = strconv.Atoi(raw); err != nil {
			utils.WarnLog("Ignoring invalid %s %q", lastSelectedKey, raw)
			s.LastSelectedIndex = 0
		}
	}

	s.Normalize()
	return s, nil
}

// Save replaces the stored playlist settings in one transaction.
func (m *DBManager) Save(s *settings.Settings) error {
	utils.DebugLog("Database: Saving %d playlists", len(s.Playlists))
	if err := m.check(); err != nil {
		return err
	}

	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() // nolint: errcheck

	if _, err := tx.Exec(`DELETE FROM player_playlists`); err != nil {
		return fmt.Errorf("clear playlists: %w", err)
	}
	for i, url := range s.Playlists {
		if _, err := tx.Exec(`INSERT INTO player_playlists (position, url) VALUES ($1, $2)`, i, url); err != nil {
			return fmt.Errorf("insert playlist %d: %w", i, err)
		}
	}
	_, err = tx.Exec(`
		INSERT INTO player_settings (key, value) VALUES ($1, $2)
		ON CONFLICT(key) DO UPDATE SET
		  value = EXCLUDED.value,
		  updated_at = CURRENT_TIMESTAMP
	`, lastSelectedKey, strconv.Itoa(s.LastSelectedIndex))
	if err != nil {
		return fmt.Errorf("store %s: %w", lastSelectedKey, err)
	}

	if err := tx.Commit(); err != nil {
		utils.ErrorLog("Database error saving settings: %v", err)
		return err
	}
	return nil
}

var _ settings.Store = (*DBManager)(nil)
