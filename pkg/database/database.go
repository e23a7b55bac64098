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
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/lucasduport/iptv-player/pkg/utils"
)

// DBManager handles database operations
type DBManager struct {
	db          *sql.DB
	initialized bool
}

// ConnStringFromEnv builds a lib/pq connection string from the DB_* variables
func ConnStringFromEnv() string {
	host := utils.GetEnvOrDefault("DB_HOST", "localhost")
	port := utils.GetEnvOrDefault("DB_PORT", "5432")
	dbName := utils.GetEnvOrDefault("DB_NAME", "iptvplayer")
	user := utils.GetEnvOrDefault("DB_USER", "postgres")
	password := utils.GetEnvOrDefault("DB_PASSWORD", "")
	sslMode := utils.GetEnvOrDefault("DB_SSLMODE", "disable")

	utils.DebugLog("PostgreSQL settings: host=%s port=%s dbname=%s user=%s", host, port, dbName, user)
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=%s",
		host, port, dbName, user, password, sslMode,
	)
}

// NewDBManager connects to PostgreSQL and creates the schema. An empty dsn
// falls back to the DB_* environment variables.
func NewDBManager(dsn string) (*DBManager, error) {
	utils.InfoLog("Initializing PostgreSQL database connection")

	if dsn == "" {
		dsn = ConnStringFromEnv()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		utils.ErrorLog("Failed to connect to database: %v", err)
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}
	utils.InfoLog("Database connection successful")

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	manager := &DBManager{db: db}
	if err := manager.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	manager.initialized = true
	return manager, nil
}

// IsInitialized returns whether the database is initialized
func (m *DBManager) IsInitialized() bool {
	return m != nil && m.initialized && m.db != nil
}

// Close closes the database connection
func (m *DBManager) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	utils.InfoLog("Closing database connection")
	return m.db.Close()
}

func (m *DBManager) check() error {
	if m == nil || m.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return nil
}

// initSchema creates database tables if they don't exist
func (m *DBManager) initSchema() error {
	utils.InfoLog("Initializing database schema")

	tables := []struct {
		name string
		ddl  string
	}{
		{"player_settings", `
			CREATE TABLE IF NOT EXISTS player_settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`},
		{"player_playlists", `
			CREATE TABLE IF NOT EXISTS player_playlists (
				position INTEGER PRIMARY KEY,
				url TEXT NOT NULL
			)`},
		{"play_history", `
			CREATE TABLE IF NOT EXISTS play_history (
				id SERIAL PRIMARY KEY,
				session_id TEXT NOT NULL,
				channel_name TEXT NOT NULL,
				group_name TEXT,
				stream_url TEXT NOT NULL,
				start_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				end_time TIMESTAMP
			)`},
	}

	for _, t := range tables {
		if _, err := m.db.Exec(t.ddl); err != nil {
			utils.ErrorLog("Failed to create %s table: %v", t.name, err)
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
	}

	if _, err := m.db.Exec(`CREATE INDEX IF NOT EXISTS idx_play_history_start ON play_history(start_time DESC)`); err != nil {
		utils.WarnLog("Failed to create play_history index: %v", err)
	}

	utils.InfoLog("Database schema initialized successfully")

	var count int
	err := m.db.QueryRow(`SELECT count(*)
		FROM information_schema.tables
		WHERE table_name IN ('player_settings', 'player_playlists', 'play_history')`).Scan(&count)
	if err != nil {
		utils.WarnLog("Failed to verify tables were created: %v", err)
	} else {
		utils.InfoLog("Database verification: %d of %d required tables exist", count, len(tables))
	}
	return nil
}
