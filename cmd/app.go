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

package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/lucasduport/iptv-player/pkg/database"
	"github.com/lucasduport/iptv-player/pkg/discord"
	"github.com/lucasduport/iptv-player/pkg/fetcher"
	"github.com/lucasduport/iptv-player/pkg/player"
	"github.com/lucasduport/iptv-player/pkg/playlist"
	"github.com/lucasduport/iptv-player/pkg/session"
	"github.com/lucasduport/iptv-player/pkg/settings"
	"github.com/lucasduport/iptv-player/pkg/utils"
	"github.com/spf13/viper"
)

// app wires the components a command needs.
type app struct {
	store     settings.Store
	db        *database.DBManager
	settings  *settings.Settings
	fetcher   *fetcher.Client
	player    *player.ExecPlayer
	session   *session.Manager
	announcer *discord.Announcer
}

// newApp loads settings and builds the fetcher. withSession also creates the
// player, the session and the optional announcer.
func newApp(withSession bool) (*app, error) {
	a := &app{}

	store, db, err := openStore()
	if err != nil {
		return nil, err
	}
	a.store, a.db = store, db

	if a.settings, err = store.Load(); err != nil {
		a.Close()
		return nil, fmt.Errorf("load settings: %w", err)
	}

	a.fetcher = fetcher.New(
		fetcher.WithTimeout(fetchTimeout()),
		fetcher.WithUserAgent(viper.GetString("user-agent")),
		fetcher.WithXtreamAPI(viper.GetBool("xtream-api")),
	)

	if !withSession {
		return a, nil
	}

	a.player = player.NewExecPlayer(viper.GetString("player"), viper.GetStringSlice("player-args")...)

	var history session.HistoryRecorder
	if a.db != nil {
		history = a.db
	}
	a.session = session.NewManager(a.player, history, a.fetcher)

	token, channel := viper.GetString("discord-token"), viper.GetString("discord-channel")
	if token != "" && channel != "" {
		ann, err := discord.NewAnnouncer(token, channel)
		if err != nil {
			utils.WarnLog("Discord announcer disabled: %v", err)
		} else {
			a.announcer = ann
			a.session.AddObserver(ann)
		}
	}
	return a, nil
}

// openStore picks PostgreSQL when it is configured and the settings file
// otherwise.
func openStore() (settings.Store, *database.DBManager, error) {
	dsn := viper.GetString("database-url")
	if dsn != "" || utils.GetEnvOrDefault("DB_HOST", "") != "" {
		db, err := database.NewDBManager(dsn)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	}

	fs, err := settings.NewFileStore(viper.GetString("settings-file"))
	if err != nil {
		return nil, nil, err
	}
	utils.DebugLog("Using settings file %s", fs.Path())
	return fs, nil, nil
}

// Close stops playback and releases every resource.
func (a *app) Close() {
	if a.session != nil {
		if err := a.session.Stop(); err != nil {
			utils.WarnLog("Failed to stop playback: %v", err)
		}
	}
	if a.announcer != nil {
		if a.session != nil {
			a.session.RemoveObserver(a.announcer)
		}
		a.announcer.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// playlistURL resolves the playlist to load: the flag, then Xtream
// credentials, then the current settings entry.
func (a *app) playlistURL() (string, error) {
	if u := viper.GetString("playlist-url"); u != "" {
		return u, nil
	}

	base := strings.TrimRight(viper.GetString("xtream-base-url"), "/")
	user, pass := viper.GetString("xtream-user"), viper.GetString("xtream-password")
	if base != "" && user != "" && pass != "" {
		q := url.Values{}
		q.Set("username", user)
		q.Set("password", pass)
		q.Set("type", "m3u_plus")
		q.Set("output", "ts")
		u := base + "/get.php?" + q.Encode()
		utils.InfoLog("Using Xtream provider %s", utils.MaskURL(u))
		return u, nil
	}

	if u := a.settings.Current(); u != "" {
		return u, nil
	}
	return "", fmt.Errorf("no playlist configured, add one with 'iptv-player playlists add <url>'")
}

func parseMode() (playlist.ParseMode, error) {
	return playlist.ParseModeFromString(viper.GetString("mode"))
}
