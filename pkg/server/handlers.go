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

package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lucasduport/iptv-player/pkg/playlist"
	"github.com/lucasduport/iptv-player/pkg/session"
	"github.com/lucasduport/iptv-player/pkg/types"
	"github.com/lucasduport/iptv-player/pkg/utils"
)

type channelView struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Group string `json:"group,omitempty"`
}

type groupView struct {
	Name     string        `json:"name"`
	Channels []channelView `json:"channels"`
}

type selectionView struct {
	Group   int `json:"group"`
	Channel int `json:"channel"`
}

type statusView struct {
	SessionID string        `json:"session_id"`
	Source    string        `json:"source,omitempty"`
	Mode      string        `json:"mode"`
	Label     string        `json:"label"`
	Playing   bool          `json:"playing"`
	Loading   bool          `json:"loading"`
	Selection selectionView `json:"selection"`
	Channel   *channelView  `json:"channel,omitempty"`
}

// selectRequest picks either a group/channel pair or a global index.
type selectRequest struct {
	Group   *int `json:"group"`
	Channel *int `json:"channel"`
	Index   *int `json:"index"`
}

func statusFromSnapshot(s session.Snapshot) statusView {
	v := statusView{
		SessionID: s.SessionID,
		Source:    utils.MaskURL(s.Source),
		Mode:      string(s.Mode),
		Label:     s.Label,
		Playing:   s.Playing,
		Loading:   s.Loading,
		Selection: selectionView{Group: s.Selection.Group, Channel: s.Selection.Channel},
	}
	if ch, ok := s.Current(); ok {
		v.Channel = &channelView{Index: s.Model.Index(s.Selection), Name: ch.Name, URL: ch.URL, Group: ch.Group}
	}
	return v
}

func respondError(ctx *gin.Context, status int, msg string) {
	ctx.JSON(status, types.APIResponse{Success: false, Error: msg})
}

// respondSessionError maps session errors to HTTP status codes.
func respondSessionError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNoPlaylist):
		respondError(ctx, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, session.ErrInvalidSelection):
		respondError(ctx, http.StatusNotFound, err.Error())
	default:
		utils.ErrorLog("API: %v", err)
		respondError(ctx, http.StatusInternalServerError, err.Error())
	}
}

func (c *Config) respondStatus(ctx *gin.Context, msg string) {
	ctx.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Message: msg,
		Data:    statusFromSnapshot(c.sessionManager.Snapshot()),
	})
}

// getPlaylist returns the loaded groups and channels
func (c *Config) getPlaylist(ctx *gin.Context) {
	snap := c.sessionManager.Snapshot()
	if snap.Model == nil {
		respondError(ctx, http.StatusServiceUnavailable, session.ErrNoPlaylist.Error())
		return
	}

	groups := snap.Model.Groups()
	out := make([]groupView, 0, len(groups))
	index := 0
	for _, g := range groups {
		gv := groupView{Name: g.Name, Channels: make([]channelView, 0, len(g.Channels))}
		for _, ch := range g.Channels {
			gv.Channels = append(gv.Channels, channelView{Index: index, Name: ch.Name, URL: ch.URL, Group: ch.Group})
			index++
		}
		out = append(out, gv)
	}

	utils.DebugLog("API: Returning %d channels in %d groups", index, len(out))
	ctx.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"source":   utils.MaskURL(snap.Source),
			"flat":     snap.Model.Flat(),
			"count":    index,
			"groups":   out,
			"selected": selectionView{Group: snap.Selection.Group, Channel: snap.Selection.Channel},
		},
	})
}

// getStatus returns the selection and now playing label
func (c *Config) getStatus(ctx *gin.Context) {
	c.respondStatus(ctx, "")
}

// selectChannel plays a channel by position
func (c *Config) selectChannel(ctx *gin.Context) {
	var req selectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	var err error
	switch {
	case req.Index != nil:
		utils.DebugLog("API: Select index %d", *req.Index)
		err = c.sessionManager.SelectIndex(*req.Index)
	case req.Group != nil && req.Channel != nil:
		sel := playlist.Selection{Group: *req.Group, Channel: *req.Channel}
		utils.DebugLog("API: Select %s", sel)
		err = c.sessionManager.Select(sel)
	default:
		respondError(ctx, http.StatusBadRequest, "Provide either index or group and channel")
		return
	}
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	c.respondStatus(ctx, c.sessionManager.Label())
}

func (c *Config) moveUp(ctx *gin.Context) {
	if err := c.sessionManager.MoveUp(); err != nil {
		respondSessionError(ctx, err)
		return
	}
	c.respondStatus(ctx, c.sessionManager.Label())
}

func (c *Config) moveDown(ctx *gin.Context) {
	if err := c.sessionManager.MoveDown(); err != nil {
		respondSessionError(ctx, err)
		return
	}
	c.respondStatus(ctx, c.sessionManager.Label())
}

func (c *Config) stopPlayback(ctx *gin.Context) {
	if err := c.sessionManager.Stop(); err != nil {
		respondSessionError(ctx, err)
		return
	}
	c.respondStatus(ctx, "Playback stopped")
}

// reloadPlaylist refetches the current playlist in the background
func (c *Config) reloadPlaylist(ctx *gin.Context) {
	if err := c.sessionManager.Reload(c.reloadCtx); err != nil {
		respondError(ctx, http.StatusConflict, err.Error())
		return
	}
	ctx.JSON(http.StatusAccepted, types.APIResponse{
		Success: true,
		Message: "Playlist reload started",
	})
}

// getHistory lists recent plays from the database
func (c *Config) getHistory(ctx *gin.Context) {
	if c.history == nil {
		respondError(ctx, http.StatusServiceUnavailable, "Database not configured")
		return
	}

	limit := 20
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			respondError(ctx, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	records, err := c.history.RecentPlays(limit)
	if err != nil {
		utils.ErrorLog("API: Failed to read play history: %v", err)
		respondError(ctx, http.StatusInternalServerError, "Failed to read play history")
		return
	}
	if records == nil {
		records = []types.PlayRecord{}
	}
	ctx.JSON(http.StatusOK, types.APIResponse{Success: true, Data: records})
}

// getHistoryStats reports play counts from the database
func (c *Config) getHistoryStats(ctx *gin.Context) {
	if c.history == nil {
		respondError(ctx, http.StatusServiceUnavailable, "Database not configured")
		return
	}

	stats, err := c.history.GetPlayHistoryStats()
	if err != nil {
		utils.ErrorLog("API: Failed to read play statistics: %v", err)
		respondError(ctx, http.StatusInternalServerError, "Failed to read play statistics")
		return
	}
	ctx.JSON(http.StatusOK, types.APIResponse{Success: true, Data: stats})
}

// getM3U exports the loaded playlist as Extended M3U
func (c *Config) getM3U(ctx *gin.Context) {
	snap := c.sessionManager.Snapshot()
	if snap.Model == nil {
		respondError(ctx, http.StatusServiceUnavailable, session.ErrNoPlaylist.Error())
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, "playlist.m3u"))
	ctx.Header("Content-Type", "audio/x-mpegurl")
	ctx.Status(http.StatusOK)
	if err := playlist.WriteM3U(ctx.Writer, snap.Model); err != nil {
		utils.ErrorLog("Failed to write playlist export: %v", err)
	}
}
