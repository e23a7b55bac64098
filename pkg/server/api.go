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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucasduport/iptv-player/pkg/types"
	"github.com/lucasduport/iptv-player/pkg/utils"
)

func (c *Config) setupAPI(r *gin.Engine) {
	api := r.Group("/api")
	api.Use(c.apiKeyAuth())

	api.GET("/ping", func(ctx *gin.Context) {
		utils.DebugLog("API ping received")
		ctx.JSON(http.StatusOK, types.APIResponse{
			Success: true,
			Message: "API is running",
			Data: map[string]interface{}{
				"time":         time.Now().String(),
				"session_id":   c.sessionManager.ID(),
				"db_connected": c.history != nil,
			},
		})
	})

	api.GET("/playlist", c.getPlaylist)
	api.GET("/status", c.getStatus)
	api.POST("/select", c.selectChannel)
	api.POST("/up", c.moveUp)
	api.POST("/down", c.moveDown)
	api.POST("/stop", c.stopPlayback)
	api.POST("/reload", c.reloadPlaylist)
	api.GET("/history", c.getHistory)
	api.GET("/history/stats", c.getHistoryStats)

	utils.InfoLog("API routes configured successfully")
}
