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
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lucasduport/iptv-player/pkg/types"
	"github.com/lucasduport/iptv-player/pkg/utils"
)

// apiKeyHeader carries the key on every API request.
const apiKeyHeader = "X-API-Key"

func resolveAPIKey(key string) string {
	if key != "" {
		utils.InfoLog("Using configured API key")
		return key
	}
	key = uuid.New().String()
	utils.InfoLog("Generated new API key: %s", key)
	return key
}

// GetAPIKey returns the key clients must send in X-API-Key.
func (c *Config) GetAPIKey() string {
	return c.apiKey
}

// apiKeyAuth middleware validates the API key
func (c *Config) apiKeyAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := ctx.GetHeader(apiKeyHeader)
		if key == "" {
			key = ctx.Query("api_key")
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(c.apiKey)) != 1 {
			utils.DebugLog("API authentication failed - invalid key: %s", utils.MaskString(key))
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.APIResponse{
				Success: false,
				Error:   "Invalid API key",
			})
			return
		}
		ctx.Next()
	}
}
