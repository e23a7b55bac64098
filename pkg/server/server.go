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

// Package server exposes the player session over a small HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lucasduport/iptv-player/pkg/session"
	"github.com/lucasduport/iptv-player/pkg/types"
	"github.com/lucasduport/iptv-player/pkg/utils"
)

// HistoryReader lists recent plays and usage statistics.
type HistoryReader interface {
	RecentPlays(limit int) ([]types.PlayRecord, error)
	GetPlayHistoryStats() (map[string]interface{}, error)
}

// HostConfig is the listening address of the API
type HostConfig struct {
	Hostname string
	Port     int
}

// Addr returns host:port.
func (h HostConfig) Addr() string {
	return net.JoinHostPort(h.Hostname, strconv.Itoa(h.Port))
}

// Config represent the server configuration
type Config struct {
	HostConfig

	apiKey         string
	sessionManager *session.Manager
	history        HistoryReader
	// reloadCtx bounds playlist reloads started from the API.
	reloadCtx context.Context
}

// NewServer creates the API server. An empty apiKey is replaced by a
// generated one; history may be nil.
func NewServer(host HostConfig, apiKey string, sm *session.Manager, history HistoryReader) *Config {
	return &Config{
		HostConfig:     host,
		apiKey:         resolveAPIKey(apiKey),
		sessionManager: sm,
		history:        history,
		reloadCtx:      context.Background(),
	}
}

// Router builds the gin engine with every route.
func (c *Config) Router() *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(), gin.Recovery(), cors.Default())

	c.setupAPI(router)
	router.GET("/playlist.m3u", c.apiKeyAuth(), c.getM3U)
	return router
}

// Serve runs the API until ctx is cancelled.
func (c *Config) Serve(ctx context.Context) error {
	c.reloadCtx = ctx
	srv := &http.Server{
		Addr:              c.Addr(),
		Handler:           c.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLog("[iptv-player] Remote control API listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	utils.InfoLog("[iptv-player] Shutting down remote control API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		utils.DebugLog("%s %s -> %d (%s) from %s",
			ctx.Request.Method, ctx.Request.URL.Path, ctx.Writer.Status(), utils.Since(start), ctx.ClientIP())
	}
}
