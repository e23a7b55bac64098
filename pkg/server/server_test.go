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
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucasduport/iptv-player/pkg/fetcher"
	"github.com/lucasduport/iptv-player/pkg/playlist"
	"github.com/lucasduport/iptv-player/pkg/session"
	"github.com/lucasduport/iptv-player/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-key"

func init() {
	gin.SetMode(gin.TestMode)
}

type stubPlayer struct {
	mu      sync.Mutex
	playing string
}

func (p *stubPlayer) Play(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = url
	return nil
}

func (p *stubPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = ""
	return nil
}

func (p *stubPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing != ""
}

type stubHistory struct {
	records []types.PlayRecord
	err     error
	limit   int
}

func (h *stubHistory) RecentPlays(limit int) ([]types.PlayRecord, error) {
	h.limit = limit
	return h.records, h.err
}

func (h *stubHistory) GetPlayHistoryStats() (map[string]interface{}, error) {
	if h.err != nil {
		return nil, h.err
	}
	return map[string]interface{}{"total_plays": len(h.records), "channels_24h": 1}, nil
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

const testPlaylist = "#EXTM3U\n#EXTINF:-1 group-title=\"News\",BBC\nhttp://x/1\n#EXTINF:-1 group-title=\"News\",CNN\nhttp://x/2\n#EXTINF:-1,Misc\nhttp://x/3\n"

func newTestServer(t *testing.T, withModel bool, history HistoryReader) (*gin.Engine, *session.Manager, *stubPlayer) {
	t.Helper()
	p := &stubPlayer{}
	sm := session.NewManager(p, nil, nil)
	if withModel {
		sm.Apply(fetcher.Result{URL: "http://provider/list.m3u?token=secret", Model: playlist.Parse(testPlaylist)})
	}
	c := NewServer(HostConfig{Hostname: "127.0.0.1", Port: 0}, testKey, sm, history)
	return c.Router(), sm, p
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(apiKeyHeader, testKey)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestAPIKeyRequired(t *testing.T) {
	r, _, _ := newTestServer(t, true, nil)

	for _, path := range []string{"/api/ping", "/api/status", "/playlist.m3u"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(apiKeyHeader, "wrong")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/ping?api_key="+testKey, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGeneratedAPIKey(t *testing.T) {
	c := NewServer(HostConfig{}, "", session.NewManager(&stubPlayer{}, nil, nil), nil)
	assert.Len(t, c.GetAPIKey(), 36)
}

func TestPing(t *testing.T) {
	r, _, _ := newTestServer(t, false, nil)
	w, resp := do(t, r, http.MethodGet, "/api/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "API is running", resp.Message)
}

func TestPlaylistWithoutModel(t *testing.T) {
	r, _, _ := newTestServer(t, false, nil)
	w, resp := do(t, r, http.MethodGet, "/api/playlist", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, resp.Success)

	w, _ = do(t, r, http.MethodGet, "/playlist.m3u", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetPlaylist(t *testing.T) {
	r, _, _ := newTestServer(t, true, nil)
	w, resp := do(t, r, http.MethodGet, "/api/playlist", "")
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Source string      `json:"source"`
		Count  int         `json:"count"`
		Flat   bool        `json:"flat"`
		Groups []groupView `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, 3, data.Count)
	assert.False(t, data.Flat)
	assert.NotContains(t, data.Source, "secret")
	require.Len(t, data.Groups, 2)
	assert.Equal(t, "News", data.Groups[0].Name)
	assert.Equal(t, playlist.DefaultGroup, data.Groups[1].Name)
	assert.Equal(t, 2, data.Groups[1].Channels[0].Index)
}

func TestSelectAndNavigate(t *testing.T) {
	r, sm, p := newTestServer(t, true, nil)

	w, resp := do(t, r, http.MethodPost, "/api/select", `{"group":0,"channel":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Now Playing: CNN", resp.Message)
	assert.True(t, p.Playing())

	w, resp = do(t, r, http.MethodPost, "/api/down", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Now Playing: Misc", resp.Message)

	var st statusView
	require.NoError(t, json.Unmarshal(resp.Data, &st))
	assert.Equal(t, selectionView{Group: 1, Channel: 0}, st.Selection)
	require.NotNil(t, st.Channel)
	assert.Equal(t, 2, st.Channel.Index)

	w, _ = do(t, r, http.MethodPost, "/api/down", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Now Playing: Misc", sm.Label())

	w, resp = do(t, r, http.MethodPost, "/api/up", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Now Playing: CNN", resp.Message)

	w, resp = do(t, r, http.MethodPost, "/api/select", `{"index":0}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Now Playing: BBC", resp.Message)
}

func TestSelectErrors(t *testing.T) {
	r, _, _ := newTestServer(t, true, nil)

	w, _ := do(t, r, http.MethodPost, "/api/select", `{"index":42}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/select", `{"group":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/select", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	empty, _, _ := newTestServer(t, false, nil)
	w, _ = do(t, empty, http.MethodPost, "/api/select", `{"index":0}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStop(t *testing.T) {
	r, _, p := newTestServer(t, true, nil)
	do(t, r, http.MethodPost, "/api/select", `{"index":0}`)

	w, resp := do(t, r, http.MethodPost, "/api/stop", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, p.Playing())

	var st statusView
	require.NoError(t, json.Unmarshal(resp.Data, &st))
	assert.Equal(t, session.NoneLabel, st.Label)
}

func TestReloadWithoutLoader(t *testing.T) {
	r, _, _ := newTestServer(t, true, nil)
	w, resp := do(t, r, http.MethodPost, "/api/reload", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, resp.Success)
}

func TestHistory(t *testing.T) {
	r, _, _ := newTestServer(t, true, nil)
	w, _ := do(t, r, http.MethodGet, "/api/history", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	h := &stubHistory{records: []types.PlayRecord{{ID: 1, ChannelName: "BBC", StartTime: time.Now()}}}
	r, _, _ = newTestServer(t, true, h)

	w, resp := do(t, r, http.MethodGet, "/api/history?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, h.limit)
	var records []types.PlayRecord
	require.NoError(t, json.Unmarshal(resp.Data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "BBC", records[0].ChannelName)

	w, _ = do(t, r, http.MethodGet, "/api/history?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h.err = errors.New("db down")
	w, _ = do(t, r, http.MethodGet, "/api/history", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHistoryStats(t *testing.T) {
	r, _, _ := newTestServer(t, true, nil)
	w, _ := do(t, r, http.MethodGet, "/api/history/stats", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	h := &stubHistory{records: []types.PlayRecord{{ID: 1}, {ID: 2}}}
	r, _, _ = newTestServer(t, true, h)

	w, resp := do(t, r, http.MethodGet, "/api/history/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]int
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, 2, stats["total_plays"])
	assert.Equal(t, 1, stats["channels_24h"])

	h.err = errors.New("db down")
	w, _ = do(t, r, http.MethodGet, "/api/history/stats", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestExportM3U(t *testing.T) {
	r, _, _ := newTestServer(t, true, nil)
	w, _ := do(t, r, http.MethodGet, "/playlist.m3u", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/x-mpegurl", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "#EXTM3U"))
	assert.Equal(t, playlist.Parse(testPlaylist).Groups(), playlist.Parse(body).Groups())
}

func TestHostConfigAddr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", HostConfig{Hostname: "0.0.0.0", Port: 8080}.Addr())
}
