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

package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lucasduport/iptv-player/pkg/playlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const sample = "#EXTM3U\n#EXTINF:-1 group-title=\"News\",BBC\nhttp://x/1\n#EXTINF:-1,Misc\nhttp://x/2\n"

func playlistServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "agent/1.0" {
			http.Error(w, "missing agent", http.StatusForbidden)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestFetch(t *testing.T) {
	srv := playlistServer(t, sample, http.StatusOK)
	defer srv.Close()

	c := New(WithHTTPClient(srv.Client()), WithUserAgent("agent/1.0"))
	text, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, sample, text)
}

func TestFetchStatusError(t *testing.T) {
	srv := playlistServer(t, "nope", http.StatusNotFound)
	defer srv.Close()

	c := New(WithHTTPClient(srv.Client()), WithUserAgent("agent/1.0"))
	_, err := c.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	assert.Contains(t, err.Error(), "404")
}

func TestFetchInvalidURL(t *testing.T) {
	c := New()
	_, err := c.Fetch(context.Background(), "://bad")
	var fe *FetchError
	assert.True(t, errors.As(err, &fe))
}

func TestFetchRejectsOversizedBody(t *testing.T) {
	srv := playlistServer(t, sample, http.StatusOK)
	defer srv.Close()

	c := New(WithHTTPClient(srv.Client()), WithUserAgent("agent/1.0"))
	c.maxBytes = int64(len(sample))
	text, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, sample, text)

	c.maxBytes = int64(len(sample)) - 3
	_, err = c.Fetch(context.Background(), srv.URL)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = c.Load(context.Background(), srv.URL, playlist.ModeGrouped)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := New(WithHTTPClient(srv.Client()), WithTimeout(50*time.Millisecond))
	_, err := c.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestLoadModes(t *testing.T) {
	srv := playlistServer(t, sample, http.StatusOK)
	defer srv.Close()

	c := New(WithHTTPClient(srv.Client()), WithUserAgent("agent/1.0"))

	m, err := c.Load(context.Background(), srv.URL, playlist.ModeGrouped)
	require.NoError(t, err)
	require.Equal(t, 2, m.GroupCount())
	assert.Equal(t, "News", m.Groups()[0].Name)
	assert.Equal(t, playlist.DefaultGroup, m.Groups()[1].Name)

	flat, err := c.Load(context.Background(), srv.URL, playlist.ModeFlat)
	require.NoError(t, err)
	assert.True(t, flat.Flat())
	assert.Equal(t, 2, flat.Len())
	assert.Equal(t, "http://x/1", flat.Channels()[0].URL)
}

func TestLoadAsyncDeliversOnce(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := playlistServer(t, sample, http.StatusOK)
	defer srv.Close()
	defer srv.Client().CloseIdleConnections()

	c := New(WithHTTPClient(srv.Client()), WithUserAgent("agent/1.0"))

	var calls int32
	done := make(chan Result, 2)
	c.LoadAsync(context.Background(), srv.URL, playlist.ModeGrouped, func(r Result) {
		atomic.AddInt32(&calls, 1)
		done <- r
	})

	select {
	case r := <-done:
		require.NoError(t, r.Err)
		assert.Equal(t, srv.URL, r.URL)
		assert.Equal(t, 2, r.Model.Len())
	case <-time.After(5 * time.Second):
		t.Fatal("result not delivered")
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestLoadAsyncDeliversError(t *testing.T) {
	srv := playlistServer(t, "", http.StatusInternalServerError)
	defer srv.Close()

	c := New(WithHTTPClient(srv.Client()), WithUserAgent("agent/1.0"))
	done := make(chan Result, 1)
	c.LoadAsync(context.Background(), srv.URL, playlist.ModeGrouped, func(r Result) { done <- r })

	r := <-done
	assert.Nil(t, r.Model)
	var fe *FetchError
	require.True(t, errors.As(r.Err, &fe))
	assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
}

func TestLoadFallsBackFromXtream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/player_api.php" {
			http.Error(w, "disabled", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sample))
	}))
	defer srv.Close()

	c := New(WithHTTPClient(srv.Client()), WithXtreamAPI(true))
	m, err := c.Load(context.Background(), srv.URL+"/get.php?username=u&password=p&type=m3u_plus", playlist.ModeGrouped)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
}

func TestLoadUsesXtreamAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "get_live_categories":
			_, _ = w.Write([]byte(`[{"category_id":"9","category_name":"Docs"}]`))
		case "get_live_streams":
			_, _ = w.Write([]byte(`[{"name":"Nature","stream_id":5}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(WithHTTPClient(srv.Client()), WithXtreamAPI(true))
	m, err := c.Load(context.Background(), srv.URL+"/get.php?username=u&password=p", playlist.ModeGrouped)
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())
	assert.Equal(t, "Docs", m.Groups()[0].Name)
	assert.Equal(t, srv.URL+"/live/u/p/5.ts", m.Channels()[0].URL)
}
