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

// Package fetcher downloads playlists over HTTP(S) and hands back parsed
// models, either synchronously or through a single asynchronous callback.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lucasduport/iptv-player/pkg/playlist"
	"github.com/lucasduport/iptv-player/pkg/utils"
	"github.com/lucasduport/iptv-player/pkg/xtream"
	"golang.org/x/sync/singleflight"
)

// MaxPlaylistSize bounds the accepted response body. Larger playlists are
// rejected rather than truncated.
const MaxPlaylistSize = 64 << 20

// ErrTooLarge is wrapped by the FetchError returned for oversized playlists.
var ErrTooLarge = errors.New("playlist exceeds size limit")

// DefaultTimeout applies to the whole request, body included.
const DefaultTimeout = 30 * time.Second

// FetchError reports a transport failure or a non-2xx response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d %s", utils.MaskURL(e.URL), e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch %s: %v", utils.MaskURL(e.URL), e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Result is delivered exactly once per LoadAsync call.
type Result struct {
	URL   string
	Mode  playlist.ParseMode
	Model *playlist.Model
	Err   error
}

// Client fetches and parses playlists.
type Client struct {
	httpClient *http.Client
	userAgent  string
	xtreamAPI  bool
	maxBytes   int64
	flight     singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithXtreamAPI makes grouped loads of Xtream get.php links go through the
// provider's player_api.php instead of downloading the generated M3U.
func WithXtreamAPI(enabled bool) Option {
	return func(c *Client) {
		c.xtreamAPI = enabled
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  utils.GetIPTVUserAgent(),
		maxBytes:   MaxPlaylistSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads the playlist text at url.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "audio/x-mpegurl, application/vnd.apple.mpegurl, text/plain, */*")

	utils.DebugLog("Fetching playlist %s", utils.MaskURL(url))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) // nolint: errcheck
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > c.maxBytes {
		return "", &FetchError{URL: url, Err: fmt.Errorf("%w (%d bytes)", ErrTooLarge, c.maxBytes)}
	}

	utils.InfoLog("Fetched playlist %s (%d bytes in %s)", utils.MaskURL(url), len(body), utils.Since(start))
	return string(body), nil
}

// Load fetches url and parses it with mode.
func (c *Client) Load(ctx context.Context, url string, mode playlist.ParseMode) (*playlist.Model, error) {
	key := string(mode) + "|" + url
	v, err, shared := c.flight.Do(key, func() (interface{}, error) {
		return c.load(ctx, url, mode)
	})
	if shared {
		utils.DebugLog("Coalesced concurrent load of %s", utils.MaskURL(url))
	}
	if err != nil {
		return nil, err
	}
	return v.(*playlist.Model), nil
}

func (c *Client) load(ctx context.Context, url string, mode playlist.ParseMode) (*playlist.Model, error) {
	if c.xtreamAPI && mode != playlist.ModeFlat {
		if creds, ok := xtream.DetectCredentials(url); ok {
			m, err := c.loadXtream(ctx, creds)
			if err == nil {
				return m, nil
			}
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			utils.WarnLog("Xtream API load failed for %s, falling back to M3U download: %v", utils.MaskURL(url), err)
		}
	}

	text, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	m := playlist.ParseWithMode(text, mode)
	utils.InfoLog("Parsed %d channels in %d groups (mode=%s)", m.Len(), m.GroupCount(), mode)
	return m, nil
}

func (c *Client) loadXtream(ctx context.Context, creds xtream.Credentials) (*playlist.Model, error) {
	xc, err := xtream.New(creds, c.userAgent, c.httpClient)
	if err != nil {
		return nil, err
	}
	return xc.LiveModel(ctx)
}

// LoadAsync runs Load on its own goroutine and calls deliver exactly once
// with the outcome. deliver runs on that goroutine.
func (c *Client) LoadAsync(ctx context.Context, url string, mode playlist.ParseMode, deliver func(Result)) {
	go func() {
		m, err := c.Load(ctx, url, mode)
		deliver(Result{URL: url, Mode: mode, Model: m, Err: err})
	}()
}
