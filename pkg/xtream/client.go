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

// Package xtream reads live channel listings from Xtream Codes providers.
package xtream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/lucasduport/iptv-player/pkg/playlist"
	"github.com/lucasduport/iptv-player/pkg/utils"
)

// API endpoint constants
const (
	getLiveCategories = "get_live_categories"
	getLiveStreams    = "get_live_streams"
)

const (
	maxAttempts     = 3
	maxResponseSize = 32 << 20
)

// Credentials identify an account on an Xtream provider.
type Credentials struct {
	BaseURL  string
	Username string
	Password string
	// Output is the stream container requested from the provider (ts or m3u8).
	Output string
}

// DetectCredentials extracts Xtream credentials from a get.php playlist link
// such as http://host:port/get.php?username=u&password=p&type=m3u_plus.
func DetectCredentials(rawURL string) (Credentials, bool) {
	if !strings.Contains(rawURL, "/get.php") {
		return Credentials{}, false
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return Credentials{}, false
	}
	q := u.Query()
	username, password := q.Get("username"), q.Get("password")
	if username == "" || password == "" {
		return Credentials{}, false
	}
	return Credentials{
		BaseURL:  fmt.Sprintf("%s://%s", u.Scheme, u.Host),
		Username: username,
		Password: password,
		Output:   q.Get("output"),
	}, true
}

// Client represents an Xtream API client
type Client struct {
	creds     Credentials
	userAgent string
	http      *http.Client
}

// New creates a new Xtream client instance
func New(creds Credentials, userAgent string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(creds.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", creds.BaseURL)
	}
	creds.BaseURL = strings.TrimRight(creds.BaseURL, "/")
	if creds.Output == "" {
		creds.Output = "ts"
	}
	if userAgent == "" {
		userAgent = utils.GetIPTVUserAgent()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{creds: creds, userAgent: userAgent, http: httpClient}, nil
}

// action executes a player_api.php action and returns the sanitized body.
func (c *Client) action(ctx context.Context, action string, q url.Values) ([]byte, error) {
	u, err := url.Parse(c.creds.BaseURL + "/player_api.php")
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("username", c.creds.Username)
	params.Set("password", c.creds.Password)
	params.Set("action", action)
	for k, vs := range q {
		for _, v := range vs {
			if v != "" {
				params.Add(k, v)
			}
		}
	}
	u.RawQuery = params.Encode()
	utils.DebugLog("Xtream request: %s", utils.MaskURL(u.String()))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, err := c.do(ctx, u.String())
		if err == nil {
			return sanitize(body), nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		utils.DebugLog("Xtream action=%s attempt %d/%d failed: %v", action, attempt, maxAttempts, err)
	}
	return nil, fmt.Errorf("xtream %s: %w", action, lastErr)
}

func (c *Client) do(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
}

// sanitize strips the byte order mark, NUL bytes and other control
// characters some providers emit around their JSON.
func sanitize(b []byte) []byte {
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	b = bytes.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, b)
	return bytes.TrimSpace(b)
}

type category struct {
	id   string
	name string
}

// LiveModel builds a grouped playlist model with one group per live category.
func (c *Client) LiveModel(ctx context.Context) (*playlist.Model, error) {
	body, err := c.action(ctx, getLiveCategories, nil)
	if err != nil {
		return nil, err
	}
	categories, err := parseCategories(body)
	if err != nil {
		return nil, err
	}
	utils.DebugLog("Found %d live categories", len(categories))

	var channels []playlist.Channel
	for _, cat := range categories {
		body, err := c.action(ctx, getLiveStreams, url.Values{"category_id": {cat.id}})
		if err != nil {
			return nil, err
		}
		streams, err := c.parseStreams(body, cat.name)
		if err != nil {
			utils.WarnLog("Skipping category %q: %v", cat.name, err)
			continue
		}
		channels = append(channels, streams...)
	}

	m := playlist.NewModel(channels)
	utils.InfoLog("Xtream listing: %d channels in %d groups", m.Len(), m.GroupCount())
	return m, nil
}

func isEmptyListing(body []byte) bool {
	return len(body) == 0 || bytes.Equal(body, []byte("null")) || bytes.Equal(body, []byte("{}"))
}

func parseCategories(body []byte) ([]category, error) {
	if isEmptyListing(body) {
		return nil, nil
	}
	var out []category
	var itemErr error
	_, err := jsonparser.ArrayEach(body, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if err != nil || dataType != jsonparser.Object {
			itemErr = err
			return
		}
		id, _, _, err := jsonparser.Get(value, "category_id")
		if err != nil {
			return
		}
		name, err := jsonparser.GetString(value, "category_name")
		if err != nil {
			name = ""
		}
		out = append(out, category{id: string(id), name: strings.TrimSpace(name)})
	})
	if err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	if itemErr != nil {
		utils.DebugLog("Malformed category entry: %v", itemErr)
	}
	return out, nil
}

func (c *Client) parseStreams(body []byte, group string) ([]playlist.Channel, error) {
	if isEmptyListing(body) {
		return nil, nil
	}
	var out []playlist.Channel
	_, err := jsonparser.ArrayEach(body, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if err != nil || dataType != jsonparser.Object {
			return
		}
		name, err := jsonparser.GetString(value, "name")
		if err != nil {
			return
		}
		id, _, _, err := jsonparser.Get(value, "stream_id")
		if err != nil || len(id) == 0 {
			return
		}
		out = append(out, playlist.Channel{
			Name:  strings.TrimSpace(name),
			URL:   c.StreamURL(string(id)),
			Group: group,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("decode streams: %w", err)
	}
	return out, nil
}

// StreamURL returns the playable URL of a live stream.
func (c *Client) StreamURL(streamID string) string {
	return fmt.Sprintf("%s/live/%s/%s/%s.%s",
		c.creds.BaseURL,
		url.PathEscape(c.creds.Username),
		url.PathEscape(c.creds.Password),
		streamID,
		c.creds.Output,
	)
}
