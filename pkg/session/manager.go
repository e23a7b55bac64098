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

// Package session holds the player state shared by the console, the API and
// the announcers: the loaded model, the selection and the now playing label.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lucasduport/iptv-player/pkg/fetcher"
	"github.com/lucasduport/iptv-player/pkg/player"
	"github.com/lucasduport/iptv-player/pkg/playlist"
	"github.com/lucasduport/iptv-player/pkg/utils"
	uuid "github.com/satori/go.uuid"
)

// NoneLabel is shown until a channel has been played.
const NoneLabel = "Now Playing: None"

var (
	// ErrNoPlaylist is returned when selecting before any playlist loaded.
	ErrNoPlaylist = errors.New("no playlist loaded")
	// ErrInvalidSelection is returned for selections outside the model.
	ErrInvalidSelection = errors.New("invalid selection")
)

// Observer receives session events. Methods are called without the session
// lock held, so they may call back into the Manager.
type Observer interface {
	PlaylistLoaded(m *playlist.Model)
	NowPlaying(label string, ch playlist.Channel)
	LoadFailed(err error)
}

// HistoryRecorder stores play history entries.
type HistoryRecorder interface {
	AddPlayHistory(sessionID, channelName, groupName, streamURL string) (int64, error)
	ClosePlayHistory(id int64) error
}

// Loader fetches playlists in the background.
type Loader interface {
	LoadAsync(ctx context.Context, url string, mode playlist.ParseMode, deliver func(fetcher.Result))
}

// Snapshot is a consistent view of the session.
type Snapshot struct {
	SessionID string
	Source    string
	Mode      playlist.ParseMode
	Model     *playlist.Model
	Selection playlist.Selection
	Label     string
	Playing   bool
	Loading   bool
}

// Current returns the selected channel, if any.
func (s Snapshot) Current() (playlist.Channel, bool) {
	return s.Model.Channel(s.Selection)
}

// Manager serializes every state change of a player session.
type Manager struct {
	id      string
	player  player.Player
	history HistoryRecorder
	loader  Loader

	mu        sync.Mutex
	model     *playlist.Model
	sel       playlist.Selection
	label     string
	source    string
	mode      playlist.ParseMode
	requested string
	reqMode   playlist.ParseMode
	loading   bool
	loadGen   uint64
	historyID int64
	observers []Observer
}

// NewManager creates a session around p. history and loader may be nil.
func NewManager(p player.Player, history HistoryRecorder, loader Loader) *Manager {
	m := &Manager{
		id:      uuid.NewV4().String(),
		player:  p,
		history: history,
		loader:  loader,
		sel:     playlist.NoSelection,
		label:   NoneLabel,
		mode:    playlist.ModeGrouped,
	}
	utils.DebugLog("Created session %s", m.id)
	return m
}

// ID returns the session identifier used in the play history.
func (m *Manager) ID() string {
	return m.id
}

// AddObserver registers o for future events.
func (m *Manager) AddObserver(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// RemoveObserver unregisters o. Events already being delivered may still
// reach it.
func (m *Manager) RemoveObserver(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.observers {
		if cur == o {
			m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
			return
		}
	}
}

func (m *Manager) observersLocked() []Observer {
	return append([]Observer(nil), m.observers...)
}

// Load starts fetching url in the background. The result is applied when it
// arrives unless a newer Load was started in the meantime.
func (m *Manager) Load(ctx context.Context, url string, mode playlist.ParseMode) error {
	if m.loader == nil {
		return errors.New("no playlist loader configured")
	}
	if url == "" {
		return errors.New("empty playlist URL")
	}

	m.mu.Lock()
	m.loadGen++
	gen := m.loadGen
	m.requested = url
	m.reqMode = mode
	m.loading = true
	m.mu.Unlock()

	utils.InfoLog("Loading playlist %s (mode=%s)", utils.MaskURL(url), mode)
	m.loader.LoadAsync(ctx, url, mode, func(r fetcher.Result) {
		m.mu.Lock()
		stale := gen != m.loadGen
		if !stale {
			m.loading = false
		}
		m.mu.Unlock()
		if stale {
			utils.DebugLog("Discarding stale playlist result for %s", utils.MaskURL(r.URL))
			return
		}
		m.Apply(r)
	})
	return nil
}

// Reload fetches the displayed playlist again, or retries the last request
// when nothing was loaded yet.
func (m *Manager) Reload(ctx context.Context) error {
	m.mu.Lock()
	url, mode := m.source, m.mode
	if url == "" {
		url, mode = m.requested, m.reqMode
	}
	m.mu.Unlock()
	return m.Load(ctx, url, mode)
}

// Apply installs a fetch result. A successful result replaces the model and
// clears the selection. A failed one leaves the session untouched and is
// reported to observers once.
func (m *Manager) Apply(r fetcher.Result) {
	m.mu.Lock()
	if r.Err != nil {
		obs := m.observersLocked()
		m.mu.Unlock()

		err := fmt.Errorf("Failed to load playlist: %w", r.Err)
		utils.ErrorLog("%v", err)
		for _, o := range obs {
			o.LoadFailed(err)
		}
		return
	}

	m.model = r.Model
	m.sel = playlist.NoSelection
	if r.URL != "" {
		m.source = r.URL
	}
	if r.Mode != "" {
		m.mode = r.Mode
	}
	model := m.model
	obs := m.observersLocked()
	m.mu.Unlock()

	utils.InfoLog("Playlist ready: %d channels in %d groups", model.Len(), model.GroupCount())
	for _, o := range obs {
		o.PlaylistLoaded(model)
	}
}

// Select plays the channel at sel.
func (m *Manager) Select(sel playlist.Selection) error {
	m.mu.Lock()
	notify, err := m.selectLocked(sel)
	m.mu.Unlock()
	if notify != nil {
		notify()
	}
	return err
}

// SelectIndex plays the channel at the given position in display order.
func (m *Manager) SelectIndex(index int) error {
	m.mu.Lock()
	if m.model == nil {
		m.mu.Unlock()
		return ErrNoPlaylist
	}
	sel, ok := m.model.Find(index)
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: index %d", ErrInvalidSelection, index)
	}
	notify, err := m.selectLocked(sel)
	m.mu.Unlock()
	if notify != nil {
		notify()
	}
	return err
}

// MoveUp selects and plays the previous channel. It does nothing without a
// selection or at the first channel.
func (m *Manager) MoveUp() error {
	return m.move(playlist.MoveUp)
}

// MoveDown selects and plays the next channel. It does nothing without a
// selection or at the last channel.
func (m *Manager) MoveDown() error {
	return m.move(playlist.MoveDown)
}

func (m *Manager) move(step func(*playlist.Model, playlist.Selection) playlist.Selection) error {
	m.mu.Lock()
	next := step(m.model, m.sel)
	if next == m.sel {
		m.mu.Unlock()
		return nil
	}
	notify, err := m.selectLocked(next)
	m.mu.Unlock()
	if notify != nil {
		notify()
	}
	return err
}

// selectLocked requires m.mu. The returned func notifies observers and must
// be called after the lock is released.
func (m *Manager) selectLocked(sel playlist.Selection) (func(), error) {
	if m.model == nil {
		return nil, ErrNoPlaylist
	}
	ch, ok := m.model.Channel(sel)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSelection, sel)
	}
	m.sel = sel

	if m.player.Playing() {
		if err := m.player.Stop(); err != nil {
			utils.WarnLog("Failed to stop playback: %v", err)
		}
	}
	m.closeHistoryLocked()

	if err := m.player.Play(ch.URL); err != nil {
		m.label = NoneLabel
		return nil, fmt.Errorf("play %s: %w", ch.Name, err)
	}

	m.label = "Now Playing: " + ch.Name
	m.recordHistoryLocked(ch)
	utils.InfoLog("%s (%s)", m.label, sel)

	label := m.label
	obs := m.observersLocked()
	return func() {
		for _, o := range obs {
			o.NowPlaying(label, ch)
		}
	}, nil
}

// Stop stops playback. The selection is kept so navigation can resume.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeHistoryLocked()
	m.label = NoneLabel
	if err := m.player.Stop(); err != nil {
		return fmt.Errorf("stop playback: %w", err)
	}
	return nil
}

func (m *Manager) recordHistoryLocked(ch playlist.Channel) {
	if m.history == nil {
		return
	}
	id, err := m.history.AddPlayHistory(m.id, ch.Name, ch.Group, ch.URL)
	if err != nil {
		utils.ErrorLog("Failed to record play history: %v", err)
		return
	}
	m.historyID = id
}

func (m *Manager) closeHistoryLocked() {
	if m.history == nil || m.historyID == 0 {
		return
	}
	if err := m.history.ClosePlayHistory(m.historyID); err != nil {
		utils.ErrorLog("Failed to close play history %d: %v", m.historyID, err)
	}
	m.historyID = 0
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		SessionID: m.id,
		Source:    m.source,
		Mode:      m.mode,
		Model:     m.model,
		Selection: m.sel,
		Label:     m.label,
		Playing:   m.player.Playing(),
		Loading:   m.loading,
	}
}

// Label returns the now playing label.
func (m *Manager) Label() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.label
}
