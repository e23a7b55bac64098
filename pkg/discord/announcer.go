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

// Package discord posts player events to a Discord channel.
package discord

import (
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lucasduport/iptv-player/pkg/playlist"
	"github.com/lucasduport/iptv-player/pkg/utils"
)

// Common embed colors
const (
	colorInfo    = 0x5BC0DE // teal-ish
	colorSuccess = 0x28A745 // green
	colorError   = 0xDC3545 // red
)

const queueSize = 32

type embedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Announcer posts session events as embeds. Messages are sent from a
// single background goroutine so observers never block on Discord.
type Announcer struct {
	sender    embedSender
	session   *discordgo.Session
	channelID string

	mu     sync.Mutex
	closed bool
	queue  chan *discordgo.MessageEmbed
	done   chan struct{}
}

// NewAnnouncer creates an announcer posting to channelID with a bot token.
func NewAnnouncer(token, channelID string) (*Announcer, error) {
	if token == "" || channelID == "" {
		return nil, fmt.Errorf("discord token and channel are required")
	}
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	a := newAnnouncer(dg, channelID)
	a.session = dg
	utils.InfoLog("Discord announcer enabled for channel %s", channelID)
	return a, nil
}

func newAnnouncer(sender embedSender, channelID string) *Announcer {
	a := &Announcer{
		sender:    sender,
		channelID: channelID,
		queue:     make(chan *discordgo.MessageEmbed, queueSize),
		done:      make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Announcer) run() {
	defer close(a.done)
	for embed := range a.queue {
		if _, err := a.sender.ChannelMessageSendEmbed(a.channelID, embed); err != nil {
			utils.ErrorLog("Discord: failed to send embed %q: %v", embed.Title, err)
		}
	}
}

func (a *Announcer) post(color int, title, desc string, fields ...*discordgo.MessageEmbedField) {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: desc,
		Color:       color,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	for _, f := range fields {
		if f != nil {
			embed.Fields = append(embed.Fields, f)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		utils.DebugLog("Discord: announcer closed, dropping %q", title)
		return
	}
	select {
	case a.queue <- embed:
	default:
		utils.WarnLog("Discord: queue full, dropping %q", title)
	}
}

// PlaylistLoaded announces a new playlist.
func (a *Announcer) PlaylistLoaded(m *playlist.Model) {
	a.post(colorInfo, "Playlist loaded", fmt.Sprintf("%d channels in %d groups", m.Len(), m.GroupCount()))
}

// NowPlaying announces the channel being played.
func (a *Announcer) NowPlaying(label string, ch playlist.Channel) {
	var group *discordgo.MessageEmbedField
	if ch.Group != "" {
		group = &discordgo.MessageEmbedField{Name: "Group", Value: ch.Group, Inline: true}
	}
	a.post(colorSuccess, label, "", group)
}

// LoadFailed announces a playlist error.
func (a *Announcer) LoadFailed(err error) {
	a.post(colorError, "Playlist error", err.Error())
}

// Close flushes pending messages and releases the Discord session. Events
// posted afterwards are dropped.
func (a *Announcer) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	<-a.done
	if a.session != nil {
		a.session.Close()
	}
	utils.DebugLog("Discord announcer stopped")
}
