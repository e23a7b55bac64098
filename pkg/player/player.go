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

// Package player hands stream URLs to an external media player process.
package player

import (
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/lucasduport/iptv-player/pkg/utils"
)

// DefaultCommand is launched when no player command is configured.
const DefaultCommand = "mpv"

// ErrEmptyURL is returned by Play when no URL is given.
var ErrEmptyURL = errors.New("empty stream URL")

// Player starts and stops playback of a single stream at a time.
type Player interface {
	Play(url string) error
	Stop() error
	Playing() bool
}

type process struct {
	cmd  *exec.Cmd
	url  string
	done chan struct{}
}

func (p *process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// ExecPlayer runs Command with Args followed by the stream URL.
type ExecPlayer struct {
	command   string
	args      []string
	stopGrace time.Duration

	mu  sync.Mutex
	cur *process
}

// NewExecPlayer creates a player for command. An empty command means mpv.
func NewExecPlayer(command string, args ...string) *ExecPlayer {
	if command == "" {
		command = DefaultCommand
	}
	return &ExecPlayer{
		command:   command,
		args:      append([]string(nil), args...),
		stopGrace: 3 * time.Second,
	}
}

// Command returns the configured executable.
func (p *ExecPlayer) Command() string {
	return p.command
}

// Play stops any running process and starts a new one for url.
func (p *ExecPlayer) Play(url string) error {
	if url == "" {
		return ErrEmptyURL
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.stopLocked(); err != nil {
		utils.WarnLog("Failed to stop previous player: %v", err)
	}

	args := append(append([]string(nil), p.args...), url)
	cmd := exec.Command(p.command, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.command, err)
	}

	proc := &process{cmd: cmd, url: url, done: make(chan struct{})}
	p.cur = proc
	utils.InfoLog("Started %s (pid %d) for %s", p.command, cmd.Process.Pid, utils.MaskURL(url))

	go p.wait(proc)
	return nil
}

func (p *ExecPlayer) wait(proc *process) {
	err := proc.cmd.Wait()
	if err != nil {
		utils.DebugLog("Player process %d exited: %v", proc.cmd.Process.Pid, err)
	} else {
		utils.DebugLog("Player process %d exited", proc.cmd.Process.Pid)
	}
	close(proc.done)

	p.mu.Lock()
	if p.cur == proc {
		p.cur = nil
	}
	p.mu.Unlock()
}

// Stop terminates the running process, if any.
func (p *ExecPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopLocked()
}

// stopLocked requires p.mu. The wait goroutine closes done before taking
// the lock, so blocking on done here cannot deadlock.
func (p *ExecPlayer) stopLocked() error {
	proc := p.cur
	if proc == nil {
		return nil
	}
	p.cur = nil
	if proc.exited() {
		return nil
	}

	if err := proc.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		utils.DebugLog("SIGTERM failed, killing player: %v", err)
		if kerr := proc.cmd.Process.Kill(); kerr != nil && !proc.exited() {
			return kerr
		}
	}

	select {
	case <-proc.done:
	case <-time.After(p.stopGrace):
		utils.WarnLog("Player did not exit after %s, killing it", p.stopGrace)
		if err := proc.cmd.Process.Kill(); err != nil && !proc.exited() {
			return err
		}
		<-proc.done
	}
	utils.InfoLog("Stopped playback of %s", utils.MaskURL(proc.url))
	return nil
}

// Playing reports whether a player process is running.
func (p *ExecPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cur != nil && !p.cur.exited()
}

// URL returns the stream being played, or "" when idle.
func (p *ExecPlayer) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cur == nil || p.cur.exited() {
		return ""
	}
	return p.cur.url
}
