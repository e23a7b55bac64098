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

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lucasduport/iptv-player/pkg/playlist"
	"github.com/lucasduport/iptv-player/pkg/session"
	"github.com/lucasduport/iptv-player/pkg/utils"
)

const consoleHelp = `Commands:
  list        show the channels
  play <n>    play channel number n
  up, down    play the previous or next channel
  stop        stop playback
  reload      download the playlist again
  now         show what is playing
  help        show this help
  quit        exit`

// printModel writes the channels with their global index, grouped unless
// the model is flat.
func printModel(w io.Writer, m *playlist.Model, sel playlist.Selection) {
	if m == nil || m.Len() == 0 {
		fmt.Fprintln(w, "No channels.")
		return
	}

	width := len(strconv.Itoa(m.Len() - 1))
	index := 0
	for gi, g := range m.Groups() {
		if !m.Flat() {
			fmt.Fprintf(w, "%s (%d)\n", g.Name, len(g.Channels))
		}
		for ci, ch := range g.Channels {
			marker := " "
			if sel.Group == gi && sel.Channel == ci {
				marker = ">"
			}
			fmt.Fprintf(w, "%s %*d  %s\n", marker, width, index, ch.Name)
			index++
		}
	}
}

// consoleObserver prints session events.
type consoleObserver struct {
	out io.Writer
}

func (o consoleObserver) PlaylistLoaded(m *playlist.Model) {
	fmt.Fprintf(o.out, "Loaded %d channels in %d groups. Type 'list' to show them.\n", m.Len(), m.GroupCount())
}

func (o consoleObserver) NowPlaying(label string, _ playlist.Channel) {
	fmt.Fprintln(o.out, label)
}

func (o consoleObserver) LoadFailed(err error) {
	fmt.Fprintln(o.out, err)
}

// runConsole loads the playlist and reads commands from in until quit, EOF
// or ctx is cancelled.
func runConsole(ctx context.Context, a *app, in io.Reader, out io.Writer) error {
	out = &syncWriter{w: out}
	a.session.AddObserver(consoleObserver{out: out})

	url, err := a.playlistURL()
	if err != nil {
		return err
	}
	mode, err := parseMode()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Loading %s ...\n", utils.MaskURL(url))
	if err := a.session.Load(ctx, url, mode); err != nil {
		return err
	}
	fmt.Fprintln(out, session.NoneLabel)

	return console(ctx, a.session, in, out)
}

type lineResult struct {
	line string
	ok   bool
}

func console(ctx context.Context, sm *session.Manager, in io.Reader, out io.Writer) error {
	lines := make(chan lineResult)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- lineResult{line: scanner.Text(), ok: true}:
			case <-ctx.Done():
				return
			}
		}
		select {
		case lines <- lineResult{}:
		case <-ctx.Done():
		}
	}()

	for {
		fmt.Fprint(out, "> ")
		var r lineResult
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case r = <-lines:
		}
		if !r.ok {
			fmt.Fprintln(out)
			return nil
		}
		if quit := execute(ctx, sm, strings.Fields(r.line), out); quit {
			return nil
		}
	}
}

// execute runs one console command and reports whether to exit.
func execute(ctx context.Context, sm *session.Manager, fields []string, out io.Writer) bool {
	if len(fields) == 0 {
		return false
	}

	var err error
	switch strings.ToLower(fields[0]) {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(out, consoleHelp)
	case "list", "ls":
		snap := sm.Snapshot()
		if snap.Model == nil {
			if snap.Loading {
				fmt.Fprintln(out, "Playlist is still loading.")
			} else {
				fmt.Fprintln(out, "No playlist loaded.")
			}
			break
		}
		printModel(out, snap.Model, snap.Selection)
	case "play", "p":
		if len(fields) != 2 {
			fmt.Fprintln(out, "usage: play <n>")
			break
		}
		n, convErr := strconv.Atoi(fields[1])
		if convErr != nil {
			fmt.Fprintf(out, "not a channel number: %q\n", fields[1])
			break
		}
		err = sm.SelectIndex(n)
	case "up", "u":
		err = sm.MoveUp()
	case "down", "d":
		err = sm.MoveDown()
	case "stop", "s":
		err = sm.Stop()
		if err == nil {
			fmt.Fprintln(out, sm.Label())
		}
	case "reload", "r":
		err = sm.Reload(ctx)
		if err == nil {
			fmt.Fprintln(out, "Reloading playlist ...")
		}
	case "now", "n":
		fmt.Fprintln(out, sm.Label())
	default:
		fmt.Fprintf(out, "unknown command %q, type 'help'\n", fields[0])
	}

	if err != nil {
		fmt.Fprintln(out, "Error:", err)
	}
	return false
}
