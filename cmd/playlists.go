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
	"errors"
	"fmt"
	"strconv"

	"github.com/lucasduport/iptv-player/pkg/settings"
	"github.com/lucasduport/iptv-player/pkg/utils"
	"github.com/spf13/cobra"
)

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "Manage the saved playlist URLs",
}

var playlistsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the saved playlists, the current one marked with *",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(false, func(s *settings.Settings) error {
			printPlaylists(cmd, s)
			return nil
		})
	},
}

var playlistsAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Append a playlist URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(true, func(s *settings.Settings) error {
			return addPlaylist(s, args[0])
		})
	},
}

var playlistsRemoveCmd = &cobra.Command{
	Use:   "remove <url>",
	Short: "Remove a playlist URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(true, func(s *settings.Settings) error {
			return s.Remove(args[0])
		})
	},
}

var playlistsUseCmd = &cobra.Command{
	Use:   "use <index>",
	Short: "Make the playlist at index the current one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		i, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("not an index: %q", args[0])
		}
		return withSettings(true, func(s *settings.Settings) error {
			if err := s.Use(i); err != nil {
				return err
			}
			printPlaylists(cmd, s)
			return nil
		})
	},
}

func addPlaylist(s *settings.Settings, url string) error {
	if err := s.Add(url); err != nil {
		if errors.Is(err, settings.ErrEmptyURL) {
			return errors.New("please enter a playlist URL")
		}
		return err
	}
	return nil
}

// withSettings loads the settings, applies fn to a copy and saves the copy
// when save is set and fn succeeds.
func withSettings(save bool, fn func(*settings.Settings) error) error {
	store, db, err := openStore()
	if err != nil {
		return utils.PrintErrorAndReturn(err)
	}
	if db != nil {
		defer db.Close()
	}

	current, err := store.Load()
	if err != nil {
		return utils.PrintErrorAndReturn(err)
	}
	edited := current.Clone()
	if err := fn(edited); err != nil {
		return err
	}
	if !save {
		return nil
	}
	return store.Save(edited)
}

func printPlaylists(cmd *cobra.Command, s *settings.Settings) {
	out := cmd.OutOrStdout()
	if len(s.Playlists) == 0 {
		fmt.Fprintln(out, "No playlists saved.")
		return
	}
	for i, p := range s.Playlists {
		marker := " "
		if i == s.LastSelectedIndex {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %d  %s\n", marker, i, utils.MaskURL(p))
	}
}

func init() {
	playlistsCmd.AddCommand(playlistsListCmd, playlistsAddCmd, playlistsRemoveCmd, playlistsUseCmd)
	rootCmd.AddCommand(playlistsCmd)
}
