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
	"context"

	"github.com/lucasduport/iptv-player/pkg/playlist"
	"github.com/lucasduport/iptv-player/pkg/utils"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Download the playlist and print its channels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return utils.PrintErrorAndReturn(err)
		}
		defer a.Close()

		m, err := loadModel(cmd.Context(), a)
		if err != nil {
			return utils.PrintErrorAndReturn(err)
		}
		printModel(cmd.OutOrStdout(), m, playlist.NoSelection)
		return nil
	},
}

// loadModel fetches the configured playlist synchronously.
func loadModel(ctx context.Context, a *app) (*playlist.Model, error) {
	url, err := a.playlistURL()
	if err != nil {
		return nil, err
	}
	mode, err := parseMode()
	if err != nil {
		return nil, err
	}
	return a.fetcher.Load(ctx, url, mode)
}

func init() {
	rootCmd.AddCommand(listCmd)
}
