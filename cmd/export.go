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
	"bytes"
	"fmt"

	"github.com/google/renameio/v2"
	"github.com/lucasduport/iptv-player/pkg/playlist"
	"github.com/lucasduport/iptv-player/pkg/utils"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the playlist as a normalized Extended M3U",
	Long: `Download the playlist and write it back as Extended M3U with one
group-title per channel. Without a file argument the playlist is written to
standard output. Files are replaced atomically.`,
	Args: cobra.MaximumNArgs(1),
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

		if len(args) == 0 {
			return playlist.WriteM3U(cmd.OutOrStdout(), m)
		}
		return exportFile(args[0], m)
	},
}

func exportFile(path string, m *playlist.Model) error {
	var buf bytes.Buffer
	if err := playlist.WriteM3U(&buf, m); err != nil {
		return err
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return utils.PrintErrorAndReturn(fmt.Errorf("write %s: %w", path, err))
	}
	utils.InfoLog("Exported %d channels to %s", m.Len(), path)
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
