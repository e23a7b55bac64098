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
	"os"
	"os/signal"
	"syscall"

	"github.com/lucasduport/iptv-player/pkg/server"
	"github.com/lucasduport/iptv-player/pkg/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the remote control HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(true)
		if err != nil {
			return utils.PrintErrorAndReturn(err)
		}
		defer a.Close()

		var history server.HistoryReader
		if a.db != nil {
			history = a.db
		}
		srv := server.NewServer(server.HostConfig{
			Hostname: viper.GetString("hostname"),
			Port:     viper.GetInt("port"),
		}, viper.GetString("api-key"), a.session, history)

		url, err := a.playlistURL()
		if err != nil {
			return utils.PrintErrorAndReturn(err)
		}
		mode, err := parseMode()
		if err != nil {
			return utils.PrintErrorAndReturn(err)
		}
		if err := a.session.Load(ctx, url, mode); err != nil {
			return utils.PrintErrorAndReturn(err)
		}

		return srv.Serve(ctx)
	},
}

func init() {
	serveCmd.Flags().Int("port", 8080, "Listening port")
	serveCmd.Flags().String("hostname", "", "Listening address (all interfaces when empty)")
	serveCmd.Flags().String("api-key", "", "X-API-Key required by the API (generated when empty)")

	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		utils.ErrorLog("Error binding PFlags to viper: %v", err)
		os.Exit(1)
	}
	rootCmd.AddCommand(serveCmd)
}
