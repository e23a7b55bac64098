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
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lucasduport/iptv-player/pkg/fetcher"
	"github.com/lucasduport/iptv-player/pkg/player"
	"github.com/lucasduport/iptv-player/pkg/utils"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "iptv-player",
	Short: "Browse and play IPTV playlists from the terminal",
	Long: `iptv-player downloads an M3U playlist, lists its channels grouped by
group-title (or as a flat list of URLs) and hands the selected stream to an
external media player.

It supports:
- Extended M3U playlists and bare URL lists
- Xtream Codes providers through player_api.php
- A remote control HTTP API
- Play history in PostgreSQL and Discord announcements`,

	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(true)
		if err != nil {
			return utils.PrintErrorAndReturn(err)
		}
		defer a.Close()

		return runConsole(ctx, a, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		reportError(os.Stderr, err)
		utils.Close()
		os.Exit(1)
	}
	utils.Close()
}

// reportError prints err unless utils.PrintErrorAndReturn already did.
func reportError(w io.Writer, err error) {
	var located *utils.LocatedError
	if errors.As(err, &located) && utils.ErrorDetailLevel() != utils.DetailNone {
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Config file flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.iptv-player.yaml)")

	// Playlist flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("playlist-url", "u", "", "Playlist URL (default is the current entry of the settings)")
	flags.StringP("mode", "m", "grouped", "Parse mode: grouped or flat")
	flags.String("user-agent", utils.DefaultUserAgent, "User-Agent sent to playlist providers")
	flags.Duration("fetch-timeout", fetcher.DefaultTimeout, "Playlist download timeout")
	flags.String("settings-file", "", "Settings file (default is $HOME/.iptv-player/settings.yaml)")

	// Player flags
	flags.String("player", player.DefaultCommand, "Media player command")
	flags.StringSlice("player-args", nil, "Extra arguments passed to the media player before the URL")

	// Xtream-specific flags
	flags.String("xtream-user", "", "Xtream API username")
	flags.String("xtream-password", "", "Xtream API password")
	flags.String("xtream-base-url", "", "Xtream API base URL")
	flags.Bool("xtream-api", true, "Read Xtream get.php links through player_api.php")

	// Storage and integrations
	flags.String("database-url", "", "PostgreSQL connection string (DB_* variables are used when empty)")
	flags.String("discord-token", "", "Discord bot token for now playing announcements")
	flags.String("discord-channel", "", "Discord channel ID for now playing announcements")

	// Logging
	flags.Bool("debug-logging", false, "Enable debug logging")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")

	// Bind all flags to viper
	if err := viper.BindPFlags(flags); err != nil {
		utils.ErrorLog("Error binding PFlags to viper: %v", err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory and current directory
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".iptv-player")
	}

	// Replace hyphens with underscores in environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Read environment variables
	viper.AutomaticEnv()

	// Read in config file if found
	if err := viper.ReadInConfig(); err == nil {
		utils.DebugLog("Using config file: %s", viper.ConfigFileUsed())
	}

	applyLogging()
}

func applyLogging() {
	if viper.GetBool("debug-logging") {
		utils.SetLogLevel(utils.LevelDebug)
		return
	}
	utils.SetLogLevel(utils.ParseLogLevel(viper.GetString("log-level")))
}

func fetchTimeout() time.Duration {
	d := viper.GetDuration("fetch-timeout")
	if d < 0 {
		return fetcher.DefaultTimeout
	}
	return d
}
