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
	"io"
	"sort"
	"time"

	"github.com/lucasduport/iptv-player/pkg/utils"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently played channels (requires PostgreSQL)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openStore()
		if err != nil {
			return utils.PrintErrorAndReturn(err)
		}
		if db == nil {
			return errors.New("play history needs a database, set --database-url or DB_HOST")
		}
		defer db.Close()

		if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
			stats, err := db.GetPlayHistoryStats()
			if err != nil {
				return utils.PrintErrorAndReturn(err)
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		}

		limit, _ := cmd.Flags().GetInt("limit")
		records, err := db.RecentPlays(limit)
		if err != nil {
			return utils.PrintErrorAndReturn(err)
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No plays recorded.")
			return nil
		}
		for _, r := range records {
			group := r.GroupName
			if group == "" {
				group = "-"
			}
			fmt.Fprintf(out, "%s  %-8s  %-20s  %s\n",
				r.StartTime.Local().Format("2006-01-02 15:04"),
				r.Duration().Truncate(time.Second),
				group,
				r.ChannelName,
			)
		}
		return nil
	},
}

func printStats(w io.Writer, stats map[string]interface{}) {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%-14s %v\n", k, stats[k])
	}
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Number of entries to show")
	historyCmd.Flags().Bool("stats", false, "Show play counts instead of the latest entries")
	rootCmd.AddCommand(historyCmd)
}
