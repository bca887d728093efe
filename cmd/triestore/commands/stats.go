// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var ErrWatchWithoutMetrics = errors.New("--watch requires --metrics")

func (a *app) newStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the store statistics",
		Long: `The stats command prints the statistics of the database backend
and the number of entries stored for the shard. With --watch, it keeps
exporting the statistics as prometheus metrics until interrupted.
Usage:
	triestore stats
	triestore stats --metrics --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execStats(cmd)
		},
	}
	cmd.Flags().Bool("watch", false, "Serve the statistics as metrics until interrupted")
	return cmd
}

func (a *app) execStats(cmd *cobra.Command) (err error) {
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("failed to get --watch: %s", err)
	}
	if watch && !a.config.Metrics.Enabled {
		return ErrWatchWithoutMetrics
	}

	s, err := openSession(cmd.Context(), a.config)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := s.close()
		if err == nil {
			err = closeErr
		}
	}()

	stats, err := s.db.Stats()
	if err != nil {
		return fmt.Errorf("getting store statistics: %w", err)
	}
	entries, err := s.tries.Store().Len(a.config.ShardUID())
	if err != nil {
		return fmt.Errorf("counting shard entries: %w", err)
	}

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "shard %s entries: %d\n", a.config.ShardUID(), entries)
	for _, name := range names {
		fmt.Fprintf(out, "%s: %d\n", name, stats[name])
	}

	if watch {
		logger.Infof("exporting store statistics every %s", a.config.Metrics.Interval)
		<-cmd.Context().Done()
	}
	return nil
}
