package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lue-reader/lue/internal/cache"
)

var (
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the audio cache",
		Long:  paragraph(fmt.Sprintf("\nSynthesized sentences are %s so rereading costs nothing.", keyword("cached"))),
		Args:  cobra.NoArgs,
	}

	cacheStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show audio cache usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := openCache()
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			s := m.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Directory: %s\n", cfg.Cache.Dir)
			fmt.Fprintf(out, "Memory:    %s of %s\n", humanize.IBytes(uint64(s.Memory.Size)), humanize.IBytes(uint64(s.Memory.Capacity))) //nolint:gosec
			fmt.Fprintf(out, "Disk:      %s of %s in %s\n", //nolint:gosec
				humanize.IBytes(uint64(s.Disk.Size)),
				humanize.IBytes(uint64(s.Disk.Capacity)),
				humanize.Comma(s.Disk.Items)+" files")
			fmt.Fprintf(out, "Expires:   after %d days\n", cfg.Cache.TTLDays)
			return nil
		},
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached audio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := openCache()
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			freed := m.Stats().Disk.Size
			if err := m.Clear(); err != nil {
				return fmt.Errorf("unable to clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Freed %s\n", humanize.IBytes(uint64(freed))) //nolint:gosec
			return nil
		},
	}
)

// openCache opens the configured cache without the background cleanup.
func openCache() (*cache.Manager, error) {
	opts := cache.OptionsFromConfig(cfg.Cache)
	opts.CleanupInterval = 0
	return cache.New(opts)
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
}
