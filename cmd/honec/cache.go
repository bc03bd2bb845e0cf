package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/honelang/hone/internal/cache"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or manage the on-disk build cache",
	}

	cmd.AddCommand(cacheCleanCmd())
	return cmd
}

func cacheCleanCmd() *cobra.Command {
	var (
		olderThan string
		dir       string
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove cache entries",
		Long: `Clean removes cache entries. With --older-than it only removes
entries older than the given duration (e.g. 7d, 24h, 30m); without it,
every entry is removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClean(dir, olderThan)
		},
	}

	cmd.Flags().StringVar(&olderThan, "older-than", "", "Only remove entries older than this duration (e.g. 7d, 24h, 30m)")
	cmd.Flags().StringVar(&dir, "dir", "", "Cache directory (default: XDG cache dir)")

	return cmd
}

func runCacheClean(dir, olderThan string) error {
	if dir == "" {
		d, ok := cache.DefaultDir()
		if !ok {
			return fmt.Errorf("could not determine a default cache directory; pass --dir")
		}
		dir = d
	}
	store := cache.NewStore(dir)

	var (
		n   int
		err error
	)
	if olderThan == "" {
		n, err = store.Clean()
	} else {
		age, ok := cache.ParseDuration(olderThan)
		if !ok {
			return fmt.Errorf("invalid --older-than duration %q", olderThan)
		}
		n, err = store.CleanOlderThan(age)
	}
	if err != nil {
		return fmt.Errorf("clean cache: %w", err)
	}

	fmt.Fprintf(os.Stderr, "%s removed %d entr%s from %s\n", green("✓"), n, plural(n), store.Dir())
	return nil
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
