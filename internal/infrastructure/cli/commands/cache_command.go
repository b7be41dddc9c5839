package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/doeshing/adpost-go/internal/app"
	"github.com/doeshing/adpost-go/internal/domain"
)

// NewCacheCommand creates the cache command with all subcommands
func NewCacheCommand(container *app.Container) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the generation cache",
	}

	cacheCmd.AddCommand(
		newCacheListCommand(container),
		newCacheClearCommand(container),
		newCacheSizeCommand(container),
	)

	return cacheCmd
}

// newCacheListCommand creates the 'cache list' subcommand
func newCacheListCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached generations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCacheEntries(cmd.OutOrStdout(), container)
		},
	}
}

// newCacheClearCommand creates the 'cache clear' subcommand
func newCacheClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.CacheStore == nil {
				return fmt.Errorf(ErrCacheUnavailable)
			}
			if err := container.CacheStore.Clear(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			return nil
		},
	}
}

// newCacheSizeCommand creates the 'cache size' subcommand
func newCacheSizeCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Show cache size",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCacheSize(cmd.OutOrStdout(), container)
		},
	}
}

// listCacheEntries lists all cache entries
func listCacheEntries(out io.Writer, container *app.Container) error {
	if container.CacheStore == nil {
		return fmt.Errorf(ErrCacheUnavailable)
	}

	entries, err := container.CacheStore.Entries()
	if err != nil {
		return fmt.Errorf("failed to retrieve cache entries: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, MsgNoCachedResponses)
		return nil
	}

	for _, entry := range entries {
		fmt.Fprintf(out, "%s | %-12s | %s | %s\n",
			entry.CreatedAt.Format(domain.TimestampFormat),
			entry.Kind,
			entry.Model,
			entry.Key)
	}
	return nil
}

// showCacheSize displays the cache directory size
func showCacheSize(out io.Writer, container *app.Container) error {
	if container.CacheStore == nil {
		return fmt.Errorf(ErrCacheUnavailable)
	}

	dir := container.CacheStore.Dir()
	var total int64
	_ = filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})

	fmt.Fprintf(out, "Cache directory: %s\nSize: %d bytes\n", dir, total)
	return nil
}
