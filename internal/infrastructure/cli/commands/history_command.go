package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doeshing/adpost-go/internal/app"
	"github.com/doeshing/adpost-go/internal/domain"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect posted content history",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(container),
		newHistoryRecentCommand(container),
		newHistoryPruneCommand(container),
		newHistoryClearCommand(container),
		newHistoryExportCommand(container),
		newHistoryStatsCommand(container),
	)

	return historyCmd
}

// newHistoryListCommand creates the 'history list' subcommand
func newHistoryListCommand(container *app.Container) *cobra.Command {
	var (
		category string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent history entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistoryEntries(cmd.OutOrStdout(), container, category, limit)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Restrict to one category (prompt|caption|image|post)")
	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show per category")
	return cmd
}

// newHistoryRecentCommand creates the 'history recent' subcommand
func newHistoryRecentCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent <category>",
		Short: "Show the most recent entries of one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistoryEntries(cmd.OutOrStdout(), container, args[0], limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show")
	return cmd
}

// newHistoryPruneCommand creates the 'history prune' subcommand
func newHistoryPruneCommand(container *app.Container) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove history entries older than N days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf(ErrInvalidPruneDays)
			}
			return pruneHistory(cmd.OutOrStdout(), container, days)
		},
	}

	cmd.Flags().IntVar(&days, "days", domain.DefaultRetentionDays, "Days of history to keep")
	return cmd
}

// newHistoryClearCommand creates the 'history clear' subcommand
func newHistoryClearCommand(container *app.Container) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop history for one category or all of them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return clearHistory(cmd.OutOrStdout(), container, category)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Restrict to one category (clears everything by default)")
	return cmd
}

// newHistoryExportCommand creates the 'history export' subcommand
func newHistoryExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export all history to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportHistory(container, args[0])
		},
	}
}

// newHistoryStatsCommand creates the 'history stats' subcommand
func newHistoryStatsCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-category record counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistoryStats(cmd.OutOrStdout(), container)
		},
	}
}

func resolveCategories(flag string) ([]domain.Category, error) {
	if flag == "" {
		return domain.Categories(), nil
	}
	category, err := domain.ParseCategory(flag)
	if err != nil {
		return nil, err
	}
	return []domain.Category{category}, nil
}

// listHistoryEntries lists recent history entries
func listHistoryEntries(out io.Writer, container *app.Container, categoryFlag string, limit int) error {
	store := container.HistoryStore
	if store == nil {
		return fmt.Errorf(ErrHistoryUnavailable)
	}
	categories, err := resolveCategories(categoryFlag)
	if err != nil {
		return err
	}

	shown := 0
	for _, category := range categories {
		records, err := store.Recent(category, limit)
		if err != nil {
			return fmt.Errorf("failed to retrieve %s history: %w", category, err)
		}
		for _, rec := range records {
			fmt.Fprintf(out, "%s | %-7s | %s\n",
				rec.CreatedAt.Format(domain.TimestampFormat),
				rec.Category,
				rec.Text)
			shown++
		}
	}
	if shown == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
	}
	return nil
}

// pruneHistory removes records older than the given number of days
func pruneHistory(out io.Writer, container *app.Container, days int) error {
	store := container.HistoryStore
	if store == nil {
		return fmt.Errorf(ErrHistoryUnavailable)
	}

	total := 0
	for _, category := range domain.Categories() {
		removed, err := store.Prune(category, days)
		if err != nil {
			return fmt.Errorf("failed to prune %s history: %w", category, err)
		}
		total += removed
	}

	fmt.Fprintf(out, "Removed %d records older than %d days.\n", total, days)
	return nil
}

// clearHistory drops the selected categories
func clearHistory(out io.Writer, container *app.Container, categoryFlag string) error {
	store := container.HistoryStore
	if store == nil {
		return fmt.Errorf(ErrHistoryUnavailable)
	}
	categories, err := resolveCategories(categoryFlag)
	if err != nil {
		return err
	}

	for _, category := range categories {
		if err := store.Reset(category); err != nil {
			return fmt.Errorf("failed to clear %s history: %w", category, err)
		}
	}

	fmt.Fprintf(out, "Cleared history for %d categories.\n", len(categories))
	return nil
}

// exportHistory exports history to a JSONL file
func exportHistory(container *app.Container, path string) error {
	store := container.HistoryStore
	if store == nil {
		return fmt.Errorf(ErrHistoryUnavailable)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	for _, category := range domain.Categories() {
		records, err := store.All(category)
		if err != nil {
			return fmt.Errorf("failed to load %s history: %w", category, err)
		}
		for _, rec := range records {
			if err := encoder.Encode(rec); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
		}
	}
	return nil
}

// showHistoryStats displays per-category counts and the newest entry age
func showHistoryStats(out io.Writer, container *app.Container) error {
	store := container.HistoryStore
	if store == nil {
		return fmt.Errorf(ErrHistoryUnavailable)
	}

	total := 0
	for _, category := range domain.Categories() {
		records, err := store.All(category)
		if err != nil {
			return fmt.Errorf("failed to load %s history: %w", category, err)
		}
		total += len(records)

		latest := "-"
		if len(records) > 0 {
			latest = records[len(records)-1].CreatedAt.Format(domain.TimestampFormat)
		}
		fmt.Fprintf(out, "%-8s %5d records, newest %s\n", category, len(records), latest)
	}
	fmt.Fprintf(out, "Total: %d records\n", total)
	return nil
}
