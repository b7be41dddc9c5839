package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/adpost-go/internal/app"
	"github.com/doeshing/adpost-go/internal/domain"
)

// NewCheckCommand creates the check command, a direct line to the duplicate
// guard for ad-hoc text.
func NewCheckCommand(container *app.Container) *cobra.Command {
	var (
		threshold float64
		lookback  int
	)

	cmd := &cobra.Command{
		Use:   "check <category> <text...>",
		Short: "Check text against recent history for duplicates",
		Long:  "Scores the given text against the category's recent history without publishing or recording anything. Categories: prompt, caption, image, post.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Guard == nil {
				return fmt.Errorf(ErrGuardUnavailable)
			}
			category, err := domain.ParseCategory(args[0])
			if err != nil {
				return err
			}
			candidate := strings.Join(args[1:], " ")

			if threshold == 0 {
				cfg, err := container.ConfigProvider.Load(cmd.Context())
				if err != nil {
					return err
				}
				threshold = cfg.Dedup.Threshold
				if lookback == 0 {
					lookback = cfg.Dedup.Lookback
				}
			}

			decision, err := container.Guard.Check(category, candidate, threshold, lookback)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if decision.IsDuplicate {
				fmt.Fprintf(out, "DUPLICATE (score %.2f >= threshold %.2f)\n", decision.MaxScore, threshold)
				if decision.Matched != nil {
					fmt.Fprintf(out, "Matched %s record from %s:\n  %s\n",
						decision.Matched.Category,
						decision.Matched.CreatedAt.Format(domain.TimestampFormat),
						decision.Matched.Text)
				}
				return nil
			}
			fmt.Fprintf(out, "OK (max score %.2f, threshold %.2f)\n", decision.MaxScore, threshold)
			return nil
		},
	}

	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "Similarity threshold in [0,1] (default from config)")
	cmd.Flags().IntVarP(&lookback, "lookback", "l", 0, "How many recent records to scan (default from config)")
	return cmd
}
