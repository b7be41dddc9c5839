package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doeshing/adpost-go/internal/app"
	"github.com/doeshing/adpost-go/internal/domain"
)

// NewScheduleCommand creates the schedule command, which keeps the agent
// running and posts on the configured cron expressions.
func NewScheduleCommand(container *app.Container) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the posting agent on the configured schedule",
		Long:  "Blocks and runs a posting job plus a history retention job on the cron expressions from the config file. Stop with Ctrl-C.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Agent == nil || container.Scheduler == nil {
				return fmt.Errorf(ErrAgentUnavailable)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := container.ConfigProvider.Load(ctx)
			if err != nil {
				return err
			}

			postJob := func(jobCtx context.Context) error {
				resp, err := container.Agent.Run(domain.PostRequest{Context: jobCtx, DryRun: dryRun})
				if err != nil {
					return err
				}
				if resp.Rejected {
					return fmt.Errorf("run rejected: %s", resp.Reason)
				}
				return nil
			}
			pruneJob := func(jobCtx context.Context) error {
				_, err := container.Agent.Prune(jobCtx)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Scheduling posts on %q (prune on %q). Press Ctrl-C to stop.\n",
				cfg.Schedule.PostSpec, cfg.Schedule.PruneSpec)

			err = container.Scheduler.Run(ctx, cfg.Schedule, postJob, pruneJob)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Scheduled runs generate and check but never publish")
	return cmd
}
