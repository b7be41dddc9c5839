package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/adpost-go/internal/app"
	"github.com/doeshing/adpost-go/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}
	container.Agent.Prompter = NewPrompter(nil, nil)

	root := &cobra.Command{
		Use:   "adpost",
		Short: "adpost - Instagram ad posting agent",
		Long:  "adpost generates ad captions and image prompts, guards against repeating recent content, and publishes to Instagram.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(commands.NewPostCommand(container))
	root.AddCommand(commands.NewScheduleCommand(container))
	root.AddCommand(commands.NewCheckCommand(container))
	root.AddCommand(commands.NewHistoryCommand(container))
	root.AddCommand(commands.NewCacheCommand(container))
	root.AddCommand(commands.NewConfigCommand(container))
	root.AddCommand(commands.NewDoctorCommand(container))
	return root, nil
}
