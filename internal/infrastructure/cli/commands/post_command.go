package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/adpost-go/internal/app"
	"github.com/doeshing/adpost-go/internal/domain"
)

// NewPostCommand creates the post command, the main entry point of the agent.
func NewPostCommand(container *app.Container) *cobra.Command {
	var (
		briefPath string
		model     string
		dryRun    bool
		skipStory bool
		debug     bool
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Generate ad content and publish it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Agent == nil {
				return fmt.Errorf(ErrAgentUnavailable)
			}
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			req := domain.PostRequest{
				Context:       ctx,
				BriefPath:     briefPath,
				ModelOverride: model,
				DryRun:        dryRun,
				SkipStory:     skipStory,
				Debug:         debug,
			}
			resp, err := container.Agent.Run(req)
			renderPostResponse(cmd.OutOrStdout(), resp, dryRun)
			return err
		},
	}

	cmd.Flags().StringVarP(&briefPath, "brief", "b", "", "Path to the product brief YAML (default ~/.adpost/brief.yaml)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Override model name (default from config)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Generate and check, but do not publish or record")
	cmd.Flags().BoolVar(&skipStory, "skip-story", false, "Do not publish to stories even if configured")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable verbose logging")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Override run timeout")

	return cmd
}

// renderPostResponse prints the run outcome in a friendly, ASCII-only format.
func renderPostResponse(out io.Writer, resp domain.PostResponse, dryRun bool) {
	fmt.Fprintln(out, "Generated Caption:")
	fmt.Fprintf(out, "  %s\n", resp.Draft.Caption)
	if len(resp.Draft.Hashtags) > 0 {
		fmt.Fprintln(out, "Hashtags:")
		fmt.Fprintf(out, "  %s\n", strings.Join(resp.Draft.Hashtags, " "))
	}
	if resp.Draft.ImagePrompt != "" {
		fmt.Fprintln(out, "Image Prompt:")
		fmt.Fprintf(out, "  %s\n", resp.Draft.ImagePrompt)
	}
	if resp.Draft.FromCache {
		fmt.Fprintln(out, "Note: content served from cache")
	}

	renderDecisions(out, resp.Decisions)

	if len(resp.Verdict.Reasons) > 0 {
		fmt.Fprintf(out, "\nPolicy: %s\n", resp.Verdict.Action)
		for _, reason := range resp.Verdict.Reasons {
			fmt.Fprintf(out, " - %s\n", reason)
		}
	}

	if resp.Rejected {
		fmt.Fprintf(out, "\nNot published: %s\n", resp.Reason)
		return
	}
	if dryRun {
		fmt.Fprintln(out, "\nDry run: nothing was published or recorded.")
		return
	}

	renderResult(out, "Feed", resp.FeedResult)
	renderResult(out, "Story", resp.StoryResult)
}

func renderDecisions(out io.Writer, decisions map[domain.Category]domain.Decision) {
	if len(decisions) == 0 {
		return
	}
	categories := make([]string, 0, len(decisions))
	for cat := range decisions {
		categories = append(categories, string(cat))
	}
	sort.Strings(categories)

	fmt.Fprintln(out, "\nDuplicate checks:")
	for _, name := range categories {
		decision := decisions[domain.Category(name)]
		status := "ok"
		if decision.IsDuplicate {
			status = "DUPLICATE"
		}
		fmt.Fprintf(out, "  %-8s %s (max score %.2f)\n", name, status, decision.MaxScore)
	}
}

func renderResult(out io.Writer, surface string, result *domain.PostResult) {
	if result == nil {
		return
	}
	if result.Success {
		fmt.Fprintf(out, "\n%s published: media id %s\n", surface, result.MediaID)
		return
	}
	fmt.Fprintf(out, "\n%s publish failed: %s\n", surface, result.Error)
}
