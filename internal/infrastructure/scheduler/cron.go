// Package scheduler drives the recurring posting run and the retention
// cleanup on cron expressions from the config file.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/doeshing/adpost-go/internal/domain"
	"github.com/doeshing/adpost-go/internal/ports"
)

// Job is one scheduled unit of work.
type Job func(context.Context) error

// Cron wraps robfig/cron with the two jobs the agent needs.
type Cron struct {
	cron *cron.Cron
	log  ports.Logger
}

// New creates a scheduler using standard five-field cron expressions.
func New(log ports.Logger) *Cron {
	return &Cron{cron: cron.New(), log: log}
}

// Run registers the posting and prune jobs and blocks until ctx is
// cancelled. Job errors are logged, never fatal: a failed nightly run must
// not take the scheduler down.
func (c *Cron) Run(ctx context.Context, schedule domain.ScheduleSettings, post Job, prune Job) error {
	if _, err := c.cron.AddFunc(schedule.PostSpec, c.wrap(ctx, "post", post)); err != nil {
		return fmt.Errorf("post schedule %q: %w", schedule.PostSpec, err)
	}
	if schedule.PruneSpec != "" && prune != nil {
		if _, err := c.cron.AddFunc(schedule.PruneSpec, c.wrap(ctx, "prune", prune)); err != nil {
			return fmt.Errorf("prune schedule %q: %w", schedule.PruneSpec, err)
		}
	}

	c.cron.Start()
	c.log.Info("scheduler started", map[string]interface{}{
		"post_spec":  schedule.PostSpec,
		"prune_spec": schedule.PruneSpec,
	})

	<-ctx.Done()
	stopCtx := c.cron.Stop()
	<-stopCtx.Done()
	return ctx.Err()
}

func (c *Cron) wrap(ctx context.Context, name string, job Job) func() {
	return func() {
		if err := job(ctx); err != nil {
			c.log.Error("scheduled run failed", err, map[string]interface{}{"job": name})
			return
		}
		c.log.Info("scheduled run completed", map[string]interface{}{"job": name})
	}
}
