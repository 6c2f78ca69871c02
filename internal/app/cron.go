package app

import (
	"context"
	"time"

	pkgcron "github.com/ynshm/llm-traffic-optimizer/internal/pkg/cron"
)

// registerCronJobs wires the recurring background work. The digest job
// ticks hourly; the configured frequency gate inside RunScheduled decides
// whether anything is actually regenerated.
func (a *App) registerCronJobs() {
	a.sched.Register(pkgcron.Job{
		Name:        "scheduled_summaries",
		Description: "Regenerate AI digests that are due per the configured frequency",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			return a.sumSvc.RunScheduled(ctx)
		},
	})

	a.sched.Register(pkgcron.Job{
		Name:        "refresh_manifests",
		Description: "Rewrite llms.txt and llms-full.txt from current content",
		Interval:    6 * time.Hour,
		Fn: func(ctx context.Context) error {
			return a.maniSvc.Regenerate()
		},
	})
}
