// internal/app/system/tasks/tasks.go
// Package tasks runs low-frequency background jobs on fixed intervals.
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Job is a named unit of periodic work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner owns a set of jobs and drives them until its context ends.
type Runner struct {
	jobs []Job
	log  *zap.Logger
}

func NewRunner(logger *zap.Logger, jobs ...Job) *Runner {
	return &Runner{jobs: jobs, log: logger}
}

// Start launches one goroutine per job. Each job ticks on its interval
// and logs failures without stopping; the goroutines exit when ctx is
// cancelled.
func (r *Runner) Start(ctx context.Context) {
	for _, job := range r.jobs {
		go r.runLoop(ctx, job)
	}
}

func (r *Runner) runLoop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	r.log.Info("background job started",
		zap.String("job", job.Name),
		zap.Duration("interval", job.Interval))
	for {
		select {
		case <-ctx.Done():
			r.log.Info("background job stopped", zap.String("job", job.Name))
			return
		case <-ticker.C:
			if err := job.Run(ctx); err != nil {
				r.log.Error("background job failed",
					zap.String("job", job.Name), zap.Error(err))
			}
		}
	}
}
