// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schedule runs the daily publication on a cron schedule for the
// long-running serve command.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pdiddy/quotesite/internal/logger"
)

// parser accepts six-field expressions with a leading seconds field, plus
// descriptors such as @daily.
var parser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler triggers a Job on a cron expression. Overlapping triggers are
// skipped while a previous run is still in progress.
type Scheduler struct {
	expr     string
	schedule cron.Schedule
	job      Job
	log      *logger.Logger
	loc      *time.Location
}

// New parses expr and returns a Scheduler for job.
func New(expr string, job Job, log *logger.Logger) (*Scheduler, error) {
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", expr, err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{expr: expr, schedule: sched, job: job, log: log, loc: time.Local}, nil
}

// Next returns the first activation strictly after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Run starts the cron loop and blocks until ctx is cancelled, then waits
// for an in-flight job to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	cl := cronLogger{s.log}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(s.loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() {
		start := time.Now()
		s.log.Info("scheduled run starting", "schedule", s.expr)
		if err := s.job(ctx); err != nil {
			s.log.Error("scheduled run failed", "error", err, "elapsed", time.Since(start))
			return
		}
		s.log.Info("scheduled run finished", "elapsed", time.Since(start))
	}))

	c.Start()
	s.log.Info("scheduler started", "schedule", s.expr, "next", s.Next(time.Now().In(s.loc)))

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("scheduler stopped")
	return nil
}

// cronLogger adapts the structured logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
