package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one periodic pass. Run reports how many orders it touched.
type Job interface {
	Name() string
	Run(ctx context.Context) (int, error)
}

// Schedule binds a job to a cron spec with an optional seconds field.
type Schedule struct {
	Spec string
	Job  Job
}

// JobManager runs every scheduled job on one cron instance. Overlapping runs
// of the same job are skipped.
type JobManager struct {
	schedules []Schedule
	timeout   time.Duration
	cron      *cron.Cron
	cancel    context.CancelFunc
	logger    *slog.Logger
}

// NewJobManager creates a manager; timeout bounds a single run.
func NewJobManager(timeout time.Duration, logger *slog.Logger, schedules ...Schedule) *JobManager {
	parser := cron.NewParser(
		cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)
	return &JobManager{
		schedules: schedules,
		timeout:   timeout,
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger: logger.With("component", "job_manager"),
	}
}

// StartAll registers every job and starts the scheduler. Runs derive their
// context from ctx. Nothing is started if any spec is invalid.
func (m *JobManager) StartAll(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	for _, s := range m.schedules {
		if _, err := m.cron.AddFunc(s.Spec, m.wrap(runCtx, s.Job)); err != nil {
			cancel()
			return fmt.Errorf("failed to schedule %s job: %w", s.Job.Name(), err)
		}
	}
	m.cancel = cancel

	m.cron.Start()
	m.logger.InfoContext(ctx, "Jobs started", "count", len(m.schedules))
	return nil
}

// StopAll stops the scheduler and waits for running jobs to return.
func (m *JobManager) StopAll() {
	if m.cancel != nil {
		m.cancel()
	}
	<-m.cron.Stop().Done()
	m.logger.Info("Jobs stopped")
}

func (m *JobManager) wrap(ctx context.Context, job Job) func() {
	return func() {
		runCtx := ctx
		if m.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, m.timeout)
			defer cancel()
		}
		if _, err := job.Run(runCtx); err != nil && ctx.Err() == nil {
			m.logger.ErrorContext(runCtx, "Job failed", "job", job.Name(), "error", err)
		}
	}
}
