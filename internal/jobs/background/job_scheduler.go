package background

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"receiptpanel/internal/jobs"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// JobScheduler runs the periodic sweeps.
type JobScheduler struct {
	scheduler gocron.Scheduler
	sweeper   *jobs.Sweeper
	logger    *slog.Logger
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a scheduler with both sweeps registered at the
// given interval. ctx is handed to every run.
func NewJobScheduler(ctx context.Context, sweeper *jobs.Sweeper, interval time.Duration, logger *slog.Logger) (*JobScheduler, error) {
	logger = logger.With("component", "job_scheduler")

	scheduler, err := gocron.NewScheduler(gocron.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		sweeper:   sweeper,
		logger:    logger,
		jobs:      make(map[string]gocron.Job),
	}

	if err := js.registerJobs(ctx, interval); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler", slog.Int("jobs", len(js.jobs)))
	js.scheduler.Start()
}

// Stop waits for running sweeps and stops the scheduler
func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs(ctx context.Context, interval time.Duration) error {
	tasks := map[string]func(context.Context) error{
		jobs.JobLicenseExpiry:  js.sweeper.ExpireLicenses,
		jobs.JobDevicePresence: js.sweeper.MarkIdleDevices,
	}

	js.mu.Lock()
	defer js.mu.Unlock()

	for name, task := range tasks {
		job, err := js.scheduler.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(task, ctx),
			gocron.WithName(name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithError(func(_ uuid.UUID, jobName string, err error) {
					js.logger.Warn("job returned error", slog.String("job", jobName), slog.Any("error", err))
				}),
			),
		)
		if err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
		js.jobs[name] = job
	}
	return nil
}

// JobNames returns the registered job names in sorted order
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
