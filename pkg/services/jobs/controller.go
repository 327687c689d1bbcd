package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/therma-tools/fleet-reports/pkg/adapters"
	"github.com/therma-tools/fleet-reports/pkg/models/domain"
	"github.com/therma-tools/fleet-reports/pkg/services/generator"
	jobstore "github.com/therma-tools/fleet-reports/pkg/store/duckdb/jobs"
)

// Controller is the submission boundary: the builder hands a valid config
// here and is done with it. Generation runs asynchronously; scheduled runs
// are re-armed from the store on startup.
type Controller interface {
	Generate(ctx context.Context, owner string, cfg domain.ReportConfig) (domain.ReportJob, error)
	Schedule(ctx context.Context, owner string, cfg domain.ReportConfig, runAt time.Time) (domain.ReportJob, error)
	Status(ctx context.Context, id string) (domain.ReportJob, error)
	Cancel(ctx context.Context, id string) error
}

type jobDescriptor struct {
	cancelFunc context.CancelFunc
	runner     *Runner
}

type DefaultController struct {
	db        *sql.DB
	store     jobstore.Store
	generator generator.Generator
	outputDir string

	mu      sync.Mutex
	running map[string]jobDescriptor
}

func NewController(db *sql.DB, store jobstore.Store, gen generator.Generator, outputDir string) *DefaultController {
	return &DefaultController{
		db:        db,
		store:     store,
		generator: gen,
		outputDir: outputDir,
		running:   make(map[string]jobDescriptor),
	}
}

// Init re-arms jobs that were scheduled before a restart. Jobs caught
// mid-run by the restart are marked failed; their artifacts are gone.
func (c *DefaultController) Init(ctx context.Context) error {
	interrupted, err := c.store.ListByStatus(ctx, []string{
		string(domain.JobStatusPending), string(domain.JobStatusRunning),
	})
	if err != nil {
		return fmt.Errorf("list interrupted jobs: %w", err)
	}
	for _, row := range interrupted {
		msg := "interrupted by restart"
		if err := c.store.UpdateStatus(ctx, row.ID, string(domain.JobStatusFailed), &msg); err != nil {
			return fmt.Errorf("fail interrupted job %s: %w", row.ID, err)
		}
	}

	scheduled, err := c.store.ListByStatus(ctx, []string{string(domain.JobStatusScheduled)})
	if err != nil {
		return fmt.Errorf("list scheduled jobs: %w", err)
	}
	for _, row := range scheduled {
		job, err := adapters.MapJobStoreToDomain(row)
		if err != nil {
			return fmt.Errorf("decode scheduled job %s: %w", row.ID, err)
		}
		c.armSchedule(ctx, job)
	}
	return nil
}

func (c *DefaultController) Generate(ctx context.Context, owner string, cfg domain.ReportConfig) (domain.ReportJob, error) {
	job := domain.ReportJob{
		ID:        uuid.NewString(),
		Owner:     owner,
		Status:    domain.JobStatusPending,
		Config:    cfg,
		CreatedAt: time.Now(),
	}
	if err := c.persist(ctx, job); err != nil {
		return domain.ReportJob{}, err
	}
	c.start(ctx, job)
	return job, nil
}

func (c *DefaultController) Schedule(ctx context.Context, owner string, cfg domain.ReportConfig, runAt time.Time) (domain.ReportJob, error) {
	if runAt.Before(time.Now()) {
		return domain.ReportJob{}, fmt.Errorf("run_at is in the past")
	}
	job := domain.ReportJob{
		ID:        uuid.NewString(),
		Owner:     owner,
		Status:    domain.JobStatusScheduled,
		Config:    cfg,
		CreatedAt: time.Now(),
		RunAt:     &runAt,
	}
	if err := c.persist(ctx, job); err != nil {
		return domain.ReportJob{}, err
	}
	c.armSchedule(ctx, job)
	return job, nil
}

func (c *DefaultController) Status(ctx context.Context, id string) (domain.ReportJob, error) {
	row, err := c.store.Get(ctx, id)
	if err != nil {
		return domain.ReportJob{}, err
	}
	return adapters.MapJobStoreToDomain(row)
}

func (c *DefaultController) Cancel(ctx context.Context, id string) error {
	c.mu.Lock()
	desc, ok := c.running[id]
	if ok {
		delete(c.running, id)
	}
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("job not running: %s", id)
	}
	desc.cancelFunc()
	<-desc.runner.Done()
	return c.store.UpdateStatus(ctx, id, string(domain.JobStatusCancelled), nil)
}

func (c *DefaultController) persist(ctx context.Context, job domain.ReportJob) error {
	row, err := adapters.MapJobDomainToStore(job)
	if err != nil {
		return err
	}
	if err := c.store.Create(ctx, row); err != nil {
		return err
	}
	return nil
}

func (c *DefaultController) start(ctx context.Context, job domain.ReportJob) {
	c.mu.Lock()
	defer c.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	runner := NewRunner(job, c.db, c.store, c.generator, c.outputDir)
	c.running[job.ID] = jobDescriptor{cancelFunc: cancel, runner: runner}

	go func() {
		runner.Run(runCtx)
		c.mu.Lock()
		delete(c.running, job.ID)
		c.mu.Unlock()
	}()
}

// armSchedule parks a goroutine until the job's run time, then promotes
// it to a normal run. Cancel before the timer fires stops it cleanly.
func (c *DefaultController) armSchedule(ctx context.Context, job domain.ReportJob) {
	if job.RunAt == nil {
		msg := "scheduled job has no run time"
		if err := c.store.UpdateStatus(ctx, job.ID, string(domain.JobStatusFailed), &msg); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("job_id", job.ID).Msg("failed to fail malformed scheduled job")
		}
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	runner := NewRunner(job, c.db, c.store, c.generator, c.outputDir)
	c.running[job.ID] = jobDescriptor{cancelFunc: cancel, runner: runner}

	go func() {
		timer := time.NewTimer(time.Until(*job.RunAt))
		defer timer.Stop()

		select {
		case <-runCtx.Done():
			runner.skip()
			return
		case <-timer.C:
		}

		runner.Run(runCtx)
		c.mu.Lock()
		delete(c.running, job.ID)
		c.mu.Unlock()
	}()

	zerolog.Ctx(ctx).Info().
		Str("job_id", job.ID).
		Time("run_at", *job.RunAt).
		Msg("report scheduled")
}
