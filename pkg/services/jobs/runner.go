package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/therma-tools/fleet-reports/pkg/export"
	"github.com/therma-tools/fleet-reports/pkg/models/domain"
	"github.com/therma-tools/fleet-reports/pkg/services/generator"
	"github.com/therma-tools/fleet-reports/pkg/store/duckdb"
	jobstore "github.com/therma-tools/fleet-reports/pkg/store/duckdb/jobs"
)

// Runner executes one report job: render, export CSV and XLSX, record the
// outcome on the job row. Errors never propagate past the job.
type Runner struct {
	job       domain.ReportJob
	db        *sql.DB
	store     jobstore.Store
	generator generator.Generator
	outputDir string
	done      chan struct{}
}

func NewRunner(job domain.ReportJob, db *sql.DB, store jobstore.Store, gen generator.Generator, outputDir string) *Runner {
	return &Runner{
		job:       job,
		db:        db,
		store:     store,
		generator: gen,
		outputDir: outputDir,
		done:      make(chan struct{}),
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// skip marks the runner finished without running; used when a scheduled
// job is cancelled before its timer fires.
func (r *Runner) skip() {
	close(r.done)
}

func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)
	logger := zerolog.Ctx(ctx).With().Str("job_id", r.job.ID).Logger()

	if err := r.store.UpdateStatus(ctx, r.job.ID, string(domain.JobStatusRunning), nil); err != nil {
		logger.Error().Err(err).Msg("failed to mark job running")
		return
	}

	report, err := r.generator.Generate(ctx, r.job.Config)
	if err != nil {
		r.fail(ctx, &logger, fmt.Errorf("generate report: %w", err))
		return
	}

	csvPath, xlsxPath, err := r.writeArtifacts(report)
	if err != nil {
		r.fail(ctx, &logger, err)
		return
	}

	// Artifact paths and the done status land together or not at all, so a
	// done job always has both files on record.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.fail(ctx, &logger, fmt.Errorf("begin transaction: %w", err))
		return
	}
	txCtx := duckdb.WithTransaction(ctx, tx)
	if err := r.store.SetArtifacts(txCtx, r.job.ID, csvPath, xlsxPath); err != nil {
		_ = tx.Rollback()
		r.fail(ctx, &logger, fmt.Errorf("record artifacts: %w", err))
		return
	}
	if err := r.store.UpdateStatus(txCtx, r.job.ID, string(domain.JobStatusDone), nil); err != nil {
		_ = tx.Rollback()
		r.fail(ctx, &logger, fmt.Errorf("mark job done: %w", err))
		return
	}
	if err := tx.Commit(); err != nil {
		r.fail(ctx, &logger, fmt.Errorf("commit job outcome: %w", err))
		return
	}
	logger.Info().Str("csv", csvPath).Str("xlsx", xlsxPath).Msg("report job finished")
}

func (r *Runner) writeArtifacts(report *domain.Report) (string, string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}

	csvPath := filepath.Join(r.outputDir, r.job.ID+".csv")
	f, err := os.Create(csvPath)
	if err != nil {
		return "", "", fmt.Errorf("create csv: %w", err)
	}
	if err := export.WriteCSV(report, f); err != nil {
		f.Close()
		return "", "", fmt.Errorf("write csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", "", fmt.Errorf("close csv: %w", err)
	}

	xlsxPath := filepath.Join(r.outputDir, r.job.ID+".xlsx")
	if err := export.WriteXLSX(report, xlsxPath); err != nil {
		return "", "", fmt.Errorf("write xlsx: %w", err)
	}
	return csvPath, xlsxPath, nil
}

func (r *Runner) fail(ctx context.Context, logger *zerolog.Logger, cause error) {
	logger.Error().Err(cause).Msg("report job failed")
	msg := cause.Error()
	if err := r.store.UpdateStatus(ctx, r.job.ID, string(domain.JobStatusFailed), &msg); err != nil {
		logger.Error().Err(err).Msg("failed to mark job failed")
	}
}
