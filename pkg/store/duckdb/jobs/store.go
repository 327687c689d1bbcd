package jobs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/therma-tools/fleet-reports/pkg/models/store"
	"github.com/therma-tools/fleet-reports/pkg/store/duckdb"
)

// Store persists report jobs across restarts so scheduled runs survive a
// service bounce.
type Store interface {
	Create(ctx context.Context, job *store.ReportJob) error
	Get(ctx context.Context, id string) (*store.ReportJob, error)
	ListByStatus(ctx context.Context, statuses []string) ([]*store.ReportJob, error)
	UpdateStatus(ctx context.Context, id, status string, errMsg *string) error
	SetArtifacts(ctx context.Context, id, csvPath, xlsxPath string) error
}

type jobStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &jobStore{db: db}, nil
}

func (s *jobStore) Create(ctx context.Context, job *store.ReportJob) error {
	exec := s.execer(ctx)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO report_jobs (id, owner, status, config, created_at, run_at, csv_path, xlsx_path, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Owner, job.Status, job.ConfigJSON, job.CreatedAt, job.RunAt,
		job.CSVPath, job.XLSXPath, job.Error)
	if err != nil {
		return fmt.Errorf("insert report job: %w", err)
	}
	return nil
}

func (s *jobStore) Get(ctx context.Context, id string) (*store.ReportJob, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner, status, config, created_at, run_at, csv_path, xlsx_path, error
		FROM report_jobs WHERE id = ?`, id)

	var job store.ReportJob
	err := row.Scan(&job.ID, &job.Owner, &job.Status, &job.ConfigJSON,
		&job.CreatedAt, &job.RunAt, &job.CSVPath, &job.XLSXPath, &job.Error)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report job not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan report job: %w", err)
	}
	return &job, nil
}

func (s *jobStore) ListByStatus(ctx context.Context, statuses []string) ([]*store.ReportJob, error) {
	query := `
		SELECT id, owner, status, config, created_at, run_at, csv_path, xlsx_path, error
		FROM report_jobs`
	var args []any
	if len(statuses) > 0 {
		query += ` WHERE status IN (`
		for i, st := range statuses {
			if i > 0 {
				query += `,`
			}
			query += `?`
			args = append(args, st)
		}
		query += `)`
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query report jobs: %w", err)
	}
	defer rows.Close()

	var out []*store.ReportJob
	for rows.Next() {
		var job store.ReportJob
		err := rows.Scan(&job.ID, &job.Owner, &job.Status, &job.ConfigJSON,
			&job.CreatedAt, &job.RunAt, &job.CSVPath, &job.XLSXPath, &job.Error)
		if err != nil {
			return nil, fmt.Errorf("scan report job: %w", err)
		}
		out = append(out, &job)
	}
	return out, rows.Err()
}

func (s *jobStore) UpdateStatus(ctx context.Context, id, status string, errMsg *string) error {
	exec := s.execer(ctx)
	_, err := exec.ExecContext(ctx,
		`UPDATE report_jobs SET status = ?, error = ? WHERE id = ?`, status, errMsg, id)
	if err != nil {
		return fmt.Errorf("update report job status: %w", err)
	}
	return nil
}

func (s *jobStore) SetArtifacts(ctx context.Context, id, csvPath, xlsxPath string) error {
	exec := s.execer(ctx)
	_, err := exec.ExecContext(ctx,
		`UPDATE report_jobs SET csv_path = ?, xlsx_path = ? WHERE id = ?`, csvPath, xlsxPath, id)
	if err != nil {
		return fmt.Errorf("update report job artifacts: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *jobStore) execer(ctx context.Context) execer {
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		return tx
	}
	return s.db
}
