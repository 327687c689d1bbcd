package jobs

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therma-tools/fleet-reports/pkg/models/store"
)

func TestJobStore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO report_jobs (id, owner, status, config, created_at, run_at, csv_path, xlsx_path, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)).
		WithArgs("job-1", "amira", "pending", `{"scope":"master"}`, created, nil, "", "", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = s.Create(context.Background(), &store.ReportJob{
		ID:         "job-1",
		Owner:      "amira",
		Status:     "pending",
		ConfigJSON: `{"scope":"master"}`,
		CreatedAt:  created,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobStore_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	cols := []string{"id", "owner", "status", "config", "created_at", "run_at", "csv_path", "xlsx_path", "error"}
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, owner, status, config, created_at, run_at, csv_path, xlsx_path, error
		FROM report_jobs WHERE id = ?`)).
			WithArgs("job-1").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("job-1", "amira", "done", `{}`, created, nil, "reports/job-1.csv", "reports/job-1.xlsx", nil))

		job, err := s.Get(context.Background(), "job-1")
		require.NoError(t, err)
		assert.Equal(t, "done", job.Status)
		assert.Equal(t, "reports/job-1.csv", job.CSVPath)
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery(`SELECT`).
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(cols))

		_, err := s.Get(context.Background(), "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestJobStore_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	msg := "render failed"
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE report_jobs SET status = ?, error = ? WHERE id = ?`)).
		WithArgs("failed", &msg, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.UpdateStatus(context.Background(), "job-1", "failed", &msg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobStore_ListByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	cols := []string{"id", "owner", "status", "config", "created_at", "run_at", "csv_path", "xlsx_path", "error"}
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	runAt := created.Add(24 * time.Hour)

	mock.ExpectQuery(`SELECT .+ FROM report_jobs WHERE status IN`).
		WithArgs("scheduled").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("job-2", "amira", "scheduled", `{}`, created, &runAt, "", "", nil))

	out, err := s.ListByStatus(context.Background(), []string{"scheduled"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "job-2", out[0].ID)
	require.NotNil(t, out[0].RunAt)
	assert.True(t, out[0].RunAt.Equal(runAt))
}
