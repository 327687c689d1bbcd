package domain

import "time"

type JobStatus string

const (
	JobStatusScheduled JobStatus = "scheduled"
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusDone      JobStatus = "done"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// ReportJob tracks one generate or schedule submission. The builder hands
// a valid ReportConfig across this boundary and is done with it; everything
// from here on (rendering, export, failure) lives on the job.
type ReportJob struct {
	ID        string
	Owner     string
	Status    JobStatus
	Config    ReportConfig
	CreatedAt time.Time
	RunAt     *time.Time
	CSVPath   string
	XLSXPath  string
	Error     *string
}
