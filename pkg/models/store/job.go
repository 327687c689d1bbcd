package store

import "time"

// ReportJob is the persisted form of a generate/schedule submission. The
// builder config travels as JSON so the schema does not chase the domain
// model.
type ReportJob struct {
	ID         string
	Owner      string
	Status     string
	ConfigJSON string
	CreatedAt  time.Time
	RunAt      *time.Time
	CSVPath    string
	XLSXPath   string
	Error      *string
}
