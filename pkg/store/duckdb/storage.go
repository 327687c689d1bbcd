package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const UnitsSchema = `
	CREATE TABLE IF NOT EXISTS units (
		id VARCHAR NOT NULL PRIMARY KEY,
		name VARCHAR NOT NULL,
		client_id VARCHAR NOT NULL,
		location VARCHAR,
		status VARCHAR NOT NULL,
		commissioned_at TIMESTAMP
	);
`

const ClientsSchema = `
	CREATE TABLE IF NOT EXISTS clients (
		id VARCHAR NOT NULL PRIMARY KEY,
		name VARCHAR NOT NULL,
		email VARCHAR
	);
`

const ReadingsSchema = `
	CREATE TABLE IF NOT EXISTS unit_readings (
		unit_id VARCHAR NOT NULL,
		recorded_at TIMESTAMP NOT NULL,
		temp_c DOUBLE,
		pressure_bar DOUBLE,
		output_kw DOUBLE,
		water_output_lph DOUBLE,
		uptime_pct DOUBLE
	);
`

const AlertsSchema = `
	CREATE TABLE IF NOT EXISTS unit_alerts (
		id VARCHAR NOT NULL PRIMARY KEY,
		unit_id VARCHAR NOT NULL,
		severity VARCHAR NOT NULL,
		message VARCHAR,
		raised_at TIMESTAMP NOT NULL,
		resolved BOOLEAN NOT NULL DEFAULT FALSE
	);
`

const ReportJobsSchema = `
	CREATE TABLE IF NOT EXISTS report_jobs (
		id VARCHAR NOT NULL PRIMARY KEY,
		owner VARCHAR NOT NULL,
		status VARCHAR NOT NULL,
		config JSON NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		run_at TIMESTAMP NULL,
		csv_path VARCHAR,
		xlsx_path VARCHAR,
		error VARCHAR NULL
	);
`

var bootQueries = []string{
	UnitsSchema,
	ClientsSchema,
	ReadingsSchema,
	AlertsSchema,
	ReportJobsSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
