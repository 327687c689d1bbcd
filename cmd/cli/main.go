package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/therma-tools/fleet-reports/pkg/adapters"
	"github.com/therma-tools/fleet-reports/pkg/export"
	"github.com/therma-tools/fleet-reports/pkg/models/domain"
	fleetsvc "github.com/therma-tools/fleet-reports/pkg/services/fleet"
	"github.com/therma-tools/fleet-reports/pkg/services/generator"
	reportsvc "github.com/therma-tools/fleet-reports/pkg/services/report"
	"github.com/therma-tools/fleet-reports/pkg/store/duckdb"
	duckdbfleet "github.com/therma-tools/fleet-reports/pkg/store/duckdb/fleet"
	duckdbreadings "github.com/therma-tools/fleet-reports/pkg/store/duckdb/readings"
	"github.com/therma-tools/fleet-reports/pkg/store/duckdb/seed"
)

type options struct {
	dbPath      string
	catalogPath string
	role        string
	reportTypes []string
	sections    []string
	allSections bool
	scope       string
	units       []string
	clients     []string
	dateStart   string
	dateEnd     string
	csvPath     string
	xlsxPath    string
}

func main() {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "fleet-reports",
		Short: "Render a ThermaCore fleet report from the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.dbPath, "db", "fleet-reports.db", "Path to the DuckDB database")
	flags.StringVar(&opts.catalogPath, "catalog", "config/catalog.yaml", "Path to the report catalog")
	flags.StringVar(&opts.role, "role", "manager", "Role whose catalog to use")
	flags.StringSliceVar(&opts.reportTypes, "report-type", nil, "Report type preset to select, repeatable")
	flags.StringSliceVar(&opts.sections, "section", nil, "Section to enable, repeatable")
	flags.BoolVar(&opts.allSections, "all-sections", false, "Enable every allowed section")
	flags.StringVar(&opts.scope, "scope", "master", "Report scope: single, multiple, client or master")
	flags.StringSliceVar(&opts.units, "unit", nil, "Unit to include, repeatable")
	flags.StringSliceVar(&opts.clients, "client", nil, "Client to include, repeatable")
	flags.StringVar(&opts.dateStart, "from", "", "Start of the reporting window, YYYY-MM-DD")
	flags.StringVar(&opts.dateEnd, "to", "", "End of the reporting window, YYYY-MM-DD")
	flags.StringVar(&opts.csvPath, "csv", "", "Also write the report as CSV to this path")
	flags.StringVar(&opts.xlsxPath, "xlsx", "", "Also write the report as XLSX to this path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, opts options) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	catalog, err := reportsvc.LoadCatalog(opts.catalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	rec, err := catalog.ReconcilerFor(opts.role)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(rec, opts)
	if err != nil {
		return err
	}
	if !rec.Valid(cfg) {
		return fmt.Errorf("the selection does not form a complete report config")
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: opts.dbPath})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	fleetStore, err := duckdbfleet.NewStore(db)
	if err != nil {
		return err
	}
	readingStore, err := duckdbreadings.NewStore(db)
	if err != nil {
		return err
	}
	if err := seed.Demo(ctx, fleetStore, readingStore); err != nil {
		return fmt.Errorf("seed demo fleet: %w", err)
	}

	gen := generator.NewGenerator(fleetsvc.NewExplorer(fleetStore), readingStore, fleetStore)
	report, err := gen.Generate(ctx, cfg)
	if err != nil {
		return err
	}

	if opts.csvPath != "" {
		f, err := os.Create(opts.csvPath)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		defer f.Close()
		if err := export.WriteCSV(report, f); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	if opts.xlsxPath != "" {
		if err := export.WriteXLSX(report, opts.xlsxPath); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	}

	return export.NewReporter(os.Stdout).Handle(report)
}

// buildConfig replays the flag selections through the same transitions the
// dashboard uses, so the CLI and the web builder agree on semantics.
func buildConfig(rec *reportsvc.Reconciler, opts options) (domain.ReportConfig, error) {
	cfg := rec.NewConfig()

	cfg = rec.SetScope(cfg, domain.Scope(opts.scope))
	if cfg.Scope == domain.ScopeUnset {
		return cfg, fmt.Errorf("scope %q is not allowed for role %q", opts.scope, opts.role)
	}

	for _, id := range opts.reportTypes {
		cfg = rec.SelectReportType(cfg, id)
	}
	for _, key := range opts.sections {
		cfg = rec.ToggleSection(cfg, domain.SectionKey(key), true)
	}
	if opts.allSections {
		cfg = rec.SelectAllSections(cfg, true)
	}
	for _, id := range opts.units {
		cfg = rec.SelectUnit(cfg, id, true)
	}
	for _, id := range opts.clients {
		cfg = rec.SelectClient(cfg, id, true)
	}

	var dates domain.DateRange
	if opts.dateStart != "" {
		start, err := adapters.ParseDate(opts.dateStart)
		if err != nil {
			return cfg, err
		}
		dates.Start = &start
	}
	if opts.dateEnd != "" {
		end, err := adapters.ParseDate(opts.dateEnd)
		if err != nil {
			return cfg, err
		}
		dates.End = &end
	}
	return rec.SetDates(cfg, dates), nil
}
