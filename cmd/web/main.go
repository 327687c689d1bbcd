package main

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/therma-tools/fleet-reports/pkg/auth"
	"github.com/therma-tools/fleet-reports/pkg/server"
	"github.com/therma-tools/fleet-reports/pkg/services/config"
	fleetsvc "github.com/therma-tools/fleet-reports/pkg/services/fleet"
	"github.com/therma-tools/fleet-reports/pkg/services/generator"
	"github.com/therma-tools/fleet-reports/pkg/services/jobs"
	reportsvc "github.com/therma-tools/fleet-reports/pkg/services/report"
	"github.com/therma-tools/fleet-reports/pkg/store/duckdb"
	duckdbfleet "github.com/therma-tools/fleet-reports/pkg/store/duckdb/fleet"
	duckdbjobs "github.com/therma-tools/fleet-reports/pkg/store/duckdb/jobs"
	duckdbreadings "github.com/therma-tools/fleet-reports/pkg/store/duckdb/readings"
	"github.com/therma-tools/fleet-reports/pkg/store/duckdb/seed"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the ThermaCore fleet reports server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "config/fleet-reports.yaml",
		"Path to the service configuration file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file loaded: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	catalog, err := reportsvc.LoadCatalog(cfg.Reports.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load report catalog: %w", err)
	}
	users, err := auth.LoadUsers(cfg.Auth.UsersPath)
	if err != nil {
		return fmt.Errorf("failed to load user directory: %w", err)
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.Storage.DBPath})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}

	fleetStore, err := duckdbfleet.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create fleet store: %w", err)
	}
	readingStore, err := duckdbreadings.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create readings store: %w", err)
	}
	jobStore, err := duckdbjobs.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create jobs store: %w", err)
	}

	if err := seed.Demo(ctx, fleetStore, readingStore); err != nil {
		return fmt.Errorf("failed to seed demo fleet: %w", err)
	}

	explorer := fleetsvc.NewExplorer(fleetStore)
	gen := generator.NewGenerator(explorer, readingStore, fleetStore)
	jobsCtrl := jobs.NewController(db, jobStore, gen, cfg.Reports.OutputDir)
	if err := jobsCtrl.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize jobs controller: %w", err)
	}

	logger.Info().Msgf("Catalog loaded from `%s` with %d report types.",
		cfg.Reports.CatalogPath, len(catalog.Types))

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	api := server.NewWebAPI(logger, server.Config{
		Addr: addr,
		Dependencies: server.Dependencies{
			Fleet:    explorer,
			Sessions: reportsvc.NewSessionRegistry(catalog, cfg.Reports.SessionTTL),
			Jobs:     jobsCtrl,
			Users:    users,
			Tokens:   auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		},
	})

	return api.Start()
}
