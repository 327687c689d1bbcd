package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/therma-tools/fleet-reports/pkg/auth"
	authhandler "github.com/therma-tools/fleet-reports/pkg/handlers/auth"
	fleethandler "github.com/therma-tools/fleet-reports/pkg/handlers/fleet"
	reporthandler "github.com/therma-tools/fleet-reports/pkg/handlers/report"
	fleetreportsmiddleware "github.com/therma-tools/fleet-reports/pkg/server/middleware"
	"github.com/therma-tools/fleet-reports/pkg/services/fleet"
	"github.com/therma-tools/fleet-reports/pkg/services/jobs"
	reportsvc "github.com/therma-tools/fleet-reports/pkg/services/report"
)

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
}

type Dependencies struct {
	Fleet    fleet.Explorer
	Sessions *reportsvc.SessionRegistry
	Jobs     jobs.Controller
	Users    *auth.UserDirectory
	Tokens   *auth.TokenService
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	deps := config.Dependencies
	loginHandler := authhandler.NewHandler(deps.Users, deps.Tokens)
	fleetHandler := fleethandler.NewHandler(deps.Fleet)
	reportHandler := reporthandler.NewHandler(deps.Sessions, deps.Jobs)

	router := chi.NewRouter()

	router.Use(fleetreportsmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Post("/api/v1/auth/login", loginHandler.Login)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.Tokens.Middleware)

		r.Get("/units", fleetHandler.ListUnits)
		r.Get("/clients", fleetHandler.ListClients)

		r.Route("/reports", func(r chi.Router) {
			r.Post("/builder", reportHandler.OpenSession)
			r.Route("/builder/{session}", func(r chi.Router) {
				r.Get("/", reportHandler.GetSession)
				r.Delete("/", reportHandler.CloseSession)
				r.Post("/report-types/{typeID}", reportHandler.SelectReportType)
				r.Post("/sections/{section}", reportHandler.ToggleSection)
				r.Post("/sections", reportHandler.SelectAllSections)
				r.Post("/scope", reportHandler.SetScope)
				r.Post("/dates", reportHandler.SetDates)
				r.Post("/units/{unit}", reportHandler.SelectUnit)
				r.Post("/clients/{client}", reportHandler.SelectClient)
				r.Post("/generate", reportHandler.Generate)
				r.Post("/schedule", reportHandler.Schedule)
			})
			r.Get("/{id}/status", reportHandler.JobStatus)
			r.Get("/{id}/download", reportHandler.Download)
			r.Delete("/{id}", reportHandler.CancelJob)
		})
	})

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
	}
}

// Router exposes the configured mux, mainly for tests.
func (w *WebAPI) Router() *chi.Mux {
	return w.router
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
