package report

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/therma-tools/fleet-reports/pkg/adapters"
	"github.com/therma-tools/fleet-reports/pkg/auth"
	"github.com/therma-tools/fleet-reports/pkg/models/api"
	"github.com/therma-tools/fleet-reports/pkg/models/domain"
	"github.com/therma-tools/fleet-reports/pkg/services/jobs"
	reportsvc "github.com/therma-tools/fleet-reports/pkg/services/report"
)

var (
	errJobNotFound     = errors.New("report job not found")
	errReportNotReady  = errors.New("report is not ready")
	errUnknownFormat   = errors.New("unknown download format, want csv or xlsx")
	errArtifactMissing = errors.New("report artifact is no longer on disk")
)

// Handler serves the report builder: one session per in-progress config,
// every dashboard interaction a POST that returns the reconciled state.
type Handler struct {
	sessions *reportsvc.SessionRegistry
	jobs     jobs.Controller
}

func NewHandler(sessions *reportsvc.SessionRegistry, jobs jobs.Controller) *Handler {
	return &Handler{sessions: sessions, jobs: jobs}
}

func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	session, err := h.sessions.Open(principal.User, principal.Role)
	if err != nil {
		writeError(w, r, http.StatusForbidden, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, adapters.MapSessionToApi(session))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	session, err := h.sessions.View(chi.URLParam(r, "session"), principal.User)
	if err != nil {
		writeError(w, r, http.StatusNotFound, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapSessionToApi(session))
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	if err := h.sessions.Close(chi.URLParam(r, "session"), principal.User); err != nil {
		writeError(w, r, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SelectReportType(w http.ResponseWriter, r *http.Request) {
	typeID := chi.URLParam(r, "typeID")
	h.update(w, r, func(rec *reportsvc.Reconciler, cfg domain.ReportConfig) domain.ReportConfig {
		return rec.SelectReportType(cfg, typeID)
	})
}

func (h *Handler) ToggleSection(w http.ResponseWriter, r *http.Request) {
	var req api.ToggleSectionRequest
	if !decode(w, r, &req) {
		return
	}
	key := domain.SectionKey(chi.URLParam(r, "section"))
	h.update(w, r, func(rec *reportsvc.Reconciler, cfg domain.ReportConfig) domain.ReportConfig {
		return rec.ToggleSection(cfg, key, req.Enabled)
	})
}

func (h *Handler) SelectAllSections(w http.ResponseWriter, r *http.Request) {
	var req api.ToggleSectionRequest
	if !decode(w, r, &req) {
		return
	}
	h.update(w, r, func(rec *reportsvc.Reconciler, cfg domain.ReportConfig) domain.ReportConfig {
		return rec.SelectAllSections(cfg, req.Enabled)
	})
}

func (h *Handler) SetScope(w http.ResponseWriter, r *http.Request) {
	var req api.SetScopeRequest
	if !decode(w, r, &req) {
		return
	}
	h.update(w, r, func(rec *reportsvc.Reconciler, cfg domain.ReportConfig) domain.ReportConfig {
		return rec.SetScope(cfg, domain.Scope(req.Scope))
	})
}

func (h *Handler) SetDates(w http.ResponseWriter, r *http.Request) {
	var req api.SetDatesRequest
	if !decode(w, r, &req) {
		return
	}
	var dates domain.DateRange
	if req.Start != nil {
		start, err := adapters.ParseDate(*req.Start)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		dates.Start = &start
	}
	if req.End != nil {
		end, err := adapters.ParseDate(*req.End)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		dates.End = &end
	}
	h.update(w, r, func(rec *reportsvc.Reconciler, cfg domain.ReportConfig) domain.ReportConfig {
		return rec.SetDates(cfg, dates)
	})
}

func (h *Handler) SelectUnit(w http.ResponseWriter, r *http.Request) {
	var req api.SelectRequest
	if !decode(w, r, &req) {
		return
	}
	unitID := chi.URLParam(r, "unit")
	h.update(w, r, func(rec *reportsvc.Reconciler, cfg domain.ReportConfig) domain.ReportConfig {
		return rec.SelectUnit(cfg, unitID, req.Checked)
	})
}

func (h *Handler) SelectClient(w http.ResponseWriter, r *http.Request) {
	var req api.SelectRequest
	if !decode(w, r, &req) {
		return
	}
	clientID := chi.URLParam(r, "client")
	h.update(w, r, func(rec *reportsvc.Reconciler, cfg domain.ReportConfig) domain.ReportConfig {
		return rec.SelectClient(cfg, clientID, req.Checked)
	})
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	// Submit spends the session, so a second concurrent request 404s
	// instead of enqueueing a duplicate job.
	session, err := h.sessions.Submit(chi.URLParam(r, "session"), principal.User)
	if errors.Is(err, reportsvc.ErrIncompleteConfig) {
		writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	if err != nil {
		writeError(w, r, http.StatusNotFound, err)
		return
	}
	job, err := h.jobs.Generate(r.Context(), principal.User, session.Config)
	if err != nil {
		h.sessions.Restore(session)
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, adapters.MapJobDomainToApi(job))
}

func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req api.ScheduleRequest
	if !decode(w, r, &req) {
		return
	}
	principal, _ := auth.PrincipalFromContext(r.Context())

	session, err := h.sessions.Submit(chi.URLParam(r, "session"), principal.User)
	if errors.Is(err, reportsvc.ErrIncompleteConfig) {
		writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	if err != nil {
		writeError(w, r, http.StatusNotFound, err)
		return
	}

	job, err := h.jobs.Schedule(r.Context(), principal.User, session.Config, req.RunAt)
	if err != nil {
		// A rejected run time should not cost the caller the session.
		h.sessions.Restore(session)
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, adapters.MapJobDomainToApi(job))
}

func (h *Handler) JobStatus(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	job, err := h.jobs.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil || job.Owner != principal.User {
		writeError(w, r, http.StatusNotFound, errJobNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapJobDomainToApi(job))
}

func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")
	job, err := h.jobs.Status(r.Context(), id)
	if err != nil || job.Owner != principal.User {
		writeError(w, r, http.StatusNotFound, errJobNotFound)
		return
	}
	if err := h.jobs.Cancel(r.Context(), id); err != nil {
		writeError(w, r, http.StatusConflict, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	job, err := h.jobs.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil || job.Owner != principal.User {
		writeError(w, r, http.StatusNotFound, errJobNotFound)
		return
	}
	if job.Status != domain.JobStatusDone {
		writeError(w, r, http.StatusConflict, errReportNotReady)
		return
	}

	var path, contentType string
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		path, contentType = job.CSVPath, "text/csv"
	case "xlsx":
		path, contentType = job.XLSXPath,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		writeError(w, r, http.StatusBadRequest, errUnknownFormat)
		return
	}
	if _, err := os.Stat(path); err != nil {
		writeError(w, r, http.StatusNotFound, errArtifactMissing)
		return
	}
	w.Header().Set("Content-Type", contentType)
	http.ServeFile(w, r, path)
}

func (h *Handler) update(
	w http.ResponseWriter,
	r *http.Request,
	fn func(*reportsvc.Reconciler, domain.ReportConfig) domain.ReportConfig,
) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	session, err := h.sessions.Update(chi.URLParam(r, "session"), principal.User, fn)
	if err != nil {
		writeError(w, r, http.StatusNotFound, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapSessionToApi(session))
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, r, status, api.Error{Error: err.Error()})
}
