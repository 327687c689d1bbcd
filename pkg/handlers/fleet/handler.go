package fleet

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/therma-tools/fleet-reports/pkg/adapters"
	"github.com/therma-tools/fleet-reports/pkg/models/api"
	"github.com/therma-tools/fleet-reports/pkg/services/fleet"
)

type Handler struct {
	explorer fleet.Explorer
}

func NewHandler(explorer fleet.Explorer) *Handler {
	return &Handler{explorer: explorer}
}

func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	units, err := h.explorer.ListUnits(ctx)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	response := make([]api.Unit, 0, len(units))
	for _, u := range units {
		response = append(response, adapters.MapUnitDomainToApi(u))
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clients, err := h.explorer.ListClients(ctx)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	response := make([]api.Client, 0, len(clients))
	for _, c := range clients {
		response = append(response, adapters.MapClientDomainToApi(c))
	}
	writeJSON(w, r, http.StatusOK, response)
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
