package auth

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/therma-tools/fleet-reports/pkg/auth"
)

type Handler struct {
	users  *auth.UserDirectory
	tokens *auth.TokenService
}

func NewHandler(users *auth.UserDirectory, tokens *auth.TokenService) *Handler {
	return &Handler{users: users, tokens: tokens}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	role, err := h.users.Authenticate(req.Username, req.Password)
	if err != nil {
		logger.Warn().Str("user", req.Username).Msg("login rejected")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := h.tokens.Generate(req.Username, role)
	if err != nil {
		logger.Error().Err(err).Msg("failed to sign token")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"token": token, "role": role}); err != nil {
		logger.Error().Err(err).Msg("failed to encode login response")
	}
}
