package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"landledger/internal/platform/middleware"
	"landledger/pkg/domain"
	dErrors "landledger/pkg/domain-errors"
)

// handleRegisterUser sets the caller's registered-user flag.
func (h *Handler) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())
	if err := h.registry.Access.RegisterUser(r.Context(), caller); err != nil {
		writeError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.UsersRegistered.Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}

type registerAgentRequest struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

func (h *Handler) handleRegisterAgent(w http.ResponseWriter, r *http.Request) {
	var req registerAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	caller := middleware.GetCaller(r.Context())
	err := h.registry.Access.RegisterAgent(r.Context(), caller, domain.Address(req.Address), req.Name, req.Contact)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

type verifyRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleVerifyAgent(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	caller := middleware.GetCaller(r.Context())
	agentAddr := domain.Address(chi.URLParam(r, "address"))
	err := h.registry.Access.VerifyAgent(r.Context(), caller, agentAddr, domain.VerificationStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type agentResponse struct {
	Address      string    `json:"address"`
	Name         string    `json:"name"`
	Contact      string    `json:"contact"`
	Active       bool      `json:"active"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registered_at"`
}

func (h *Handler) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	agent, err := h.registry.Access.GetAgent(r.Context(), domain.Address(chi.URLParam(r, "address")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agentResponse{
		Address:      agent.Address.String(),
		Name:         agent.Name,
		Contact:      agent.Contact,
		Active:       agent.Active,
		Status:       agent.Status.String(),
		RegisteredAt: agent.RegisteredAt,
	})
}

func (h *Handler) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.registry.Access.ListAgents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]agentResponse, 0, len(agents))
	for _, agent := range agents {
		out = append(out, agentResponse{
			Address:      agent.Address.String(),
			Name:         agent.Name,
			Contact:      agent.Contact,
			Active:       agent.Active,
			Status:       agent.Status.String(),
			RegisteredAt: agent.RegisteredAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
