package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"landledger/pkg/domain"
	dErrors "landledger/pkg/domain-errors"
)

const accessTokenTTL = time.Hour

type mintTokenRequest struct {
	Address string `json:"address"`
}

// handleMintToken issues a development access token binding the given caller
// address. Production deployments front this with a real identity provider.
func (h *Handler) handleMintToken(w http.ResponseWriter, r *http.Request) {
	var req mintTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	addr := domain.Address(req.Address)
	if addr.IsZero() {
		writeError(w, dErrors.New(dErrors.CodeValidation, "address is required"))
		return
	}

	token, err := h.jwt.GenerateAccessToken(addr, accessTokenTTL)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to sign access token", "error", err)
		writeError(w, dErrors.New(dErrors.CodeInternal, "failed to sign token"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "Bearer",
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	components := map[string]string{"registry": "ok"}
	status := http.StatusOK

	if h.redis != nil {
		if err := h.redis.Health(r.Context()); err != nil {
			components["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			components["redis"] = "ok"
		}
	}

	writeJSON(w, status, components)
}
