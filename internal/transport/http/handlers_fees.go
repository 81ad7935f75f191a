package httptransport

import (
	"encoding/json"
	"net/http"
	"strconv"

	"landledger/internal/fees"
	"landledger/internal/platform/middleware"
	"landledger/pkg/domain"
	dErrors "landledger/pkg/domain-errors"
)

type feeConfigPayload struct {
	AgencyBp     uint64 `json:"agency_bp"`
	GovernmentBp uint64 `json:"government_bp"`
	FlatFee      uint64 `json:"flat_fee"`
	AgentBp      uint64 `json:"agent_bp"`
	Enabled      bool   `json:"enabled"`
}

func (h *Handler) handleSetFees(w http.ResponseWriter, r *http.Request) {
	var req feeConfigPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	caller := middleware.GetCaller(r.Context())
	err := h.registry.Fees.SetFees(r.Context(), caller, fees.Config{
		AgencyBp:     domain.BasisPoints(req.AgencyBp),
		GovernmentBp: domain.BasisPoints(req.GovernmentBp),
		FlatFee:      domain.Amount(req.FlatFee),
		AgentBp:      domain.BasisPoints(req.AgentBp),
		Enabled:      req.Enabled,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetFees(w http.ResponseWriter, r *http.Request) {
	config, err := h.registry.Fees.GetConfig(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feeConfigPayload{
		AgencyBp:     uint64(config.AgencyBp),
		GovernmentBp: uint64(config.GovernmentBp),
		FlatFee:      uint64(config.FlatFee),
		AgentBp:      uint64(config.AgentBp),
		Enabled:      config.Enabled,
	})
}

// handleFeeBreakdown previews the fee split for a hypothetical amount.
func (h *Handler) handleFeeBreakdown(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseUint(r.URL.Query().Get("amount"), 10, 64)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "amount must be a non-negative integer"))
		return
	}

	breakdown, err := h.registry.Fees.GetBreakdown(r.Context(), domain.Amount(amount))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{
		"agency_cut":       uint64(breakdown.AgencyCut),
		"government_cut":   uint64(breakdown.GovernmentCut),
		"agent_commission": uint64(breakdown.AgentCommission),
		"flat_fee":         uint64(breakdown.FlatFee),
	})
}
