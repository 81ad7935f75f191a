package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"landledger/internal/platform/middleware"
	"landledger/pkg/domain"
	dErrors "landledger/pkg/domain-errors"
)

type listForSaleRequest struct {
	Price uint64 `json:"price"`
}

func (h *Handler) handleListForSale(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req listForSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	caller := middleware.GetCaller(r.Context())
	if err := h.registry.Market.ListForSale(r.Context(), caller, id, domain.Amount(req.Price)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type listForRentRequest struct {
	Price           uint64 `json:"price"`
	DurationSeconds int64  `json:"duration_seconds"`
}

func (h *Handler) handleListForRent(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req listForRentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	caller := middleware.GetCaller(r.Context())
	duration := time.Duration(req.DurationSeconds) * time.Second
	if err := h.registry.Market.ListForRent(r.Context(), caller, id, domain.Amount(req.Price), duration); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type paymentRequest struct {
	Payment uint64 `json:"payment"`
}

func (h *Handler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	caller := middleware.GetCaller(r.Context())
	if err := h.registry.Market.Purchase(r.Context(), caller, id, domain.Amount(req.Payment)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRent(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	caller := middleware.GetCaller(r.Context())
	if err := h.registry.Market.Rent(r.Context(), caller, id, domain.Amount(req.Payment)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleEndRental(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	caller := middleware.GetCaller(r.Context())
	if err := h.registry.Market.EndRental(r.Context(), caller, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
