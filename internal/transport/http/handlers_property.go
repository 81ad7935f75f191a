package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"landledger/internal/platform/middleware"
	"landledger/internal/property"
	"landledger/pkg/domain"
	dErrors "landledger/pkg/domain-errors"
)

func propertyID(r *http.Request) (domain.PropertyID, error) {
	id, err := domain.ParsePropertyID(chi.URLParam(r, "id"))
	if err != nil {
		return 0, dErrors.New(dErrors.CodeValidation, "invalid property id")
	}
	return id, nil
}

type registerPropertyRequest struct {
	Title        string `json:"title"`
	Location     string `json:"location"`
	Category     string `json:"category"`
	Size         uint64 `json:"size"`
	Bedrooms     uint32 `json:"bedrooms"`
	Bathrooms    uint32 `json:"bathrooms"`
	Features     string `json:"features"`
	Description  string `json:"description"`
	DocumentHash string `json:"document_hash"`
}

func (h *Handler) handleRegisterProperty(w http.ResponseWriter, r *http.Request) {
	var req registerPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	caller := middleware.GetCaller(r.Context())
	id, err := h.registry.Property.Register(r.Context(), caller, property.RegisterInput{
		Title:        req.Title,
		Location:     req.Location,
		Category:     req.Category,
		Size:         req.Size,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		Features:     req.Features,
		Description:  req.Description,
		DocumentHash: req.DocumentHash,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.PropertiesRegistered.Inc()
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

type surveyRequest struct {
	Hash string `json:"hash"`
}

func (h *Handler) handleSubmitSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req surveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	caller := middleware.GetCaller(r.Context())
	if err := h.registry.Property.SubmitSurveyReport(r.Context(), caller, id, req.Hash); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleVerifyProperty(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	caller := middleware.GetCaller(r.Context())
	err = h.registry.Property.Verify(r.Context(), caller, id, domain.VerificationStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type propertyResponse struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Location     string          `json:"location"`
	Category     string          `json:"category"`
	Size         uint64          `json:"size"`
	Bedrooms     uint32          `json:"bedrooms"`
	Bathrooms    uint32          `json:"bathrooms"`
	Features     string          `json:"features"`
	Description  string          `json:"description"`
	DocumentHash string          `json:"document_hash"`
	SurveyHash   string          `json:"survey_hash,omitempty"`
	Verification string          `json:"verification"`
	Tokenized    bool            `json:"tokenized"`
	ForSale      bool            `json:"for_sale"`
	ForRent      bool            `json:"for_rent"`
	SalePrice    uint64          `json:"sale_price"`
	RentPrice    uint64          `json:"rent_price"`
	Owner        string          `json:"owner"`
	Verifier     string          `json:"verifier,omitempty"`
	RegisteredAt time.Time       `json:"registered_at"`
	VerifiedAt   *time.Time      `json:"verified_at,omitempty"`
	MintedAt     *time.Time      `json:"minted_at,omitempty"`
	Rental       *rentalResponse `json:"rental,omitempty"`
}

type rentalResponse struct {
	Tenant          string    `json:"tenant"`
	StartTime       time.Time `json:"start_time"`
	DurationSeconds int64     `json:"duration_seconds"`
	Active          bool      `json:"active"`
}

func toPropertyResponse(record property.Property) propertyResponse {
	resp := propertyResponse{
		ID:           record.ID.String(),
		Title:        record.Info.Title,
		Location:     record.Info.Location,
		Category:     record.Info.Category,
		Size:         record.Info.Size,
		Bedrooms:     record.Info.Bedrooms,
		Bathrooms:    record.Info.Bathrooms,
		Features:     record.Info.Features,
		Description:  record.Info.Description,
		DocumentHash: record.Info.DocumentHash,
		SurveyHash:   record.Info.SurveyHash,
		Verification: record.Status.Verification.String(),
		Tokenized:    record.Status.Tokenized,
		ForSale:      record.Status.ForSale,
		ForRent:      record.Status.ForRent,
		SalePrice:    uint64(record.Status.SalePrice),
		RentPrice:    uint64(record.Status.RentPrice),
		Owner:        record.Status.Owner.String(),
		Verifier:     record.Status.Verifier.String(),
		RegisteredAt: record.Timestamps.RegisteredAt,
	}
	if !record.Timestamps.VerifiedAt.IsZero() {
		verifiedAt := record.Timestamps.VerifiedAt
		resp.VerifiedAt = &verifiedAt
	}
	if !record.Timestamps.MintedAt.IsZero() {
		mintedAt := record.Timestamps.MintedAt
		resp.MintedAt = &mintedAt
	}
	if !record.Rental.Tenant.IsZero() || record.Rental.Duration > 0 {
		resp.Rental = &rentalResponse{
			Tenant:          record.Rental.Tenant.String(),
			StartTime:       record.Rental.StartTime,
			DurationSeconds: int64(record.Rental.Duration / time.Second),
			Active:          record.Rental.Active,
		}
	}
	return resp
}

func (h *Handler) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	record, err := h.registry.Property.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyResponse(record))
}

// handleViewProperty returns the record and appends the caller to the viewers
// log.
func (h *Handler) handleViewProperty(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	caller := middleware.GetCaller(r.Context())
	record, err := h.registry.Property.View(r.Context(), caller, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyResponse(record))
}

func (h *Handler) handleOwnerProperties(w http.ResponseWriter, r *http.Request) {
	owner := domain.Address(r.URL.Query().Get("owner"))
	if owner.IsZero() {
		owner = middleware.GetCaller(r.Context())
	}
	ids, err := h.registry.Property.OwnerProperties(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]domain.PropertyID{"ids": ids})
}

func (h *Handler) handleApprovedProperties(w http.ResponseWriter, r *http.Request) {
	ids, err := h.registry.Property.ApprovedProperties(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]domain.PropertyID{"ids": ids})
}

func (h *Handler) handleVerificationSummary(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	summary, err := h.registry.Property.Summary(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"approved":    summary.Approved,
		"status":      summary.Status.String(),
		"verifier":    summary.Verifier.String(),
		"survey_hash": summary.SurveyHash,
	})
}

func (h *Handler) handleViewers(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	viewers, err := h.registry.Property.Viewers(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]domain.Address{"viewers": viewers})
}

func (h *Handler) handleMintPropertyToken(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	caller := middleware.GetCaller(r.Context())
	if err := h.registry.Token.Mint(r.Context(), caller, id); err != nil {
		writeError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.TokensMinted.Inc()
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleTokenHolder(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	holder, err := h.registry.Token.HolderOf(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"holder": holder.String()})
}
