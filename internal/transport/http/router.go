// Package httptransport is the thin HTTP layer over the registry. Handlers
// delegate to domain services without embedding business logic so transport
// concerns remain isolated.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	jwttoken "landledger/internal/jwt_token"
	"landledger/internal/platform/metrics"
	"landledger/internal/platform/middleware"
	redisplatform "landledger/internal/platform/redis"
	"landledger/internal/registry"
)

// Handler bundles the registry facade with the transport collaborators.
type Handler struct {
	registry *registry.Registry
	jwt      *jwttoken.JWTService
	redis    *redisplatform.Client
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewHandler(
	reg *registry.Registry,
	jwtService *jwttoken.JWTService,
	redisClient *redisplatform.Client,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		registry: reg,
		jwt:      jwtService,
		redis:    redisClient,
		metrics:  m,
		logger:   logger,
	}
}

// NewRouter wires all public endpoints. Everything except the token mint,
// health, and metrics endpoints requires a bearer token.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Post("/auth/token", h.handleMintToken)
	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwt, h.logger))

		r.Post("/users/register", h.handleRegisterUser)
		r.Post("/agents", h.handleRegisterAgent)
		r.Post("/agents/{address}/verify", h.handleVerifyAgent)
		r.Get("/agents", h.handleListAgents)
		r.Get("/agents/{address}", h.handleGetAgent)

		r.Post("/fees", h.handleSetFees)
		r.Get("/fees", h.handleGetFees)
		r.Get("/fees/breakdown", h.handleFeeBreakdown)

		r.Post("/properties", h.handleRegisterProperty)
		r.Get("/properties", h.handleOwnerProperties)
		r.Get("/properties/approved", h.handleApprovedProperties)
		r.Get("/properties/{id}", h.handleGetProperty)
		r.Post("/properties/{id}/view", h.handleViewProperty)
		r.Get("/properties/{id}/summary", h.handleVerificationSummary)
		r.Get("/properties/{id}/viewers", h.handleViewers)
		r.Post("/properties/{id}/survey", h.handleSubmitSurvey)
		r.Post("/properties/{id}/verify", h.handleVerifyProperty)

		r.Post("/properties/{id}/token", h.handleMintPropertyToken)
		r.Get("/properties/{id}/token", h.handleTokenHolder)

		r.Post("/properties/{id}/list-for-sale", h.handleListForSale)
		r.Post("/properties/{id}/list-for-rent", h.handleListForRent)
		r.Post("/properties/{id}/purchase", h.handlePurchase)
		r.Post("/properties/{id}/rent", h.handleRent)
		r.Post("/properties/{id}/end-rental", h.handleEndRental)
	})

	return r
}
