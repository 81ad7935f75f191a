package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"landledger/pkg/domain"
)

// TokenValidator validates a bearer token and returns the caller address it
// binds.
type TokenValidator interface {
	ExtractAddress(tokenString string) (domain.Address, error)
}

type contextKeyCaller struct{}

// ContextKeyCaller is exported for use in handlers
var ContextKeyCaller = contextKeyCaller{}

// GetCaller retrieves the authenticated caller address from the context.
func GetCaller(ctx context.Context) domain.Address {
	caller, ok := ctx.Value(ContextKeyCaller).(domain.Address)
	if !ok {
		return domain.ZeroAddress
	}
	return caller
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller address in the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(r.Context(), "unauthorized access - missing token")
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			caller, err := validator.ExtractAddress(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token", "error", err)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyCaller, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
