package httptransport

import (
	"encoding/json"
	"net/http"

	dErrors "landledger/pkg/domain-errors"
)

// toHTTPStatus maps domain error codes to HTTP statuses.
func toHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeUnauthorized:
		return http.StatusForbidden
	case dErrors.CodeValidation, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeInvalidState:
		return http.StatusConflict
	case dErrors.CodePayment:
		return http.StatusPaymentRequired
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError centralizes domain error translation to HTTP responses so every
// handler returns the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(toHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":  string(code),
		"reason": err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
