package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"garment-rental-backend/internal/domain"
	"garment-rental-backend/internal/logger"
	"garment-rental-backend/internal/security"
	"garment-rental-backend/internal/service"
)

// conflictRetryAfter is the Retry-After hint, in seconds, sent with CONFLICT.
const conflictRetryAfter = "1"

type APIError struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("failed to encode response", "error", err)
	}
}

func respondOK(w http.ResponseWriter, payload any) {
	respondJSON(w, http.StatusOK, payload)
}

func respondAPIError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorEnvelope{Error: APIError{Message: message, Code: code}})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindDuplicateKey, domain.KindItemUnavailable, domain.KindInvalidTransition, domain.KindConflict:
		return http.StatusConflict
	case domain.KindInvalidIdentity, domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error envelope for err. Internal errors are logged
// and their message is not exposed.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		respondAPIError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
		return
	case errors.Is(err, security.ErrInvalidToken), errors.Is(err, security.ErrExpiredToken), errors.Is(err, security.ErrWrongTokenType):
		respondAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}

	kind := domain.KindOf(err)
	status := statusFor(kind)
	body := APIError{Code: string(kind), Message: err.Error()}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	if kind == domain.KindConflict {
		w.Header().Set("Retry-After", conflictRetryAfter)
	}
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		body.Message = "internal error"
	}

	respondJSON(w, status, ErrorEnvelope{Error: body})
}

// decodeJSON decodes the request body into dst. Unknown fields are rejected.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.NewValidationError("body", err.Error())
	}
	return nil
}
