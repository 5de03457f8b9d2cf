package http

import (
	"errors"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/10Sirus/orders-api-test/internal/domain"
)

const (
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeInvalidID           = "invalid_id"
	codeInvalidCursor       = "invalid_cursor"
	codeInvalidLimit        = "invalid_limit"
	codeInvalidVersion      = "invalid_if_match"
	codeTenantRequired      = "tenant_id_required"
	codeIdempotencyRequired = "idempotency_key_required"
	codeIdempotencyConflict = "idempotency_conflict"
	codeOrderNotFound       = "order_not_found"
	codeStaleVersion        = "stale_version"
	codeOrderNotConfirmed   = "order_not_confirmed"
	codeForbidden           = "forbidden"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeServiceError maps domain errors onto transport statuses. Anything
// outside the taxonomy is an opaque 500; the cause is logged, never leaked.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrTenantRequired):
		writeError(w, http.StatusBadRequest, codeTenantRequired, err.Error())
	case errors.Is(err, domain.ErrIdempotencyKeyRequired):
		writeError(w, http.StatusBadRequest, codeIdempotencyRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidVersion):
		writeError(w, http.StatusBadRequest, codeInvalidVersion, err.Error())
	case errors.Is(err, domain.ErrInvalidCursor):
		writeError(w, http.StatusBadRequest, codeInvalidCursor, domain.ErrInvalidCursor.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case errors.Is(err, domain.ErrIdempotencyConflict):
		writeError(w, http.StatusConflict, codeIdempotencyConflict, err.Error())
	case errors.Is(err, domain.ErrStaleVersion):
		writeError(w, http.StatusConflict, codeStaleVersion, err.Error())
	case errors.Is(err, domain.ErrOrderNotConfirmed):
		writeError(w, http.StatusPreconditionFailed, codeOrderNotConfirmed, err.Error())
	default:
		if logger != nil {
			logger.ErrorContext(r.Context(), "request failed", slog.String("error", err.Error()))
		}
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
