// Package respond writes JSON bodies and maps domain errors to status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/builder"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Status returns the HTTP status for err.
func Status(err error) int {
	var (
		authErr    *auth.ValidationError
		draftErr   *builder.ValidationError
		invoiceErr *invoice.ValidationError
	)

	switch {
	case errors.As(err, &authErr), errors.As(err, &draftErr), errors.As(err, &invoiceErr):
		return http.StatusBadRequest
	case errors.Is(err, invoice.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, invoice.ErrNotFound), errors.Is(err, builder.ErrDraftNotFound):
		return http.StatusNotFound
	case errors.Is(err, invoice.ErrDuplicateNumber), errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as plain text. Unexpected errors are logged.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	http.Error(w, err.Error(), status)
}
