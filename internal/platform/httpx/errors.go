package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ledgerdesk/ledgerdesk/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Internal failures are logged with detail and surfaced with a generic
// message only.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case shared.IsValidation(err):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials), errors.Is(err, shared.ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		if logger != nil {
			logger.Error("internal error", slog.Any("error", err))
		}
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
