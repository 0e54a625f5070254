package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"

	"github.com/Overland-East-Bay/trip-booking-api/internal/app/apperr"
	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/logging"
)

const (
	codeBadRequest          = "BAD_REQUEST"
	codeIdempotencyKeyReuse = "IDEMPOTENCY_KEY_REUSE"
	codeRateLimited         = "RATE_LIMITED"
	codeInternal            = "INTERNAL"
)

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er ErrorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(map[string]any(details))
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestId = nullable.NewNullableWithValue(rid)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(er)
}

// writeAppError maps an app-layer error to its HTTP status by Kind.
// Store failures never leak their cause to the caller; it is logged instead.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context(), s.Logger)

	ae, ok := apperr.As(err)
	if !ok {
		logger.ErrorContext(r.Context(), "unhandled error", slog.Any("err", err))
		writeError(w, r, http.StatusInternalServerError, codeInternal, "internal error", nil)
		return
	}

	switch ae.Kind {
	case apperr.KindNotFound:
		writeError(w, r, http.StatusNotFound, ae.Code, ae.Message, ae.Details)
	case apperr.KindConflict:
		writeError(w, r, http.StatusConflict, ae.Code, ae.Message, ae.Details)
	case apperr.KindValidation:
		writeError(w, r, http.StatusUnprocessableEntity, ae.Code, ae.Message, ae.Details)
	default:
		logger.ErrorContext(r.Context(), "store failure", slog.Any("err", err))
		writeError(w, r, http.StatusInternalServerError, ae.Code, "internal error", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
