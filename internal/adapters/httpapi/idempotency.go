package httpapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/logging"
	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/idempotency"
)

const headerIdempotencyKey = "Idempotency-Key"

// idemGate remembers where a successful response should be recorded.
// A nil *idemGate means the request carried no key and is not tracked.
type idemGate struct {
	store  idempotency.Store
	respFP idempotency.Fingerprint
	logger *slog.Logger
}

// beginIdempotent applies the Idempotency-Key protocol:
//   - the first request with a key pins its body hash under the key+route
//   - a retry with the same hash replays the stored success, if any
//   - a retry with a different hash is rejected with 409
//
// When handled is true the response has already been written.
func (s *Server) beginIdempotent(w http.ResponseWriter, r *http.Request, route, bodyHash string) (gate *idemGate, handled bool) {
	key := strings.TrimSpace(r.Header.Get(headerIdempotencyKey))
	if s.Idem == nil || key == "" {
		return nil, false
	}
	ctx := r.Context()
	logger := logging.FromContext(ctx, s.Logger)

	metaFP := idempotency.Fingerprint{
		Key:      idempotency.Key(key),
		Method:   r.Method,
		Route:    route,
		BodyHash: "",
	}
	if meta, ok, err := s.Idem.Get(ctx, metaFP); err != nil {
		logger.ErrorContext(ctx, "idempotency lookup failed", slog.Any("err", err))
		writeError(w, r, http.StatusInternalServerError, codeInternal, "internal error", nil)
		return nil, true
	} else if ok {
		if string(meta.Body) != bodyHash {
			writeError(w, r, http.StatusConflict, codeIdempotencyKeyReuse, "idempotency key reuse with different payload", nil)
			return nil, true
		}
	} else {
		if err := s.Idem.Put(ctx, metaFP, idempotency.Record{
			StatusCode:  0,
			ContentType: "text/plain",
			Body:        []byte(bodyHash),
			CreatedAt:   time.Now().UTC(),
		}); err != nil {
			logger.WarnContext(ctx, "idempotency metadata record failed", slog.Any("err", err))
		}
	}

	respFP := metaFP
	respFP.BodyHash = bodyHash
	if rec, ok, err := s.Idem.Get(ctx, respFP); err != nil {
		logger.ErrorContext(ctx, "idempotency lookup failed", slog.Any("err", err))
		writeError(w, r, http.StatusInternalServerError, codeInternal, "internal error", nil)
		return nil, true
	} else if ok && rec.StatusCode >= 200 && rec.StatusCode < 300 {
		logger.DebugContext(ctx, "idempotent replay", slog.String("route", route))
		replay(w, rec)
		return nil, true
	}

	return &idemGate{store: s.Idem, respFP: respFP, logger: logger}, false
}

// save records a successful response for replay. Failures are logged only:
// the request itself already succeeded.
func (g *idemGate) save(ctx context.Context, status int, contentType string, body []byte) {
	if g == nil {
		return
	}
	err := g.store.Put(ctx, g.respFP, idempotency.Record{
		StatusCode:  status,
		ContentType: contentType,
		Body:        body,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		g.logger.WarnContext(ctx, "idempotency record failed", slog.Any("err", err))
	}
}

func replay(w http.ResponseWriter, rec idempotency.Record) {
	if rec.ContentType == "application/json" && len(rec.Body) > 0 {
		var created CreateClientResponse
		if err := json.Unmarshal(rec.Body, &created); err == nil && created.ClientId > 0 {
			w.Header().Set("Location", clientLocation(created.ClientId))
		}
	}
	if rec.ContentType != "" && len(rec.Body) > 0 {
		w.Header().Set("Content-Type", rec.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(rec.StatusCode)
	if len(rec.Body) > 0 {
		_, _ = w.Write(rec.Body)
	}
}

func hashJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
