package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestFromContext_Fallback(t *testing.T) {
	fallback := Discard()
	require.Same(t, fallback, FromContext(context.Background(), fallback))

	attached := Discard()
	ctx := WithContext(context.Background(), attached)
	require.Same(t, attached, FromContext(ctx, fallback))
}

func TestHTTPMiddleware_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Service: "booking", Format: "json"})

	h := middleware.RequestID(HTTPMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context(), nil).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trips", nil))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &entry))
	require.Equal(t, "http_request", entry["msg"])
	require.Equal(t, float64(http.StatusTeapot), entry["status"])
	require.Equal(t, "/api/trips", entry["path"])
	require.NotEmpty(t, entry["req_id"])
	require.Equal(t, "booking", entry["service"])
}
