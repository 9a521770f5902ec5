package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "findash/internal/errors"
	"findash/internal/infrastructure"
	"findash/internal/shared/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestRequestID(t *testing.T) {
	var seen, traced string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = chimw.GetReqID(r.Context())
		traced = infrastructure.GetTraceID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, traced)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})
}

func TestGetReqID_FallsBackToTraceID(t *testing.T) {
	ctx := infrastructure.WithTraceID(context.Background(), "trace-9")
	assert.Equal(t, "trace-9", GetReqID(ctx))
}

func TestStructuredLogger_Levels(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  slog.Level
	}{
		{"ok", http.StatusOK, slog.LevelInfo},
		{"not modified", http.StatusNotModified, slog.LevelInfo},
		{"client error", http.StatusNotFound, slog.LevelWarn},
		{"server error", http.StatusServiceUnavailable, slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, handler := testutil.NewTestLogger(t)
			r := chi.NewRouter()
			r.Use(StructuredLogger(logger))
			r.Get("/api/v1/export/{view}", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/export/pl?category=supermarkets", nil)
			r.ServeHTTP(httptest.NewRecorder(), req)

			rec, found := handler.Find("request completed")
			require.True(t, found)
			assert.Equal(t, tt.level, rec.Level)
			assert.Equal(t, "/api/v1/export/{view}", rec.Attrs["route"])
			assert.Equal(t, "category=supermarkets", rec.Attrs["query"])
			assert.Equal(t, int64(tt.status), rec.Attrs["status"])
		})
	}
}

func TestRecoverer(t *testing.T) {
	eh := apierrors.NewErrorHandler(quietLogger(), false)
	h := RequestID(Recoverer(eh)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, rec.Header().Get(RequestIDHeader), body["trace_id"])
}

func TestRateLimiter(t *testing.T) {
	eh := apierrors.NewErrorHandler(quietLogger(), false)
	rl := NewRateLimiter(0.001, 1, eh, quietLogger())
	h := rl.Handler(http.HandlerFunc(ok))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestTimeout_SetsDeadline(t *testing.T) {
	var deadline time.Time
	h := Timeout(time.Minute, quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, _ = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestCORS(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}})(http.HandlerFunc(ok))

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{"preflight allowed", http.MethodOptions, "http://localhost:3000", http.StatusNoContent, "http://localhost:3000"},
		{"simple allowed", http.MethodGet, "http://localhost:3000", http.StatusOK, "http://localhost:3000"},
		{"foreign origin", http.MethodGet, "http://evil.example", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/meta", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "ETag")
		})
	}
}

func TestSecureHeaders(t *testing.T) {
	h := DefaultSecureHeaders().Handler(http.HandlerFunc(ok))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "img-src 'self' data:")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"), "plain http")

	ws := httptest.NewRequest(http.MethodGet, "/ws", nil)
	ws.Header.Set("Upgrade", "websocket")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, ws)
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestOTelMiddleware_RecordsRoute(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{ServiceName: "findash-test"}, quietLogger())
	require.NoError(t, err)

	m := NewOTelMiddleware(providers, nil)
	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/api/v1/export/{file}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("ok"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export/pl.csv", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRoutePattern_Unmatched(t *testing.T) {
	assert.Equal(t, "unmatched", routePattern(httptest.NewRequest(http.MethodGet, "/x", nil)))
}
