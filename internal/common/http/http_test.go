package http_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/AlibekovAA/authd/internal/common/errors"
	commonhttp "github.com/AlibekovAA/authd/internal/common/http"
	"github.com/AlibekovAA/authd/internal/common/logger"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) commonhttp.ErrorEnvelope {
	t.Helper()
	var env commonhttp.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestErrorHandler_DomainError(t *testing.T) {
	handler := commonhttp.TraceIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		commonhttp.HandleError(w, r, commonerrors.ErrTokenExpired.WithCause(errors.New("exp")), logger.NewNop())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("X-Trace-ID", "trace-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "trace-abc", rec.Header().Get("X-Trace-ID"))

	env := decodeEnvelope(t, rec)
	assert.Equal(t, "TOKEN_EXPIRED", env.Code)
	assert.Equal(t, "token has expired", env.Message)
	assert.Equal(t, "trace-abc", env.TraceID)
}

func TestErrorHandler_UnknownErrorHidesDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()

	commonhttp.HandleError(rec, req, errors.New("pq: password authentication failed"), logger.NewNop())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", env.Code)
	assert.NotContains(t, env.Message, "password")
}

func TestTraceIDMiddleware_ReplacesUnsafeIDs(t *testing.T) {
	var seen string
	handler := commonhttp.TraceIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = commonhttp.TraceIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace-ID", "bad id\nwith newline")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Len(t, seen, 32)
	assert.Equal(t, seen, rec.Header().Get("X-Trace-ID"))
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Username any `json:"username"`
	}

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"alice"}`))
		var b body
		require.NoError(t, commonhttp.DecodeJSON(req, &b))
		assert.Equal(t, "alice", b.Username)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, raw := range []string{"", "{", "[1,2]", `{"username":"a"} {}`} {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
			var b body
			assert.ErrorIs(t, commonhttp.DecodeJSON(req, &b), commonhttp.ErrInvalidJSON, raw)
		}
	})

	t.Run("too large", func(t *testing.T) {
		raw := `{"username":"` + strings.Repeat("a", 64) + `"}`
		handler := commonhttp.MaxRequestSizeMiddleware(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var b body
			err := commonhttp.DecodeJSON(r, &b)
			assert.ErrorIs(t, err, commonhttp.ErrRequestTooLarge)
		}))

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
		req.ContentLength = -1
		handler.ServeHTTP(httptest.NewRecorder(), req)

		req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := commonhttp.RecoveryMiddleware(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, commonhttp.CodeUnknown, decodeEnvelope(t, rec).Code)
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	commonhttp.HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	commonhttp.HealthHandler()(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	handler := commonhttp.SecurityHeadersMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}
