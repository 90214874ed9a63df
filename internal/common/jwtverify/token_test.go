package jwtverify_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/AlibekovAA/authd/internal/common/errors"
	"github.com/AlibekovAA/authd/internal/common/jwtverify"
	"github.com/AlibekovAA/authd/internal/common/logger"
)

var secret = []byte("test-secret-key-must-be-at-least-32-bytes-long")

var issuedAt = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() jwtverify.TokenClaims {
	return jwtverify.TokenClaims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ID:        "jti-1",
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		},
	}
}

func at(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestParseToken_Valid(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, secret, validClaims())

	claims, err := jwtverify.ParseToken(token, secret, at(issuedAt.Add(time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, jwtverify.Claims{UserID: "user-1", Username: "alice"}, claims)
}

func TestParseToken_Expired(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, secret, validClaims())

	claims, err := jwtverify.ParseToken(token, secret, at(issuedAt.Add(time.Hour+time.Second)))
	assert.ErrorIs(t, err, commonerrors.ErrTokenExpired)
	assert.Equal(t, jwtverify.Claims{}, claims)
}

func TestParseToken_Rejections(t *testing.T) {
	noExp := validClaims()
	noExp.ExpiresAt = nil

	noSub := validClaims()
	noSub.Subject = ""

	noUsr := validClaims()
	noUsr.Username = ""

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("another-secret-key-that-is-32-bytes-long!"), validClaims())},
		{"hs512", sign(t, jwt.SigningMethodHS512, secret, validClaims())},
		{"none", sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims())},
		{"missing exp", sign(t, jwt.SigningMethodHS256, secret, noExp)},
		{"missing sub", sign(t, jwt.SigningMethodHS256, secret, noSub)},
		{"missing usr", sign(t, jwt.SigningMethodHS256, secret, noUsr)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := jwtverify.ParseToken(tt.token, secret, at(issuedAt))
			assert.ErrorIs(t, err, commonerrors.ErrTokenInvalid)
			assert.Equal(t, jwtverify.Claims{}, claims)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tok, ok := jwtverify.BearerToken("Bearer abc.def.ghi")
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", tok)

	tok, ok = jwtverify.BearerToken("bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	for _, h := range []string{"", "Bearer ", "Basic abc", "Bearerabc"} {
		_, ok := jwtverify.BearerToken(h)
		assert.False(t, ok, h)
	}
}

func TestMiddleware(t *testing.T) {
	verify := func(token string) (jwtverify.Claims, error) {
		if token == "good" {
			return jwtverify.Claims{UserID: "user-1", Username: "alice"}, nil
		}
		return jwtverify.Claims{}, commonerrors.ErrTokenExpired
	}

	var got jwtverify.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = jwtverify.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := jwtverify.Middleware(verify, logger.NewNop())(next)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer good", http.StatusNoContent, ""},
		{"missing", "", http.StatusUnauthorized, "MISSING_AUTHORIZATION"},
		{"expired", "Bearer stale", http.StatusUnauthorized, "TOKEN_EXPIRED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Contains(t, rec.Body.String(), tt.body)
			}
		})
	}

	assert.Equal(t, "alice", got.Username)

	_, ok := jwtverify.FromContext(context.Background())
	assert.False(t, ok)
}
