package jwtverify

import (
	"context"
	"net/http"
	"strings"

	commonhttp "github.com/AlibekovAA/authd/internal/common/http"
	"github.com/AlibekovAA/authd/internal/common/logger"
)

type contextKey string

const claimsKey contextKey = "jwt_claims"

type VerifyFunc func(token string) (Claims, error)

// Middleware admits requests carrying a valid bearer token and stores its
// claims in the request context.
func Middleware(verify VerifyFunc, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				log.WithFields(r.Context(), logger.Fields{
					"path":   r.URL.Path,
					"action": "jwt_auth_failed",
				}).Warn("missing or invalid authorization header")
				commonhttp.HandleError(w, r, commonhttp.ErrMissingAuthorization, log)
				return
			}

			claims, err := verify(tokenString)
			if err != nil {
				log.WithFields(r.Context(), logger.Fields{
					"path":   r.URL.Path,
					"action": "jwt_auth_failed",
				}).Warnf("token rejected: %v", err)
				commonhttp.HandleError(w, r, err, log)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func FromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}
