package jwtverify

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	commonerrors "github.com/AlibekovAA/authd/internal/common/errors"
	"github.com/AlibekovAA/authd/internal/observability/metrics"
)

type Claims struct {
	UserID   string
	Username string
}

// TokenClaims is the JWT body: sub, usr, jti, iat and exp.
type TokenClaims struct {
	Username string `json:"usr"`
	jwt.RegisteredClaims
}

// ParseToken verifies an HS256 token signed with secret. now supplies the
// current time for expiry checks; nil means time.Now.
func ParseToken(tokenString string, secret []byte, now func() time.Time) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if now != nil {
		opts = append(opts, jwt.WithTimeFunc(now))
	}

	var tc TokenClaims
	parsed, err := jwt.ParseWithClaims(tokenString, &tc, func(*jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			metrics.JWTValidationsTotal.WithLabelValues("expired").Inc()
			return Claims{}, commonerrors.ErrTokenExpired.WithCause(err)
		}
		metrics.JWTValidationsTotal.WithLabelValues("invalid").Inc()
		return Claims{}, commonerrors.ErrTokenInvalid.WithCause(err)
	}
	if !parsed.Valid {
		metrics.JWTValidationsTotal.WithLabelValues("invalid").Inc()
		return Claims{}, commonerrors.ErrTokenInvalid
	}

	if tc.Subject == "" || tc.Username == "" {
		metrics.JWTValidationsTotal.WithLabelValues("invalid").Inc()
		return Claims{}, commonerrors.ErrTokenInvalid.WithCause(errors.New("missing sub or usr claims"))
	}

	metrics.JWTValidationsTotal.WithLabelValues("valid").Inc()
	return Claims{
		UserID:   tc.Subject,
		Username: tc.Username,
	}, nil
}
