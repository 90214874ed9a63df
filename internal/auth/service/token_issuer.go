package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/authd/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/authd/internal/common/crypto"
	"github.com/AlibekovAA/authd/internal/common/jwtverify"
)

// TokenIssuer signs and verifies HS256 bearer tokens. Tokens are not
// stored and expire by time only.
type TokenIssuer struct {
	jwtSecret   []byte
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	tokenTTL    time.Duration
}

func NewTokenIssuer(
	jwtSecret string,
	idGenerator commoncrypto.IDGenerator,
	tokenTTL time.Duration,
	clock clock.Clock,
) *TokenIssuer {
	return &TokenIssuer{
		jwtSecret:   []byte(jwtSecret),
		idGenerator: idGenerator,
		clock:       clock,
		tokenTTL:    tokenTTL,
	}
}

func (ti *TokenIssuer) Issue(subjectID, subjectUsername string) (string, error) {
	jti, err := ti.idGenerator.NewID()
	if err != nil {
		return "", newInternalError(err)
	}

	now := ti.clock.Now()
	claims := jwtverify.TokenClaims{
		Username: subjectUsername,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.tokenTTL)),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.jwtSecret)
	if err != nil {
		return "", newInternalError(err)
	}

	incrementAccessTokensIssued()
	return tokenString, nil
}

func (ti *TokenIssuer) Verify(tokenString string) (jwtverify.Claims, error) {
	return jwtverify.ParseToken(tokenString, ti.jwtSecret, ti.clock.Now)
}

func (ti *TokenIssuer) TTL() time.Duration {
	return ti.tokenTTL
}
