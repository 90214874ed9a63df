package service_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/authd/internal/auth/service"
	"github.com/AlibekovAA/authd/internal/common/clock"
	commonerrors "github.com/AlibekovAA/authd/internal/common/errors"
	"github.com/AlibekovAA/authd/internal/common/jwtverify"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestIssuer(t *testing.T, ttl time.Duration) (*service.TokenIssuer, *clock.MockClock) {
	t.Helper()
	mockClock := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	return service.NewTokenIssuer(testSecret, &mockIDGenerator{}, ttl, mockClock), mockClock
}

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer, _ := newTestIssuer(t, time.Hour)

	token, err := issuer.Issue("user-123", "alice")
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, jwtverify.Claims{UserID: "user-123", Username: "alice"}, claims)
	assert.Equal(t, time.Hour, issuer.TTL())
}

func TestTokenIssuer_ClaimsLayout(t *testing.T) {
	issuer, mockClock := newTestIssuer(t, 15*time.Minute)

	token, err := issuer.Issue("user-123", "alice")
	require.NoError(t, err)

	var tc jwtverify.TokenClaims
	_, _, err = jwt.NewParser().ParseUnverified(token, &tc)
	require.NoError(t, err)

	assert.Equal(t, "user-123", tc.Subject)
	assert.Equal(t, "alice", tc.Username)
	assert.Equal(t, "generated-id", tc.ID)
	assert.Equal(t, mockClock.Now().Unix(), tc.IssuedAt.Unix())
	assert.Equal(t, mockClock.Now().Add(15*time.Minute).Unix(), tc.ExpiresAt.Unix())
}

func TestTokenIssuer_Expiry(t *testing.T) {
	issuer, mockClock := newTestIssuer(t, time.Hour)

	token, err := issuer.Issue("user-123", "alice")
	require.NoError(t, err)

	mockClock.Advance(59 * time.Minute)
	_, err = issuer.Verify(token)
	require.NoError(t, err)

	mockClock.Advance(time.Minute + time.Second)
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, commonerrors.ErrTokenExpired)
}

func TestTokenIssuer_RejectsForeignTokens(t *testing.T) {
	issuer, mockClock := newTestIssuer(t, time.Hour)
	other := service.NewTokenIssuer("fedcba9876543210fedcba9876543210", &mockIDGenerator{}, time.Hour, mockClock)

	token, err := other.Issue("user-123", "alice")
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, commonerrors.ErrTokenInvalid)

	_, err = issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, commonerrors.ErrTokenInvalid)

	parts := strings.Split(token, ".")
	_, err = issuer.Verify(parts[0] + "." + parts[1] + ".")
	assert.ErrorIs(t, err, commonerrors.ErrTokenInvalid)
}

func TestTokenIssuer_IDFailure(t *testing.T) {
	mockClock := clock.NewMockClock(time.Now())
	idGen := &mockIDGenerator{newIDFunc: func() (string, error) { return "", errors.New("no entropy") }}
	issuer := service.NewTokenIssuer(testSecret, idGen, time.Hour, mockClock)

	_, err := issuer.Issue("user-123", "alice")
	assert.ErrorIs(t, err, commonerrors.ErrInternalError)
}
