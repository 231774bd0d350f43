package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   testSecret,
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	}
}

func newTestService(t *testing.T, secret string, now time.Time) *hmacJWTService {
	t.Helper()
	cfg := testAuthConfig()
	cfg.JWTSecret = secret
	svc, err := newHMACJWTService(cfg, func() time.Time { return now })
	require.NoError(t, err)
	return svc
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)
	assert.Equal(t, 60*time.Minute, svc.AccessTokenLifetime())
	assert.Equal(t, 24*time.Hour, svc.RefreshTokenLifetime())

	cfg := testAuthConfig()
	cfg.JWTSecret = "short"
	_, err = NewJWTService(cfg)
	assert.ErrorContains(t, err, "at least 32 characters")

	cfg = testAuthConfig()
	cfg.TokenLifetimeMinutes = 0
	_, err = NewJWTService(cfg)
	assert.Error(t, err)
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, testSecret, issued)

	token, err := svc.GenerateToken(context.Background(), 42)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, issued.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, issued.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)

	other, err := svc.GenerateToken(context.Background(), 42)
	require.NoError(t, err)
	otherClaims, err := svc.ValidateToken(context.Background(), other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, otherClaims.ID, "each token gets a unique jti")
}

func TestValidateTokenFailures(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestService(t, testSecret, issued)
	token, err := issuer.GenerateToken(context.Background(), 7)
	require.NoError(t, err)
	refresh, err := issuer.GenerateRefreshToken(context.Background(), 7)
	require.NoError(t, err)

	tests := []struct {
		name      string
		validator *hmacJWTService
		token     string
		wantErr   error
	}{
		{
			name:      "expired",
			validator: newTestService(t, testSecret, issued.Add(time.Hour+3*time.Minute)),
			token:     token,
			wantErr:   ErrExpiredToken,
		},
		{
			name:      "within clock skew",
			validator: newTestService(t, testSecret, issued.Add(time.Hour+time.Minute)),
			token:     token,
			wantErr:   nil,
		},
		{
			name:      "issued in the future",
			validator: newTestService(t, testSecret, issued.Add(-10*time.Minute)),
			token:     token,
			wantErr:   ErrTokenNotYetValid,
		},
		{
			name:      "wrong secret",
			validator: newTestService(t, strings.Repeat("x", 40), issued),
			token:     token,
			wantErr:   ErrInvalidToken,
		},
		{
			name:      "malformed",
			validator: issuer,
			token:     "not-a-jwt",
			wantErr:   ErrInvalidToken,
		},
		{
			name:      "refresh token used as access token",
			validator: issuer,
			token:     refresh,
			wantErr:   ErrWrongTokenType,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := tc.validator.ValidateToken(context.Background(), tc.token)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, testSecret, now)

	claims := jwtCustomClaims{
		UserID:    1,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.ValidateToken(context.Background(), hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(context.Background(), none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRequiresUserAndExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, testSecret, now)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtCustomClaims{
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.ValidateToken(context.Background(), noUser)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtCustomClaims{
		UserID:    3,
		TokenType: TokenTypeAccess,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.ValidateToken(context.Background(), noExpiry)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, testSecret, issued)

	refresh, err := svc.GenerateRefreshToken(context.Background(), 9)
	require.NoError(t, err)
	access, err := svc.GenerateToken(context.Background(), 9)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(context.Background(), refresh)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claims.UserID)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.Equal(t, issued.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())

	_, err = svc.ValidateRefreshToken(context.Background(), access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = svc.ValidateRefreshToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	later := newTestService(t, testSecret, issued.Add(25*time.Hour))
	_, err = later.ValidateRefreshToken(context.Background(), refresh)
	assert.ErrorIs(t, err, ErrExpiredRefreshToken)
}
