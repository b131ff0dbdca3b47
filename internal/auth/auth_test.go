package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/domain"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := sessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyRoundTrip(t *testing.T) {
	v := NewVerifier(testSecret)
	userID := uuid.New()

	identity, err := v.Verify(signToken(t, testSecret, userID.String(), "ADMIN", time.Hour))
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, domain.RoleAdmin, identity.Role)
	assert.True(t, identity.IsAdmin())
}

func TestVerifyUnknownRoleDefaultsToUser(t *testing.T) {
	v := NewVerifier(testSecret)
	userID := uuid.New()

	for _, role := range []string{"", "USER", "admin", "superadmin"} {
		identity, err := v.Verify(signToken(t, testSecret, userID.String(), role, time.Hour))
		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, identity.Role, "role %q", role)
		assert.False(t, identity.IsAdmin())
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	v := NewVerifier(testSecret)
	userID := uuid.New()

	cases := map[string]string{
		"garbage":         "not-a-token",
		"wrong secret":    signToken(t, "other-secret", userID.String(), "user", time.Hour),
		"expired":         signToken(t, testSecret, userID.String(), "user", -time.Hour),
		"invalid subject": signToken(t, testSecret, "not-a-uuid", "user", time.Hour),
	}

	for name, token := range cases {
		_, err := v.Verify(token)
		assert.Error(t, err, name)
	}
}
