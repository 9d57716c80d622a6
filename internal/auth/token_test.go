package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-shared-secret"

func signTestToken(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyAccessToken(t *testing.T) {
	claims := &Claims{
		Email: "buyer@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "b2c3d4e5-0000-0000-0000-000000000001",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	tokenString := signTestToken(t, claims, testSecret)

	got, err := VerifyAccessToken(tokenString, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "b2c3d4e5-0000-0000-0000-000000000001", got.Subject)
	assert.Equal(t, "buyer@example.com", got.Email)
}

func TestVerifyAccessTokenWrongSecret(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "some-user",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tokenString := signTestToken(t, claims, "other-secret")

	_, err := VerifyAccessToken(tokenString, testSecret)
	assert.Error(t, err)
}

func TestVerifyAccessTokenExpired(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "some-user",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	tokenString := signTestToken(t, claims, testSecret)

	_, err := VerifyAccessToken(tokenString, testSecret)
	assert.Error(t, err)
}

func TestVerifyAccessTokenMissingSubject(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tokenString := signTestToken(t, claims, testSecret)

	_, err := VerifyAccessToken(tokenString, testSecret)
	assert.Error(t, err)
}
