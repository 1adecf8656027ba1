package auth

import (
	"testing"
	"time"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars!!"

func newTestService() *ServiceTokenService {
	return NewServiceTokenService(config.AuthConfig{
		ServiceTokenSecret: testSecret,
		Issuer:             "order-now",
	})
}

func TestServiceTokenService_IssueAndValidate(t *testing.T) {
	svc := newTestService()

	token, err := svc.IssueToken("storefront", 10*time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "storefront", claims.Subject)
	assert.Equal(t, "storefront", claims.Service)
	assert.Equal(t, "order-now", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestServiceTokenService_DefaultTTL(t *testing.T) {
	svc := newTestService()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	token, err := svc.IssueToken("storefront", 0)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(DefaultTokenTTL), claims.ExpiresAt.Time.UTC())
}

func TestServiceTokenService_ValidateToken_Failures(t *testing.T) {
	svc := newTestService()

	t.Run("expired", func(t *testing.T) {
		issuer := newTestService()
		issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := issuer.IssueToken("storefront", time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewServiceTokenService(config.AuthConfig{
			ServiceTokenSecret: "another-secret-key-at-least-32-chars",
			Issuer:             "order-now",
		})
		token, err := other.IssueToken("storefront", time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewServiceTokenService(config.AuthConfig{ServiceTokenSecret: testSecret, Issuer: "someone-else"})
		token, err := other.IssueToken("storefront", time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("non HMAC algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Service: "storefront"})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestServiceTokenService_NotConfigured(t *testing.T) {
	svc := NewServiceTokenService(config.AuthConfig{})

	assert.False(t, svc.Enabled())
	_, err := svc.IssueToken("storefront", time.Minute)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = svc.ValidateToken("anything")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestServiceTokenService_IssueToken_RequiresService(t *testing.T) {
	_, err := newTestService().IssueToken("", time.Minute)
	assert.ErrorIs(t, err, ErrMissingSubject)
}
