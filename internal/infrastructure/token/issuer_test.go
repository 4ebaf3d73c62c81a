package token

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"log/slog"
	"testing"
	"time"

	"identity-hook/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

// testKeyPair returns a PEM-encoded RSA private key and its public half.
func testKeyPair(t *testing.T) (string, *rsa.PublicKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.NoError(t, err)

	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	return string(keyPEM), &key.PublicKey
}

// mockKeyResolver implements domain.SigningKeyResolver for testing.
type mockKeyResolver struct {
	key   string
	calls int
}

func (m *mockKeyResolver) ResolveSigningKey(_ context.Context) string {
	m.calls++
	return m.key
}

// mockTokenCache implements domain.TokenCache with manual expiry control.
type mockTokenCache struct {
	token   string
	present bool
}

func (m *mockTokenCache) Get() (string, bool) { return m.token, m.present }
func (m *mockTokenCache) Set(token string)    { m.token, m.present = token, true }

func TestIssuer_SignsValidToken(t *testing.T) {
	keyPEM, pub := testKeyPair(t)
	resolver := &mockKeyResolver{key: keyPEM}
	cache := &mockTokenCache{}

	issuer := NewIssuer(IssuerConfig{Issuer: "dsgov", TTL: 5 * time.Minute}, resolver, cache, slog.Default())

	tokenStr, err := issuer.Token(context.Background())
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenStr)

	parsed, err := jwt.ParseWithClaims(tokenStr, &serviceClaims{}, func(token *jwt.Token) (any, error) {
		return pub, nil
	})
	assert.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "RS256", parsed.Method.Alg())

	claims := parsed.Claims.(*serviceClaims)
	assert.Equal(t, []string{"um:identity-client"}, claims.Roles)
	assert.Equal(t, "dsgov", claims.Issuer)
	assert.Equal(t, "dsgov-identity-hook", claims.Subject)

	expiry := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, 5*time.Minute, expiry)
}

func TestIssuer_CacheHitSkipsSigning(t *testing.T) {
	keyPEM, _ := testKeyPair(t)
	resolver := &mockKeyResolver{key: keyPEM}
	cache := &mockTokenCache{}

	issuer := NewIssuer(IssuerConfig{Issuer: "dsgov", TTL: 5 * time.Minute}, resolver, cache, slog.Default())

	first, err := issuer.Token(context.Background())
	assert.NoError(t, err)

	second, err := issuer.Token(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, resolver.calls)
}

func TestIssuer_ExpiredCacheTriggersResign(t *testing.T) {
	keyPEM, _ := testKeyPair(t)
	resolver := &mockKeyResolver{key: keyPEM}
	cache := &mockTokenCache{}

	issuer := NewIssuer(IssuerConfig{Issuer: "dsgov", TTL: 5 * time.Minute}, resolver, cache, slog.Default())

	_, err := issuer.Token(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, resolver.calls)

	// Simulate TTL expiry by emptying the cache slot.
	cache.present = false

	_, err = issuer.Token(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, resolver.calls)
}

func TestIssuer_EmptyKey(t *testing.T) {
	resolver := &mockKeyResolver{key: ""}
	cache := &mockTokenCache{}

	issuer := NewIssuer(IssuerConfig{Issuer: "dsgov", TTL: 5 * time.Minute}, resolver, cache, slog.Default())

	tokenStr, err := issuer.Token(context.Background())
	assert.Empty(t, tokenStr)
	assert.True(t, errors.Is(err, domain.ErrTokenGeneration))
	assert.True(t, errors.Is(err, domain.ErrSigningKeyEmpty))
	assert.False(t, cache.present)
}

func TestIssuer_MalformedKey(t *testing.T) {
	resolver := &mockKeyResolver{key: "not-a-pem-key"}
	cache := &mockTokenCache{}

	issuer := NewIssuer(IssuerConfig{Issuer: "dsgov", TTL: 5 * time.Minute}, resolver, cache, slog.Default())

	tokenStr, err := issuer.Token(context.Background())
	assert.Empty(t, tokenStr)
	assert.True(t, errors.Is(err, domain.ErrTokenGeneration))
}
