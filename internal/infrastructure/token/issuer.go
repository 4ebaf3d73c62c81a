package token

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"identity-hook/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// Subject identifies this service in the tokens it signs for itself.
const subject = "dsgov-identity-hook"

// serviceTokenRoles is the capability claim asserted towards the
// user-management API.
var serviceTokenRoles = []string{"um:identity-client"}

// IssuerConfig holds service token generation configuration.
type IssuerConfig struct {
	Issuer string
	TTL    time.Duration
}

// serviceClaims represents the JWT claims of the service-to-service token.
type serviceClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Issuer signs short-lived RS256 service tokens and reuses them for the
// cache's TTL window. Implements domain.ServiceTokenSource.
type Issuer struct {
	cfg    IssuerConfig
	keys   domain.SigningKeyResolver
	cache  domain.TokenCache
	group  singleflight.Group
	logger *slog.Logger
}

// NewIssuer creates a new service token issuer.
func NewIssuer(cfg IssuerConfig, keys domain.SigningKeyResolver, cache domain.TokenCache, logger *slog.Logger) *Issuer {
	return &Issuer{cfg: cfg, keys: keys, cache: cache, logger: logger}
}

// Token returns the cached service token when one is still within its reuse
// window, otherwise resolves the signing key and signs a fresh one.
// Concurrent misses are collapsed into a single resolve+sign.
func (i *Issuer) Token(ctx context.Context) (string, error) {
	if token, ok := i.cache.Get(); ok {
		return token, nil
	}

	v, err, _ := i.group.Do("service-token", func() (any, error) {
		// Re-check under the flight: another caller may have just signed.
		if token, ok := i.cache.Get(); ok {
			return token, nil
		}

		token, err := i.sign(ctx)
		if err != nil {
			return "", err
		}

		i.cache.Set(token)
		return token, nil
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

func (i *Issuer) sign(ctx context.Context) (string, error) {
	keyPEM := i.keys.ResolveSigningKey(ctx)
	if keyPEM == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrTokenGeneration, domain.ErrSigningKeyEmpty)
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(keyPEM))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTokenGeneration, err)
	}

	now := time.Now()
	claims := serviceClaims{
		Roles: serviceTokenRoles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTokenGeneration, err)
	}

	i.logger.InfoContext(ctx, "signed new service token",
		"issuer", i.cfg.Issuer,
		"subject", subject,
		"ttl", i.cfg.TTL)

	return signed, nil
}
