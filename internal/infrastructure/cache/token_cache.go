package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Single credential purpose exists, so the cache holds one implicit slot.
const tokenKey = "service-token"

// TokenCache stores the signed service token for its reuse window.
// Implements domain.TokenCache.
type TokenCache struct {
	c   *gocache.Cache
	ttl time.Duration
}

// NewTokenCache creates a token cache with the specified TTL. The TTL must
// stay below the token's own expiry so a cached token is never stale.
func NewTokenCache(ttl time.Duration) *TokenCache {
	return &TokenCache{
		c:   gocache.New(ttl, time.Minute),
		ttl: ttl,
	}
}

// Get returns the cached token, if one is present and unexpired.
func (t *TokenCache) Get() (string, bool) {
	v, ok := t.c.Get(tokenKey)
	if !ok {
		return "", false
	}
	token, _ := v.(string)
	return token, true
}

// Set stores a freshly signed token with a full TTL.
func (t *TokenCache) Set(token string) {
	t.c.Set(tokenKey, token, t.ttl)
}
