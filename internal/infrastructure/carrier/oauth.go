package carrier

import (
	"context"
	"sync"
	"time"
)

// tokenExpiryMargin is subtracted from a token's lifetime so a token that is
// about to expire is refreshed before it can fail mid-request.
const tokenExpiryMargin = 5 * time.Minute

// tokenFetchFunc obtains a fresh access token from the carrier's auth
// endpoint. It returns the token and its lifetime.
type tokenFetchFunc func(ctx context.Context) (token string, expiresIn time.Duration, err error)

// tokenCache caches one OAuth access token per adapter. The mutex guards the
// cached fields only; it is never held across the network fetch, so a slow
// auth endpoint cannot serialize unrelated requests. Concurrent refreshes may
// both fetch, last write wins.
type tokenCache struct {
	fetch tokenFetchFunc
	now   func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func newTokenCache(fetch tokenFetchFunc) *tokenCache {
	return &tokenCache{
		fetch: fetch,
		now:   time.Now,
	}
}

// Token returns a valid access token, fetching a new one when the cached
// token is absent or within the expiry margin.
func (c *tokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && c.now().Add(tokenExpiryMargin).Before(c.expiresAt) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	token, expiresIn, err := c.fetch(ctx)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.token = token
	c.expiresAt = c.now().Add(expiresIn)
	c.mu.Unlock()

	return token, nil
}

// Invalidate drops the cached token so the next call fetches a fresh one.
// Used after a 401 from the carrier.
func (c *tokenCache) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}
