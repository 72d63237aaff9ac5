package feeds

import (
	"sync"
	"time"
)

// tokenCache is a process-local, mutex-protected cache holding a single OAuth
// token, treated as expired 60s before its expiry. No adapter uses it: Reddit
// and ProductHunt rely on the token source of clientcredentials.Config.Client.
type tokenCache struct {
	mu     sync.Mutex
	token  string
	expiry time.Time
}

// get returns the cached token if it has more than 60s left, otherwise
// reports a miss for the caller to refresh.
func (c *tokenCache) get() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" || time.Now().After(c.expiry.Add(-60*time.Second)) {
		return "", false
	}
	return c.token, true
}

func (c *tokenCache) set(token string, expiresIn time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.expiry = time.Now().Add(expiresIn)
}
