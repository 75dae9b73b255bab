package auth

import (
	"context"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/models"
)

// DevUserCache memoizes the debug-mode user for the lifetime of the
// process. There is no invalidation: changes made to that user after it
// was cached are not seen until restart.
type DevUserCache struct {
	mu   sync.Mutex
	user *models.User
}

// Load returns the cached user, calling fill to obtain it the first time.
// Concurrent callers wait for the first fill; a failed fill is not cached.
func (c *DevUserCache) Load(ctx context.Context, fill func(ctx context.Context) (*models.User, error)) (*models.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user != nil {
		return c.user, nil
	}
	u, err := fill(ctx)
	if err != nil {
		return nil, err
	}
	c.user = u
	return u, nil
}

// Reset forgets the cached user. Test harnesses only.
func (c *DevUserCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
}

// DevAuthenticator authenticates every request as a fixed user when debug
// mode is on. It must come last in the chain so it only engages when no
// credentials were supplied. It may create that user on first use, a
// write on a read path that is never acceptable outside development.
type DevAuthenticator struct {
	enabled bool
	email   string
	users   UserProvisioner
	cache   *DevUserCache
	logger  logging.Logger
}

func NewDevAuthenticator(enabled bool, email string, users UserProvisioner, cache *DevUserCache, l logging.Logger) *DevAuthenticator {
	return &DevAuthenticator{
		enabled: enabled,
		email:   email,
		users:   users,
		cache:   cache,
		logger:  l.With("module", "dev_authenticator"),
	}
}

func (a *DevAuthenticator) Authenticate(r *http.Request) (*Result, error) {
	if !a.enabled {
		return nil, nil
	}

	user, err := a.cache.Load(r.Context(), a.provision)
	if err != nil {
		return nil, err
	}
	return &Result{User: user}, nil
}

func (a *DevAuthenticator) provision(ctx context.Context) (*models.User, error) {
	active := true
	user, created, err := a.users.GetOrCreate(ctx, a.email, models.UserFields{IsActive: &active})
	if err != nil {
		return nil, err
	}
	if created {
		a.logger.Warn(ctx, "debug mode: created fallback user", "email", user.Email, "id", user.ID)
	} else {
		a.logger.Info(ctx, "debug mode: authenticating requests as fallback user", "email", user.Email, "id", user.ID)
	}
	return user, nil
}
