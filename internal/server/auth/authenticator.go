package auth

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/accounts/internal/server/models"
)

// Result is a resolved identity. Credentials holds whatever the
// authenticator verified (the raw token for JWT, empty for the dev
// fallback).
type Result struct {
	User        *models.User
	Credentials string
}

// Authenticator turns a request into an identity.
//
// It returns (result, nil) when it resolved the caller, (nil, nil) when it
// has no opinion (for example, no credentials of its kind are present) and
// (nil, err) when credentials were presented but are invalid.
type Authenticator interface {
	Authenticate(r *http.Request) (*Result, error)
}

// Chain evaluates authenticators in order. The first one that resolves
// wins; the first error aborts evaluation.
type Chain struct {
	authenticators []Authenticator
}

func NewChain(authenticators ...Authenticator) *Chain {
	return &Chain{authenticators: authenticators}
}

// Authenticate returns (nil, nil) when no authenticator had an opinion.
func (c *Chain) Authenticate(r *http.Request) (*Result, error) {
	for _, a := range c.authenticators {
		res, err := a.Authenticate(r)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
	return nil, nil
}

// UserGetter loads a user by id.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// UserProvisioner returns the user with the given email, creating it with
// fields when absent. It must be atomic for concurrent callers.
type UserProvisioner interface {
	GetOrCreate(ctx context.Context, email string, fields models.UserFields) (*models.User, bool, error)
}
