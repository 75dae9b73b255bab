package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/accounts/internal/common"
)

// JWTAuthenticator resolves "Authorization: Bearer <token>" headers.
// Requests without the header, or with another scheme, are left to the
// next authenticator.
type JWTAuthenticator struct {
	users  UserGetter
	secret []byte
}

func NewJWTAuthenticator(users UserGetter, secretKey string) *JWTAuthenticator {
	return &JWTAuthenticator{users: users, secret: []byte(secretKey)}
}

func (a *JWTAuthenticator) Authenticate(r *http.Request) (*Result, error) {
	header := strings.TrimSpace(r.Header.Get(common.AuthorizationHeaderName))
	if header == "" {
		return nil, nil
	}

	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, common.BearerScheme) {
		return nil, nil
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.Contains(token, " ") {
		return nil, fmt.Errorf("%w: malformed authorization header", common.ErrInvalidToken)
	}

	userID, err := GetUserIDFromToken(token, a.secret)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: user not found", common.ErrorUnauthorized)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user is inactive", common.ErrorUnauthorized)
	}

	return &Result{User: user, Credentials: token}, nil
}
