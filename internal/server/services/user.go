// Package services contains server-side business logic. This file implements
// UserService: the user factory (email normalization, password hashing,
// flag defaults), identity lookups, paginated listing and token issuing.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/dbx"
	"github.com/dmitrijs2005/accounts/internal/server/auth"
	"github.com/dmitrijs2005/accounts/internal/server/config"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const MaxNameLen = 150

// Page is one slice of the user list together with the total row count.
type Page struct {
	Count int
	Users []*models.User
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService provides account operations:
// - CreateUser / CreateSuperuser: the user factory
// - GetOrCreate: atomic provisioning used by the debug-mode fallback
// - GetByID / GetByEmail / List: read paths of the HTTP API
// - Login: verify a password and mint a token pair
// - RefreshToken: rotate refresh tokens and mint new access tokens
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	newID                        func() (string, error)
	now                          func() time.Time
}

// NewUserService constructs a UserService. db may be nil when the manager
// is not SQL-backed.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		newID:                        newUUID,
		now:                          time.Now,
	}
}

func newUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// CreateUser normalizes email, hashes password and stores a new active
// user. An empty password yields an unusable credential. Empty or malformed
// emails fail with common.ErrorValidation, taken ones with
// common.ErrorAlreadyExists.
func (s *UserService) CreateUser(ctx context.Context, email, password string, fields models.UserFields) (*models.User, error) {
	return s.create(ctx, email, password, fields)
}

// CreateSuperuser is CreateUser with is_staff and is_superuser defaulting
// to true. Explicit values in fields still win.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password string, fields models.UserFields) (*models.User, error) {
	yes := true
	if fields.IsStaff == nil {
		fields.IsStaff = &yes
	}
	if fields.IsSuperuser == nil {
		fields.IsSuperuser = &yes
	}
	return s.create(ctx, email, password, fields)
}

func (s *UserService) create(ctx context.Context, email, password string, fields models.UserFields) (*models.User, error) {
	user, err := s.buildUser(email, password, fields)
	if err != nil {
		return nil, err
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// GetOrCreate returns the user with email, creating it with an unusable
// password when absent. created reports whether this call inserted it.
func (s *UserService) GetOrCreate(ctx context.Context, email string, fields models.UserFields) (*models.User, bool, error) {
	user, err := s.buildUser(email, "", fields)
	if err != nil {
		return nil, false, err
	}

	u, created, err := s.repomanager.Users(s.db).GetOrCreate(ctx, user)
	if err != nil {
		return nil, false, fmt.Errorf("error provisioning user: %w", err)
	}
	return u, created, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Users(s.db).GetUserByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetUserByEmail(ctx, auth.NormalizeEmail(email))
}

// List returns page (1-based) of all users, pageSize per page. The count
// and the rows are read from one snapshot.
func (s *UserService) List(ctx context.Context, page, pageSize int) (*Page, error) {
	if page < 1 || pageSize < 1 {
		return nil, fmt.Errorf("%w: page and page size must be positive", common.ErrorValidation)
	}

	result := &Page{}
	err := dbx.WithSnapshot(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		n, err := repo.Count(ctx)
		if err != nil {
			return err
		}
		users, err := repo.List(ctx, pageSize, (page-1)*pageSize)
		if err != nil {
			return err
		}
		result.Count, result.Users = n, users
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return result, nil
}

// Login verifies the password of an active user and returns a fresh token
// pair. Any mismatch yields common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	if !user.IsActive || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}

	return s.generateTokenPair(ctx, user.ID, s.repomanager.RefreshTokens(s.db))
}

// RefreshToken consumes refreshToken and returns a new pair. Each refresh
// token is single-use: a second exchange of the same token fails with
// common.ErrInvalidToken. Expired tokens yield common.ErrTokenExpired and
// tokens of missing or inactive users common.ErrorUnauthorized.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, common.ErrInvalidToken
	}

	var pair *TokenPair
	err := dbx.WithWriteTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RefreshTokens(tx)

		token, err := repo.Find(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return err
		}

		if token.Expired(s.now()) {
			return common.ErrTokenExpired
		}

		if err := repo.Delete(ctx, refreshToken); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error deleting refresh token: %w", err)
		}

		user, err := s.repomanager.Users(tx).GetUserByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return err
		}
		if !user.IsActive {
			return common.ErrorUnauthorized
		}

		pair, err = s.generateTokenPair(ctx, user.ID, repo)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// --- helpers below ---

func (s *UserService) generateTokenPair(ctx context.Context, userID string, repo refreshtokens.Repository) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if err := repo.Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *UserService) buildUser(email, password string, fields models.UserFields) (*models.User, error) {
	email = auth.NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(fields.FirstName) > MaxNameLen || utf8.RuneCountInString(fields.LastName) > MaxNameLen {
		return nil, fmt.Errorf("%w: names are limited to %d characters", common.ErrorValidation, MaxNameLen)
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	return &models.User{
		ID:           id,
		Email:        email,
		FirstName:    fields.FirstName,
		LastName:     fields.LastName,
		PasswordHash: hash,
		IsActive:     boolOr(fields.IsActive, true),
		IsStaff:      boolOr(fields.IsStaff, false),
		IsSuperuser:  boolOr(fields.IsSuperuser, false),
	}, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	if password == "" {
		hash, err := auth.MakeUnusablePassword()
		if err != nil {
			return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}
		return hash, nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("%w: password: %v", common.ErrorValidation, err)
	}
	return hash, nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email %q", common.ErrorValidation, email)
	}
	return nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
