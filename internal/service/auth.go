// Package service implements the session lifecycle: register, login,
// refresh rotation and logout.
package service

import (
	"context"
	"errors"

	"github.com/iliyamo/news-cms/internal/model"
	"github.com/iliyamo/news-cms/internal/repository"
	"github.com/iliyamo/news-cms/internal/utils"
)

// ErrEmailTaken is returned by Register when the email is already in use.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials covers both unknown email and wrong password.  The
// two cases are deliberately indistinguishable so callers cannot enumerate
// accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidRefresh covers every refresh failure: bad signature, expired
// token, unknown user, no active session, hash mismatch or a lost rotation
// race.  Collapsing them keeps "never logged in" indistinguishable from
// "token already rotated".
var ErrInvalidRefresh = errors.New("invalid refresh token")

// UserStore is what the auth service needs from persistence.  Satisfied by
// *repository.UserRepo; tests supply an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, email, fullName, passwordHash, role string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateRefreshHash(ctx context.Context, id uint64, hash *string) error
	SwapRefreshHash(ctx context.Context, id uint64, oldHash, newHash string) (bool, error)
}

// AuthService orchestrates the hasher, the token issuer and the session
// store.  All dependencies are passed in explicitly; there is no ambient
// registry.
type AuthService struct {
	users  UserStore
	issuer *utils.Issuer
}

func NewAuthService(users UserStore, issuer *utils.Issuer) *AuthService {
	return &AuthService{users: users, issuer: issuer}
}

// Register creates a USER-role account and opens its first session.  The
// returned pair has already been persisted: an access token is never handed
// out without the matching refresh hash reaching storage.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (model.User, utils.TokenPair, error) {
	hash, err := utils.HashSecret(password)
	if err != nil {
		return model.User{}, utils.TokenPair{}, err
	}
	u, err := s.users.Create(ctx, email, fullName, hash, model.RoleUser)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, utils.TokenPair{}, ErrEmailTaken
		}
		return model.User{}, utils.TokenPair{}, err
	}
	pair, err := s.openSession(ctx, u)
	return u, pair, err
}

// Login verifies credentials and opens a fresh session, displacing any
// previous one.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.User, utils.TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, utils.TokenPair{}, ErrInvalidCredentials
		}
		return model.User{}, utils.TokenPair{}, err
	}
	if !utils.VerifySecret(u.PasswordHash, password) {
		return model.User{}, utils.TokenPair{}, ErrInvalidCredentials
	}
	pair, err := s.openSession(ctx, u)
	return u, pair, err
}

// Refresh exchanges a still-valid refresh token for a new pair and rotates
// the stored hash.  The swap is a compare-and-swap on the previous hash:
// when two requests race with the same token, exactly one wins and the other
// fails with ErrInvalidRefresh, as does any later replay of the old token.
func (s *AuthService) Refresh(ctx context.Context, presented string) (model.User, utils.TokenPair, error) {
	if presented == "" {
		return model.User{}, utils.TokenPair{}, ErrInvalidRefresh
	}
	claims, err := s.issuer.VerifyRefresh(presented)
	if err != nil {
		return model.User{}, utils.TokenPair{}, ErrInvalidRefresh
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, utils.TokenPair{}, ErrInvalidRefresh
		}
		return model.User{}, utils.TokenPair{}, err
	}
	if u.RefreshTokenHash == nil || !utils.VerifySecret(*u.RefreshTokenHash, presented) {
		return model.User{}, utils.TokenPair{}, ErrInvalidRefresh
	}

	pair, err := s.issuer.IssuePair(u.ID, u.Email, u.Role)
	if err != nil {
		return model.User{}, utils.TokenPair{}, err
	}
	newHash, err := utils.HashSecret(pair.RefreshToken)
	if err != nil {
		return model.User{}, utils.TokenPair{}, err
	}
	swapped, err := s.users.SwapRefreshHash(ctx, u.ID, *u.RefreshTokenHash, newHash)
	if err != nil {
		return model.User{}, utils.TokenPair{}, err
	}
	if !swapped {
		return model.User{}, utils.TokenPair{}, ErrInvalidRefresh
	}
	return u, pair, nil
}

// Logout clears the stored refresh hash.  Logging out an already
// logged-out user succeeds.
func (s *AuthService) Logout(ctx context.Context, userID uint64) error {
	return s.users.UpdateRefreshHash(ctx, userID, nil)
}

// openSession mints a pair and persists the refresh hash unconditionally,
// overwriting whatever session existed before.
func (s *AuthService) openSession(ctx context.Context, u model.User) (utils.TokenPair, error) {
	pair, err := s.issuer.IssuePair(u.ID, u.Email, u.Role)
	if err != nil {
		return utils.TokenPair{}, err
	}
	hash, err := utils.HashSecret(pair.RefreshToken)
	if err != nil {
		return utils.TokenPair{}, err
	}
	if err := s.users.UpdateRefreshHash(ctx, u.ID, &hash); err != nil {
		return utils.TokenPair{}, err
	}
	return pair, nil
}
