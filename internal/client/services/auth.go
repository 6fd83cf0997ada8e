package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNotLoggedIn = errors.New("not logged in")

// Identity is what the access token says about the session. The token is
// decoded without verifying its signature; the backend remains the
// authority.
type Identity struct {
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the access token is past its expiry at now. A
// token without expiry never expires.
func (i *Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// AuthService manages the login session.
//
// Contract:
//   - Login: exchange credentials for tokens and store them.
//   - Logout: revoke the refresh token on the server and clear local tokens.
//   - IsLoggedIn: whether any token is held.
//   - Whoami: identity carried by the access token.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) error
	Logout(ctx context.Context) error
	IsLoggedIn() bool
	Whoami() (*Identity, error)
}

type authService struct {
	api    API
	tokens TokenReader
}

func NewAuthService(api API, tokens TokenReader) AuthService {
	return &authService{api: api, tokens: tokens}
}

func (a *authService) Login(ctx context.Context, username string, password []byte) error {
	if err := a.api.Auth(ctx, username, string(password)); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.api.Unauth(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (a *authService) IsLoggedIn() bool {
	p := a.tokens.Tokens()
	return p.AccessToken != "" || p.RefreshToken != ""
}

func (a *authService) Whoami() (*Identity, error) {
	access := a.tokens.Tokens().AccessToken
	if access == "" {
		return nil, ErrNotLoggedIn
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(access, &claims); err != nil {
		return nil, fmt.Errorf("decode access token: %w", err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("access token subject: %w", err)
	}

	ident := &Identity{UserID: id}
	if claims.IssuedAt != nil {
		ident.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		ident.ExpiresAt = claims.ExpiresAt.Time
	}
	return ident, nil
}
