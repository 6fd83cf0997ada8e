package services

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/yama/internal/client/client"
	"github.com/dmitrijs2005/yama/internal/client/tokens"
)

// API is the part of *client.Client the services depend on.
type API interface {
	Get(ctx context.Context, target client.Target, out any) error
	GetResponse(ctx context.Context, target client.Target) (*http.Response, error)
	Put(ctx context.Context, target client.Target, body, out any) error
	Delete(ctx context.Context, target client.Target, out any) error
	Auth(ctx context.Context, username, password string) error
	Unauth(ctx context.Context) error
}

// TokenReader exposes the current credentials. *tokens.Store implements it.
type TokenReader interface {
	Tokens() tokens.Pair
}
