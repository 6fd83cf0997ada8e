package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/yama/internal/client/tokens"
	"github.com/dmitrijs2005/yama/internal/logging"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// TokenStore is the token state the client reads and updates.
// *tokens.Store implements it.
type TokenStore interface {
	Tokens() tokens.Pair
	SetTokens(ctx context.Context, access, refresh string) error
	ClearTokens(ctx context.Context) error
}

// Client talks to the backend API. It is safe for concurrent use.
type Client struct {
	base       *url.URL
	unauthURL  string
	httpClient *http.Client
	store      TokenStore
	logger     logging.Logger
	oauth      oauth2.Config
	refreshes  singleflight.Group
}

type Option func(*Client)

// WithHTTPClient sets the http.Client used for every exchange, token
// exchanges included. Timeouts are taken from it.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// ParseBaseURL validates an API base URL. The result always has a path
// ending in "/" so relative Path targets nest under it.
func ParseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidBaseURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidBaseURL, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidBaseURL, u.Scheme)
	}

	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func NewClient(baseURL string, store TokenStore, opts ...Option) (*Client, error) {
	base, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		base:       base,
		unauthURL:  base.ResolveReference(&url.URL{Path: "unauth"}).String(),
		httpClient: http.DefaultClient,
		store:      store,
		logger:     logging.Nop(),
		oauth: oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL:  base.ResolveReference(&url.URL{Path: "auth"}).String(),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns a copy of the validated base URL.
func (c *Client) BaseURL() *url.URL {
	return cloneURL(c.base)
}
