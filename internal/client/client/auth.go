package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// authError maps a failed token exchange to a KindAuth APIError when the
// server answered, or wraps the transport error otherwise.
func authError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return newAPIError(KindAuth, re.Response.StatusCode, re.Body)
	}
	return fmt.Errorf("token exchange: %w", err)
}

// Auth logs in with the password grant and stores the issued tokens. On
// failure nothing is stored.
func (c *Client) Auth(ctx context.Context, username, password string) error {
	tok, err := c.oauth.PasswordCredentialsToken(c.oauthContext(ctx), username, password)
	if err != nil {
		return authError(err)
	}

	if err := c.store.SetTokens(ctx, tok.AccessToken, tok.RefreshToken); err != nil {
		c.logger.Warn(ctx, "tokens not persisted", "error", err)
	}
	c.logger.Info(ctx, "logged in", "user", username)
	return nil
}

// refresh exchanges refreshToken for a new access token. Concurrent calls
// with the same refresh token share one exchange. Only an exchange the
// server answered with an error clears the store; transport failures and
// cancellation keep the session.
func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	v, err, shared := c.refreshes.Do(refreshToken, func() (any, error) {
		src := c.oauth.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
		tok, err := src.Token()
		if err != nil {
			var re *oauth2.RetrieveError
			if errors.As(err, &re) && re.Response != nil {
				if cerr := c.store.ClearTokens(ctx); cerr != nil {
					c.logger.Warn(ctx, "tokens not cleared", "error", cerr)
				}
			}
			return "", authError(err)
		}

		// an omitted refresh_token comes back as the one we sent
		if err := c.store.SetTokens(ctx, tok.AccessToken, tok.RefreshToken); err != nil {
			c.logger.Warn(ctx, "tokens not persisted", "error", err)
		}
		return tok.AccessToken, nil
	})
	if shared {
		c.logger.Debug(ctx, "shared token refresh")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Unauth revokes the held refresh token and clears the store. Without a
// refresh token it does nothing. A failed revocation leaves the store as is.
func (c *Client) Unauth(ctx context.Context) error {
	refresh := c.store.Tokens().RefreshToken
	if refresh == "" {
		return nil
	}

	form := url.Values{"refresh_token": {refresh}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.unauthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("unauth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return newAPIError(KindAuth, resp.StatusCode, data)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	if err := c.store.ClearTokens(ctx); err != nil {
		c.logger.Warn(ctx, "tokens not cleared", "error", err)
	}
	c.logger.Info(ctx, "logged out")
	return nil
}
