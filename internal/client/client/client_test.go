package client

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_BaseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "origin", raw: "http://localhost:8000", want: "http://localhost:8000/"},
		{name: "with path", raw: "https://api.example.com/v1", want: "https://api.example.com/v1/"},
		{name: "trailing slash kept", raw: "https://api.example.com/v1/", want: "https://api.example.com/v1/"},
		{name: "empty", raw: "", wantErr: true},
		{name: "blank", raw: "   ", wantErr: true},
		{name: "relative", raw: "/api", wantErr: true},
		{name: "no host", raw: "http://", wantErr: true},
		{name: "bad scheme", raw: "ftp://example.com", wantErr: true},
		{name: "unparsable", raw: "http://[::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.raw, newTestStore(t, "", ""))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidBaseURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.BaseURL().String())
		})
	}
}

func TestGet_AttachesBearerToken(t *testing.T) {
	b := &fakeBackend{validAccess: "A1"}
	c := newTestClient(t, b, newTestStore(t, "A1", "R1"))

	var out map[string]any
	require.NoError(t, c.Get(t.Context(), Path("/files/notes.md"), &out))
	assert.Equal(t, "notes.md", out["path"])

	reqs := b.recordedRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer A1", reqs[0].Auth)
	assert.NotEmpty(t, reqs[0].RequestID)
	assert.Zero(t, b.refreshCount())
}

func TestGet_NoTokenNoHeader(t *testing.T) {
	b := &fakeBackend{validAccess: "A1"}
	c := newTestClient(t, b, newTestStore(t, "", ""))

	err := c.Get(t.Context(), Path("/files/notes.md"), nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindRequest, apiErr.Kind)
	assert.Equal(t, 401, apiErr.Status)
	assert.Equal(t, "Invalid token.", apiErr.Detail)
	assert.ErrorIs(t, err, ErrUnauthorized)

	reqs := b.recordedRequests()
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Auth)
	assert.Zero(t, b.refreshCount())
}

func TestGet_RefreshesOnceAndRetries(t *testing.T) {
	b := &fakeBackend{validAccess: "A3", validRefresh: "R2", nextAccess: "A3"}
	store := newTestStore(t, "A2", "R2")
	c := newTestClient(t, b, store)

	var out map[string]any
	require.NoError(t, c.Get(t.Context(), Path("/files/readme.md"), &out))
	assert.Equal(t, "readme.md", out["path"])

	reqs := b.recordedRequests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "Bearer A2", reqs[0].Auth)
	assert.Equal(t, "Bearer A3", reqs[1].Auth)
	assert.Equal(t, reqs[0].RequestID, reqs[1].RequestID)

	require.Equal(t, 1, b.refreshCount())
	assert.Equal(t, "R2", b.authForms[0].Get("refresh_token"))

	assert.Equal(t, "A3", store.AccessToken())
	assert.Equal(t, "R2", store.RefreshToken())
}

func TestGet_RefreshRotatesRefreshToken(t *testing.T) {
	b := &fakeBackend{validAccess: "A3", validRefresh: "R2", nextAccess: "A3", nextRefresh: "R3"}
	store := newTestStore(t, "A2", "R2")
	c := newTestClient(t, b, store)

	require.NoError(t, c.Get(t.Context(), Path("/files/readme.md"), nil))
	assert.Equal(t, "A3", store.AccessToken())
	assert.Equal(t, "R3", store.RefreshToken())
}

func TestGet_FailedRefreshClearsStore(t *testing.T) {
	b := &fakeBackend{validAccess: "A3"}
	store := newTestStore(t, "A2", "R2")
	c := newTestClient(t, b, store)

	err := c.Get(t.Context(), Path("/files/readme.md"), nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindAuth, apiErr.Kind)
	assert.Equal(t, 401, apiErr.Status)
	assert.Equal(t, "Invalid refresh token", apiErr.Detail)

	assert.Len(t, b.recordedRequests(), 1, "no retry after a failed refresh")
	assert.Empty(t, store.AccessToken())
	assert.Empty(t, store.RefreshToken())
}

func TestGet_RefreshTransportErrorKeepsStore(t *testing.T) {
	b := &fakeBackend{validAccess: "A1", dropRefresh: true}
	store := newTestStore(t, "A0", "R0")
	c := newTestClient(t, b, store)

	err := c.Get(t.Context(), Path("files/x"), nil)
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "a dropped connection is not a server answer")
	assert.Len(t, b.recordedRequests(), 1, "no retry after a failed refresh")
	assert.Equal(t, "A0", store.AccessToken())
	assert.Equal(t, "R0", store.RefreshToken())
}

func TestGet_RefreshCanceledKeepsStore(t *testing.T) {
	b := &fakeBackend{validAccess: "A1", validRefresh: "R0", nextAccess: "A1", refreshDelay: 300 * time.Millisecond}
	store := newTestStore(t, "A0", "R0")
	c := newTestClient(t, b, store)

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()

	err := c.Get(ctx, Path("files/x"), nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "R0", store.RefreshToken())
}

func TestGet_NoRefreshTokenNoRefresh(t *testing.T) {
	b := &fakeBackend{validAccess: "A3", validRefresh: "R2", nextAccess: "A3"}
	store := newTestStore(t, "A2", "")
	c := newTestClient(t, b, store)

	err := c.Get(t.Context(), Path("/files/readme.md"), nil)
	require.ErrorIs(t, err, ErrUnauthorized)

	assert.Len(t, b.recordedRequests(), 1)
	assert.Zero(t, b.refreshCount())
	assert.Equal(t, "A2", store.AccessToken())
}

func TestGet_SecondUnauthorizedIsFinal(t *testing.T) {
	b := &fakeBackend{alwaysReject: true, validRefresh: "R2", nextAccess: "A3"}
	store := newTestStore(t, "A2", "R2")
	c := newTestClient(t, b, store)

	err := c.Get(t.Context(), Path("/files/readme.md"), nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindRequest, apiErr.Kind)
	assert.Equal(t, 401, apiErr.Status)

	assert.Len(t, b.recordedRequests(), 2)
	assert.Equal(t, 1, b.refreshCount())
	assert.Equal(t, "A3", store.AccessToken(), "refreshed tokens are kept")
}

func TestGet_ConcurrentUnauthorizedShareRefresh(t *testing.T) {
	b := &fakeBackend{validAccess: "A3", validRefresh: "R2", nextAccess: "A3", refreshDelay: 100 * time.Millisecond}
	store := newTestStore(t, "A2", "R2")
	c := newTestClient(t, b, store)

	const n = 8
	start := make(chan struct{})
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs <- c.Get(context.Background(), Path("/files/readme.md"), nil)
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, b.refreshCount())
	assert.Equal(t, "A3", store.AccessToken())
}

func TestPut_MultipartBody(t *testing.T) {
	b := &fakeBackend{validAccess: "A3", validRefresh: "R2", nextAccess: "A3"}
	c := newTestClient(t, b, newTestStore(t, "A2", "R2"))

	body := &Multipart{
		Fields: []Field{{Name: "type", Value: "regular"}},
		Files:  []FilePart{{Field: "content", Filename: "readme.md", Content: strings.NewReader("# hi")}},
	}
	require.NoError(t, c.Put(t.Context(), Path("/files/readme.md"), body, nil))

	reqs := b.recordedRequests()
	require.Len(t, reqs, 2)
	assert.True(t, strings.HasPrefix(reqs[0].ContentType, "multipart/form-data; boundary="))
	assert.NotContains(t, reqs[0].ContentType, "json")
	assert.Equal(t, reqs[0].ContentType, reqs[1].ContentType)
	assert.Equal(t, reqs[0].Body, reqs[1].Body, "retry resends the same body")
	assert.Contains(t, string(reqs[1].Body), "# hi")
}

func TestPost_JSONBody(t *testing.T) {
	b := &fakeBackend{validAccess: "A1"}
	c := newTestClient(t, b, newTestStore(t, "A1", ""))

	var out map[string]any
	require.NoError(t, c.Post(t.Context(), Path("/files/x"), map[string]string{"k": "v"}, &out))
	assert.Equal(t, "POST", out["method"])

	reqs := b.recordedRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "application/json", reqs[0].ContentType)
	assert.JSONEq(t, `{"k":"v"}`, string(reqs[0].Body))
}

func TestDelete(t *testing.T) {
	b := &fakeBackend{validAccess: "A1"}
	c := newTestClient(t, b, newTestStore(t, "A1", ""))

	var out map[string]any
	require.NoError(t, c.Delete(t.Context(), Path("/files/old.md"), &out))
	assert.Equal(t, "DELETE", out["method"])
}

func TestGet_DeriveTarget(t *testing.T) {
	b := &fakeBackend{validAccess: "A1"}
	c := newTestClient(t, b, newTestStore(t, "A1", ""))

	target := Derive(func(u *url.URL) *url.URL {
		u = u.JoinPath("files", "docs", "a.md")
		q := u.Query()
		q.Set("content", "1")
		u.RawQuery = q.Encode()
		return u
	})
	require.NoError(t, c.Get(t.Context(), target, nil))

	reqs := b.recordedRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/files/docs/a.md", reqs[0].Path)
	assert.Equal(t, "1", reqs[0].Query.Get("content"))
}

func TestGet_RawBytes(t *testing.T) {
	b := &fakeBackend{}
	c := newTestClient(t, b, newTestStore(t, "", ""))

	var raw []byte
	require.NoError(t, c.Get(t.Context(), Path("raw"), &raw))
	assert.Equal(t, "# hello", string(raw))
}

func TestGetResponse(t *testing.T) {
	b := &fakeBackend{validAccess: "A1"}
	c := newTestClient(t, b, newTestStore(t, "A1", ""))

	resp, err := c.GetResponse(t.Context(), Path("/files/a.md"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}

func TestInvalidTarget_NoNetwork(t *testing.T) {
	b := &fakeBackend{validAccess: "A1"}
	c := newTestClient(t, b, newTestStore(t, "A1", ""))

	targets := map[string]Target{
		"zero":         {},
		"nil url":      URL(nil),
		"relative url": URL(&url.URL{Path: "/files"}),
		"nil derive":   Derive(nil),
		"derive nil":   Derive(func(*url.URL) *url.URL { return nil }),
	}
	for name, target := range targets {
		t.Run(name, func(t *testing.T) {
			err := c.Get(t.Context(), target, nil)
			require.ErrorIs(t, err, ErrInvalidTarget)
		})
	}
	assert.Empty(t, b.recordedRequests())
}

func TestAuth_StoresTokens(t *testing.T) {
	b := &fakeBackend{}
	store := newTestStore(t, "", "")
	c := newTestClient(t, b, store)

	require.NoError(t, c.Auth(t.Context(), "alice", "secret"))

	require.Len(t, b.authForms, 1)
	form := b.authForms[0]
	assert.Equal(t, "password", form.Get("grant_type"))
	assert.Equal(t, "alice", form.Get("username"))
	assert.Equal(t, "secret", form.Get("password"))

	assert.Equal(t, "A1", store.AccessToken())
	assert.Equal(t, "R1", store.RefreshToken())
}

func TestAuth_Failure(t *testing.T) {
	b := &fakeBackend{}
	store := newTestStore(t, "", "")
	c := newTestClient(t, b, store)

	err := c.Auth(t.Context(), "alice", "wrong")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindAuth, apiErr.Kind)
	assert.Equal(t, 401, apiErr.Status)
	assert.Equal(t, "invalid_credentials", apiErr.Name)
	assert.Equal(t, "Invalid credentials", apiErr.Detail)
	assert.Empty(t, store.AccessToken())
	assert.Empty(t, store.RefreshToken())
}

func TestUnauth_ClearsStore(t *testing.T) {
	b := &fakeBackend{}
	store := newTestStore(t, "A1", "R1")
	c := newTestClient(t, b, store)

	require.NoError(t, c.Unauth(t.Context()))

	require.Len(t, b.unauths, 1)
	assert.Equal(t, "R1", b.unauths[0].Get("refresh_token"))
	assert.Empty(t, store.AccessToken())
	assert.Empty(t, store.RefreshToken())
}

func TestUnauth_NoRefreshTokenIsNoop(t *testing.T) {
	b := &fakeBackend{}
	store := newTestStore(t, "A1", "")
	c := newTestClient(t, b, store)

	require.NoError(t, c.Unauth(t.Context()))
	assert.Empty(t, b.unauths)
	assert.Equal(t, "A1", store.AccessToken())
}

func TestUnauth_FailureKeepsStore(t *testing.T) {
	b := &fakeBackend{unauthStatus: 500}
	store := newTestStore(t, "A1", "R1")
	c := newTestClient(t, b, store)

	err := c.Unauth(t.Context())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, "R1", store.RefreshToken())
}

func TestGet_ContextCanceled(t *testing.T) {
	b := &fakeBackend{validAccess: "A1"}
	c := newTestClient(t, b, newTestStore(t, "A1", ""))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := c.Get(ctx, Path("/files/a.md"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
