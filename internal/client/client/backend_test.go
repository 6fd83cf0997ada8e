package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/yama/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/yama/internal/client/tokens"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	Method      string
	Path        string
	Query       url.Values
	Auth        string
	RequestID   string
	ContentType string
	Body        []byte
}

// fakeBackend accepts a single valid access token on /files/*, issues
// tokens on /auth and revokes on /unauth.
type fakeBackend struct {
	mu sync.Mutex

	validAccess string
	// refresh token accepted by the refresh grant; empty rejects all
	validRefresh string
	// issued by a successful refresh
	nextAccess  string
	nextRefresh string
	// delays the refresh answer
	refreshDelay time.Duration
	// always answer 401 on /files/*
	alwaysReject bool
	// close the connection instead of answering a refresh
	dropRefresh  bool
	unauthStatus int

	requests  []recorded
	authForms []url.Values
	unauths   []url.Values
}

func (b *fakeBackend) router() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.URL.Path != "/auth" && req.URL.Path != "/unauth" {
				body, _ := io.ReadAll(req.Body)
				b.mu.Lock()
				b.requests = append(b.requests, recorded{
					Method:      req.Method,
					Path:        req.URL.Path,
					Query:       req.URL.Query(),
					Auth:        req.Header.Get("Authorization"),
					RequestID:   req.Header.Get("X-Request-ID"),
					ContentType: req.Header.Get("Content-Type"),
					Body:        body,
				})
				b.mu.Unlock()
			}
			next.ServeHTTP(w, req)
		})
	})

	r.Post("/auth", b.auth)
	r.Post("/unauth", b.unauth)
	r.Get("/files/*", b.files)
	r.Post("/files/*", b.files)
	r.Put("/files/*", b.files)
	r.Delete("/files/*", b.files)
	r.Get("/raw", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "# hello")
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) auth(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	b.mu.Lock()
	b.authForms = append(b.authForms, r.PostForm)
	b.mu.Unlock()

	switch r.PostForm.Get("grant_type") {
	case "password":
		if r.PostForm.Get("username") != "alice" || r.PostForm.Get("password") != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"name": "invalid_credentials", "detail": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "A1", "token_type": "bearer", "expires_in": 3600, "refresh_token": "R1",
		})

	case "refresh_token":
		if b.dropRefresh {
			hj, ok := w.(http.Hijacker)
			if !ok {
				panic("response writer does not support hijacking")
			}
			conn, _, err := hj.Hijack()
			if err == nil {
				_ = conn.Close()
			}
			return
		}
		if b.refreshDelay > 0 {
			time.Sleep(b.refreshDelay)
		}
		b.mu.Lock()
		ok := b.validRefresh != "" && r.PostForm.Get("refresh_token") == b.validRefresh
		access, refresh := b.nextAccess, b.nextRefresh
		if ok {
			b.validAccess = access
		}
		b.mu.Unlock()

		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid refresh token"})
			return
		}
		resp := map[string]any{"access_token": access, "token_type": "bearer", "expires_in": 3600, "refresh_token": nil}
		if refresh != "" {
			resp["refresh_token"] = refresh
		}
		writeJSON(w, http.StatusOK, resp)

	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "unsupported grant"})
	}
}

func (b *fakeBackend) unauth(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	b.mu.Lock()
	b.unauths = append(b.unauths, r.PostForm)
	status := b.unauthStatus
	b.mu.Unlock()

	if status != 0 {
		writeJSON(w, status, map[string]any{"detail": "revocation failed"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *fakeBackend) files(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	ok := !b.alwaysReject && r.Header.Get("Authorization") == "Bearer "+b.validAccess
	b.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid token."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": chi.URLParam(r, "*"), "method": r.Method})
}

func (b *fakeBackend) refreshCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, f := range b.authForms {
		if f.Get("grant_type") == "refresh_token" {
			n++
		}
	}
	return n
}

func (b *fakeBackend) recordedRequests() []recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recorded(nil), b.requests...)
}

func newTestStore(t *testing.T, access, refresh string) *tokens.Store {
	t.Helper()
	ctx := t.Context()
	repo := metadata.NewFileRepository(filepath.Join(t.TempDir(), "tokens.json"))
	store, err := tokens.NewStore(ctx, repo)
	require.NoError(t, err)
	if access != "" || refresh != "" {
		require.NoError(t, store.SetTokens(ctx, access, refresh))
	}
	return store
}

func newTestClient(t *testing.T, b *fakeBackend, store *tokens.Store) *Client {
	t.Helper()
	srv := httptest.NewServer(b.router())
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, store, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}
