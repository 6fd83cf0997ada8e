// Package tokens holds the client's credential pair: the short-lived access
// token and the long-lived refresh token, kept in memory and mirrored to a
// metadata.Repository so a session survives restarts.
package tokens

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/yama/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/yama/internal/common"
)

// Pair is a snapshot of the stored credentials. An empty string means the
// token is absent.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Store is the single source of truth for the current credentials. The
// in-memory copy is authoritative; the repository is written through on
// every change. Safe for concurrent use.
type Store struct {
	repo metadata.Repository

	// held across a memory update and its repository write, so writes
	// reach the repository in the order they took effect in memory
	writeMu sync.Mutex

	mu      sync.RWMutex
	access  string
	refresh string
}

// NewStore seeds a Store from repo. Missing keys leave the token absent.
func NewStore(ctx context.Context, repo metadata.Repository) (*Store, error) {
	s := &Store{repo: repo}

	access, err := repo.Get(ctx, common.AccessTokenKey)
	if err != nil {
		return nil, fmt.Errorf("load access token: %w", err)
	}
	refresh, err := repo.Get(ctx, common.RefreshTokenKey)
	if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}

	s.access = string(access)
	s.refresh = string(refresh)
	return s, nil
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *Store) Tokens() Pair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Pair{AccessToken: s.access, RefreshToken: s.refresh}
}

// SetTokens replaces the access token. The refresh token is replaced only
// when refresh is non-empty, since a refresh exchange may not rotate it.
//
// Memory is updated before the repository write; a write error is returned
// but the new tokens stay in effect for this process.
func (s *Store) SetTokens(ctx context.Context, access, refresh string) error {
	values := map[string][]byte{common.AccessTokenKey: []byte(access)}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.access = access
	if refresh != "" {
		s.refresh = refresh
		values[common.RefreshTokenKey] = []byte(refresh)
	}
	s.mu.Unlock()

	if err := s.repo.Put(ctx, values); err != nil {
		return fmt.Errorf("persist tokens: %w", err)
	}
	return nil
}

// ClearTokens forgets both tokens in memory and in the repository.
// Calling it on an empty store is a no-op.
func (s *Store) ClearTokens(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.access = ""
	s.refresh = ""
	s.mu.Unlock()

	if err := s.repo.Delete(ctx, common.AccessTokenKey, common.RefreshTokenKey); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}
