// Package memory provides in-memory store backends for tests and dev
// environments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/store"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/types"
)

// CredentialStore keeps passcodes and consumed nonces in maps.  All
// check-then-mutate operations run under the store mutex, so the
// consume operations are atomic with respect to each other.
type CredentialStore struct {
	mu        sync.Mutex
	passcodes map[string]types.Passcode
	nonces    map[string]time.Time // nonce -> token expiry
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		passcodes: make(map[string]types.Passcode),
		nonces:    make(map[string]time.Time),
	}
}

func (s *CredentialStore) CreatePasscode(_ context.Context, p types.Passcode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.passcodes[p.Code]; exists {
		return store.ErrDuplicateCode
	}
	s.passcodes[p.Code] = p
	return nil
}

func (s *CredentialStore) GetPasscode(_ context.Context, code string) (types.Passcode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.passcodes[code]
	if !ok {
		return types.Passcode{}, store.ErrNotFound
	}
	return p, nil
}

func (s *CredentialStore) ConsumeUse(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.passcodes[code]
	if !ok || p.RevokedAt != nil {
		return false, nil
	}
	if p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit {
		return false, nil
	}
	p.UsageCount++
	s.passcodes[code] = p
	return true, nil
}

func (s *CredentialStore) RevokePasscode(_ context.Context, code string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.passcodes[code]
	if !ok {
		return store.ErrNotFound
	}
	if p.RevokedAt == nil {
		t := at.UTC()
		p.RevokedAt = &t
		s.passcodes[code] = p
	}
	return nil
}

func (s *CredentialStore) NonceConsumed(_ context.Context, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.nonces[nonce]
	return ok, nil
}

func (s *CredentialStore) ConsumeNonce(_ context.Context, nonce string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nonces[nonce]; ok {
		return false, nil
	}
	s.nonces[nonce] = expiresAt.UTC()
	return true, nil
}

func (s *CredentialStore) PruneNonces(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for n, exp := range s.nonces {
		if exp.Before(cutoff) {
			delete(s.nonces, n)
			deleted++
		}
	}
	return deleted, nil
}
