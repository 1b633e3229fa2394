package memstore

import (
	"context"
	"time"

	"donaplus/db"
	"donaplus/models"
)

func (s *Store) CreateAuthSession(ctx context.Context, a *models.AuthSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.authSessions.rows[a.Token]; ok {
		return db.ErrConflict
	}
	a.CreatedAt = s.now()
	s.authSessions.insert(a.Token, *a)
	return nil
}

func (s *Store) GetAuthSession(ctx context.Context, token string) (*models.AuthSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.authSessions.get(token)
	if !ok || !a.ExpiresAt.After(s.now()) {
		return nil, db.ErrNotFound
	}
	return &a, nil
}

func (s *Store) ExtendAuthSession(ctx context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.authSessions.rows[token]
	if !ok {
		return db.ErrNotFound
	}
	r.v.ExpiresAt = expiresAt
	return nil
}

func (s *Store) DeleteAuthSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.authSessions.rows, token)
	return nil
}

func (s *Store) DeleteAuthSessions(ctx context.Context, identityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, r := range s.authSessions.rows {
		if r.v.IdentityID == identityID {
			delete(s.authSessions.rows, token)
		}
	}
	return nil
}
