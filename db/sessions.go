package db

import (
	"context"
	"time"

	"donaplus/models"
)

// AuthSession (вход пользователя)

func (s *Storage) CreateAuthSession(ctx context.Context, a *models.AuthSession) error {
	query := `
        INSERT INTO auth_sessions (token, identity_id, expires_at)
        VALUES (?, ?, ?)
        RETURNING created_at`
	err := s.db.QueryRowContext(ctx, s.db.Rebind(query), a.Token, a.IdentityID, a.ExpiresAt).Scan(&a.CreatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// GetAuthSession истекшая запись не отличается от отсутствующей
func (s *Storage) GetAuthSession(ctx context.Context, token string) (*models.AuthSession, error) {
	a := &models.AuthSession{}
	query := `SELECT token, identity_id, expires_at, created_at FROM auth_sessions WHERE expires_at > NOW() AND token = ?`
	if err := s.db.GetContext(ctx, a, s.db.Rebind(query), token); err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (s *Storage) ExtendAuthSession(ctx context.Context, token string, expiresAt time.Time) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE auth_sessions SET expires_at = ? WHERE token = ?`), expiresAt, token)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Storage) DeleteAuthSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM auth_sessions WHERE token = ?`), token)
	return err
}

// DeleteAuthSessions завершает все входы учетной записи
func (s *Storage) DeleteAuthSessions(ctx context.Context, identityID string) error {
	if !validUUID(identityID) {
		return nil
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM auth_sessions WHERE identity_id = ?`), identityID)
	return err
}
